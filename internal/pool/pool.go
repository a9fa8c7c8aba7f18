package pool

import (
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding/gzip"
)


//=========================================== Pool
//
// One pool is shared by a monitor's Messenger across every peer it
// talks to: probe broadcasts, sync streams, forwarded client requests,
// and routed replies all dial through here so a peer's connection is
// reused instead of rebuilt per message.


//	NewPool:
//		initialize the connection pool.
func NewPool(opts PoolOpts) *Pool {
	return &Pool{maxConn: opts.MaxConn}
}

//	GetConnection:
//		1.) load connections for the peer monitor's address
//		2.) if the address was loaded from the thread safe map:
//			if the total connections in the map is greater than or equal to max connections specified throw max connections error
//			otherwise for each connection in the array of connections, if the connection is not null and the connection is ready for work, return the connection
//		3.) if the address was not loaded, dial the peer monitor fresh and store the new connection at the key associated with the address and return the new connection
//
//		for grpc connection opts, we compress the rpc on the wire
func (cp *Pool) GetConnection(addr string, port string) (*grpc.ClientConn, error) {
	connections, loaded := cp.connections.Load(addr)
	if loaded {
		if len(connections.([]*grpc.ClientConn)) >= cp.maxConn { return nil, errors.New(string(MaxConnectionsErr)) }
		for _, conn := range connections.([]*grpc.ClientConn) {
			if conn != nil && conn.GetState() == connectivity.Ready { return conn, nil }
		}
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.UseCompressor(gzip.Name)),
	}

	newConn, connErr := grpc.Dial(addr+port, opts...)
	if connErr != nil {
		cp.connections.Delete(addr)
		return nil, connErr
	}

	emptyConns, loaded := cp.connections.LoadOrStore(addr, []*grpc.ClientConn{newConn})
	if loaded {
		connections := emptyConns.([]*grpc.ClientConn)
		cp.connections.Store(addr, append(connections, newConn))
	}

	return newConn, nil
}

//	PutConnection:
//		1.) load connections for the peer monitor's address
//		2.) if the address was loaded from the thread safe map:
//			if the connection already exists in the map, return otherwise, close the connection and return
func (cp *Pool) PutConnection(addr string, connection *grpc.ClientConn) (bool, error) {
	connections, loaded := cp.connections.Load(addr)
	if loaded {
		for _, conn := range connections.([]*grpc.ClientConn) {
			if conn == connection { return true, nil }
		}
	}

	closeErr := connection.Close()
	if closeErr != nil { return false, closeErr }
	return false, nil
}

//	CloseConnections:
//		1.) load connections for the peer monitor's address
//		2.) if the address was loaded from the thread safe map:
//			if the connection already exists in the map, close the connection
//		3.) remove the key from the map
//
//	used by Messenger.MarkDown when a peer is fenced or the admission
//	gate closes a stale client connection (spec §4.4 rule 2).
func (cp *Pool) CloseConnections(addr string) (bool, error) {
	connections, loaded := cp.connections.Load(addr)
	if loaded {
		for _, conn := range connections.([]*grpc.ClientConn) {
			closeErr := conn.Close()
			if closeErr != nil { return false, closeErr }
		}
	}

	cp.connections.Delete(addr)
	return true, nil
}
