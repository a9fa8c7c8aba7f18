package pool

import "sync"


// PoolOpts bounds how many live connections may be held open to any
// single peer monitor at once.
type PoolOpts struct {
	MaxConn int
}

// Pool reuses grpc.ClientConns to peer monitors across Messenger calls,
// keyed by peer address, so probing, syncing, and forwarding don't pay a
// fresh dial on every message.
type Pool struct {
	connections sync.Map // peer address -> []*grpc.ClientConn
	maxConn     int
}

type PoolError string


const (
	MaxConnectionsErr PoolError = "max connections met"
)
