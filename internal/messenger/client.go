package messenger

import (
	"context"

	"github.com/sirgallo/utils"

	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Messenger Client


/*
	Send:
		deliver one Envelope to addr over a pooled grpc connection, with
		exponential backoff on transient failure, grounded on the
		teacher's campaign client requestVoteRPC closure-plus-backoff
		pattern. Marks the peer down on exhausted retries.
*/

func (m *Messenger) Send(addr string, env *wire.Envelope) (*wire.Envelope, error) {
	conn, connErr := m.Pool.GetConnection(addr, m.Port)
	if connErr != nil {
		Log.Error(string(ConnectionErr), addr+m.Port, ":", connErr.Error())
		return nil, connErr
	}

	client := wire.NewMonWireClient(conn)

	attempt := func() (*wire.Envelope, error) {
		ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
		defer cancel()

		res, err := client.Deliver(ctx, env)
		if err != nil { return utils.GetZero[*wire.Envelope](), err }
		return res, nil
	}

	maxRetries := 3
	expOpts := utils.ExpBackoffOpts{MaxRetries: &maxRetries, TimeoutInNanosecs: 1000000}
	expBackoff := utils.NewExponentialBackoffStrat[*wire.Envelope](expOpts)

	res, sendErr := expBackoff.PerformBackoff(attempt)
	if sendErr != nil {
		Log.Warn(addr, "unreachable, marking down")
		m.MarkDown(addr)
		m.Pool.CloseConnections(addr)
		return nil, sendErr
	}

	m.Pool.PutConnection(addr, conn)
	return res, nil
}

// SendCtx is Send with a caller-supplied deadline/cancellation, used by
// callers (like Election) that need a single bounded attempt rather than
// the exponential-backoff retry loop.
func (m *Messenger) SendCtx(ctx context.Context, addr string, env *wire.Envelope) (*wire.Envelope, error) {
	conn, connErr := m.Pool.GetConnection(addr, m.Port)
	if connErr != nil { return nil, connErr }

	client := wire.NewMonWireClient(conn)
	res, err := client.Deliver(ctx, env)
	if err != nil { return nil, err }

	m.Pool.PutConnection(addr, conn)
	return res, nil
}

// OpenSyncStream dials addr and opens a SyncStream call, used by the sync
// engine's Requester/Provider roles to exchange MonSync chunks.
func (m *Messenger) OpenSyncStream(ctx context.Context, addr string) (wire.MonWire_SyncStreamClient, error) {
	conn, connErr := m.Pool.GetConnection(addr, m.Port)
	if connErr != nil {
		Log.Error(string(ConnectionErr), addr+m.Port, ":", connErr.Error())
		return nil, connErr
	}

	client := wire.NewMonWireClient(conn)
	return client.SyncStream(ctx)
}
