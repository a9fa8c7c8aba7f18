package messenger

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"

	cephUtils "github.com/wangevan/ceph/internal/utils"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Messenger Service


/*
	NewMessenger:
		construct a Messenger bound to a dial pool; the grpc server is not
		started until Listen is called, mirroring the teacher's
		NewCampaignService/StartCampaignService split.
*/

func NewMessenger(opts MessengerOpts) *Messenger {
	return &Messenger{
		Port: cephUtils.NormalizePort(opts.Port),
		Pool: opts.Pool,
		down: make(map[string]bool),
	}
}

func peerAddress(ctx context.Context) (string, bool) {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil { return "", false }
	return p.Addr.String(), true
}

/*
	Listen:
		start the grpc server for MonWire and register this Messenger as
		both the Deliver and SyncStream handler target.
*/

func (m *Messenger) Listen(lis net.Listener) {
	srv := grpc.NewServer()
	wire.RegisterMonWireServer(srv, m)

	go func() {
		if err := srv.Serve(lis); err != nil { Log.Error(string(RPCErr), err.Error()) }
	}()
}

// OnDeliver registers the handler invoked for every unary Deliver call.
func (m *Messenger) OnDeliver(h Handler) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handler = h
}

// OnSyncStream registers the handler invoked for every SyncStream call.
func (m *Messenger) OnSyncStream(h StreamHandler) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.streamHandler = h
}

func (m *Messenger) Deliver(ctx context.Context, in *wire.Envelope) (*wire.Envelope, error) {
	m.handlersMu.RLock()
	h := m.handler
	m.handlersMu.RUnlock()

	if h == nil { return &wire.Envelope{}, nil }

	peer, _ := peerAddress(ctx)
	return h(peer, in)
}

func (m *Messenger) SyncStream(stream wire.MonWire_SyncStreamServer) error {
	m.handlersMu.RLock()
	h := m.streamHandler
	m.handlersMu.RUnlock()

	if h == nil { return nil }
	return h(stream)
}

// MarkDown records a peer as unreachable and drops pooled connections to
// it, matching the teacher's SetStatus(Dead)+CloseConnections pattern.
func (m *Messenger) MarkDown(addr string) {
	m.downMu.Lock()
	m.down[addr] = true
	m.downMu.Unlock()

	m.Pool.CloseConnections(addr)
}

// MarkUp clears a previously recorded down status for addr.
func (m *Messenger) MarkUp(addr string) {
	m.downMu.Lock()
	delete(m.down, addr)
	m.downMu.Unlock()
}

func (m *Messenger) IsDown(addr string) bool {
	m.downMu.Lock()
	defer m.downMu.Unlock()
	return m.down[addr]
}
