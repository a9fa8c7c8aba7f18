package dispatch

import (
	"testing"
	"time"

	"github.com/wangevan/ceph/internal/config"
	"github.com/wangevan/ceph/internal/kvservice"
	"github.com/wangevan/ceph/internal/lifecycle"
	"github.com/wangevan/ceph/internal/messenger"
	"github.com/wangevan/ceph/internal/paxoslog"
	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/pool"
	"github.com/wangevan/ceph/internal/router"
	"github.com/wangevan/ceph/internal/session"
	"github.com/wangevan/ceph/internal/store"
	"github.com/wangevan/ceph/internal/syncengine"
	"github.com/wangevan/ceph/internal/wire"
)

func newTestShell(t *testing.T, members []peermap.Member, services map[string]kvservice.Service) (*Shell, *lifecycle.FSM, *peermap.PeerMap) {
	t.Helper()

	st, err := store.NewStore(t.TempDir(), []string{kvservice.Prefix})
	if err != nil { t.Fatalf("unable to open store: %v", err) }
	t.Cleanup(func() { st.Close() })

	peers := peermap.New("fsid-1", members)
	sessions := session.NewRegistry()
	msn := messenger.NewMessenger(messenger.MessengerOpts{Port: 0, Pool: pool.NewPool(pool.PoolOpts{MaxConn: 1})})
	rtr := router.New("mon.a", peers, sessions, msn)
	log2 := paxoslog.NewBoltLog(st)
	syncEngine := syncengine.NewEngine("mon.a", config.Default(), st, log2, msn, syncengine.PrefixSet{kvservice.Prefix})
	if services == nil { services = map[string]kvservice.Service{} }

	fsm := NewFSMForTest(peers, sessions, rtr, msn, syncEngine, log2, st, services)
	shell := NewShell("mon.a", fsm, rtr, sessions, peers, msn, services, 50*time.Millisecond)
	return shell, fsm, peers
}

// NewFSMForTest is a thin wrapper so dispatch's tests don't need to
// duplicate lifecycle's own construction wiring.
func NewFSMForTest(peers *peermap.PeerMap, sessions *session.Registry, rtr *router.Router, msn *messenger.Messenger, syncEngine *syncengine.Engine, log2 paxoslog.Log, st *store.Store, services map[string]kvservice.Service) *lifecycle.FSM {
	return lifecycle.NewFSM("mon.a", config.Default(), peers, sessions, rtr, msn, syncEngine, nil, log2, st, services, syncengine.PrefixSet{kvservice.Prefix})
}

func TestInboundDropsWhenShuttingDown(t *testing.T) {
	shell, fsm, _ := newTestShell(t, []peermap.Member{{Name: "mon.a"}}, nil)
	fsm.EnterShuttingDown()

	_, err := shell.Inbound("conn-1", "10.0.0.1", false, &wire.Envelope{Kind: "command"})
	if err == nil {
		t.Fatal("expected an error once the FSM is shutting down")
	}
}

func TestInboundWaitlistsUnknownClientOutOfQuorum(t *testing.T) {
	shell, _, _ := newTestShell(t, []peermap.Member{{Name: "mon.a"}}, nil)

	reply, err := shell.Inbound("conn-1", "10.0.0.1", false, &wire.Envelope{Kind: "subscribe"})
	if err != nil {
		t.Fatalf("expected a waitlist, not an error: %v", err)
	}
	if reply != nil {
		t.Fatal("expected no reply for a waitlisted message")
	}
	if len(shell.waitlist) != 1 {
		t.Fatalf("expected exactly one waitlisted message, got %d", len(shell.waitlist))
	}
}

func TestInboundBypassesWaitlistForProbe(t *testing.T) {
	shell, _, _ := newTestShell(t, []peermap.Member{{Name: "mon.a"}}, nil)

	probe := &wire.MonProbe{Op: wire.ProbeOpProbe, Name: "mon.b"}
	payload, _ := probe.Marshal()

	if _, err := shell.Inbound("conn-1", "10.0.0.1", true, &wire.Envelope{Kind: "probe", Payload: payload}); err != nil {
		t.Fatalf("unexpected error handling a bypassed probe: %v", err)
	}
	if len(shell.waitlist) != 0 {
		t.Fatal("expected probe messages never to be waitlisted")
	}
}

func TestDispatchToServiceDropsStaleEpoch(t *testing.T) {
	dispatched := false
	services := map[string]kvservice.Service{
		"osdmap": &stubService{onDispatch: func() { dispatched = true }},
	}
	shell, _, peers := newTestShell(t, []peermap.Member{{Name: "mon.a"}}, services)
	peers.Replace(5, peers.MembersSnapshot())

	if _, err := shell.dispatchToServiceLocked("conn-1", "10.0.0.1", &wire.Envelope{Kind: "osdmap", Epoch: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatched {
		t.Fatal("expected a stale epoch to be dropped silently, never reaching the service")
	}
}

func TestDispatchToServiceAppliesNewerEpoch(t *testing.T) {
	dispatched := false
	services := map[string]kvservice.Service{
		"osdmap": &stubService{onDispatch: func() { dispatched = true }},
	}
	shell, _, peers := newTestShell(t, []peermap.Member{{Name: "mon.a"}}, services)
	peers.Replace(2, peers.MembersSnapshot())

	if _, err := shell.dispatchToServiceLocked("conn-1", "10.0.0.1", &wire.Envelope{Kind: "osdmap", Epoch: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dispatched {
		t.Fatal("expected a strictly greater epoch to reach the service")
	}
}

type stubService struct{ onDispatch func() }

func (s *stubService) UpdateFromPaxos(version int64) error { return nil }
func (s *stubService) ElectionFinished() error              { return nil }
func (s *stubService) Tick() error                          { return nil }
func (s *stubService) Shutdown() error                      { return nil }
func (s *stubService) Dispatch(op kvservice.Operation) ([]byte, error) {
	if s.onDispatch != nil { s.onDispatch() }
	return nil, nil
}
