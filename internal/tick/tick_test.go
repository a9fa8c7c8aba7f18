package tick

import (
	"testing"
	"time"

	"github.com/wangevan/ceph/internal/config"
	"github.com/wangevan/ceph/internal/dispatch"
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
)

func newTestLoop(t *testing.T, members []peermap.Member, monLease time.Duration) (*Loop, *lifecycle.FSM, *session.Registry) {
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
	services := map[string]kvservice.Service{kvservice.Prefix: kvservice.NewKVService(st)}

	fsm := lifecycle.NewFSM("mon.a", config.Default(), peers, sessions, rtr, msn, syncEngine, nil, log2, st, services, syncengine.PrefixSet{kvservice.Prefix})
	shell := dispatch.NewShell("mon.a", fsm, rtr, sessions, peers, msn, services, monLease)
	loop := NewLoop(time.Hour, monLease, fsm, sessions, shell, services)
	return loop, fsm, sessions
}

func TestTrackQuorumLockedNoEvictionWhileInQuorum(t *testing.T) {
	loop, fsm, sessions := newTestLoop(t, []peermap.Member{{Name: "mon.a"}}, time.Millisecond)
	if err := fsm.EnterProbing(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if fsm.CurrentState() != lifecycle.Leader { t.Fatalf("expected a singleton map to self-elect, got %v", fsm.CurrentState()) }

	sessions.Admit("client-1", session.PeerIdentity{ConnID: "client-1"}, session.CapabilityGrant{}, 0)

	loop.trackQuorumLocked()

	if _, ok := sessions.Get("client-1"); !ok {
		t.Fatal("expected the client session to survive while in quorum")
	}
}

func TestTrackQuorumLockedEvictsAfterThreshold(t *testing.T) {
	loop, fsm, sessions := newTestLoop(t, []peermap.Member{{Name: "mon.a"}, {Name: "mon.b"}}, time.Millisecond)
	if fsm.CurrentState() != lifecycle.Probing {
		t.Fatalf("expected a fresh multi-member FSM to start in Probing, got %v", fsm.CurrentState())
	}

	sessions.Admit("client-1", session.PeerIdentity{ConnID: "client-1"}, session.CapabilityGrant{}, 0)

	stale := time.Now().Add(-10 * time.Millisecond)
	loop.outOfQuorumSince = &stale

	loop.trackQuorumLocked()

	if _, ok := sessions.Get("client-1"); ok {
		t.Fatal("expected the client session to be evicted once out of quorum past 2x mon_lease")
	}
}

func TestTrackQuorumLockedResetsOnceInQuorumAgain(t *testing.T) {
	loop, fsm, _ := newTestLoop(t, []peermap.Member{{Name: "mon.a"}}, time.Millisecond)
	past := time.Now().Add(-time.Hour)
	loop.outOfQuorumSince = &past

	if err := fsm.EnterProbing(); err != nil { t.Fatalf("unexpected error: %v", err) }
	loop.trackQuorumLocked()

	if loop.outOfQuorumSince != nil {
		t.Fatal("expected outOfQuorumSince to reset once back in quorum")
	}
}
