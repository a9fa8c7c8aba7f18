package admin

import (
	"testing"

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
)

func newTestQuery(t *testing.T, members []peermap.Member) (*Query, *lifecycle.FSM) {
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
	hints := []string{}
	q := NewQuery(fsm, peers, syncEngine, st, &hints)
	return q, fsm
}

func TestMonStatusReportsNameRankStateAndMembers(t *testing.T) {
	q, _ := newTestQuery(t, []peermap.Member{{Name: "mon.a"}, {Name: "mon.b"}})

	status := q.MonStatus()
	if status.Name != "mon.a" {
		t.Fatalf("expected name mon.a, got %q", status.Name)
	}
	if status.Rank != 0 {
		t.Fatalf("expected rank 0, got %d", status.Rank)
	}
	if len(status.Members) != 2 {
		t.Fatalf("expected 2 members, got %v", status.Members)
	}
}

func TestQuorumStatusEmptyWhenNotInQuorum(t *testing.T) {
	q, fsm := newTestQuery(t, []peermap.Member{{Name: "mon.a"}, {Name: "mon.b"}})
	if fsm.CurrentState() != lifecycle.Probing {
		t.Fatalf("expected fresh multi-member FSM to start Probing, got %v", fsm.CurrentState())
	}

	status := q.QuorumStatus()
	if len(status.QuorumNames) != 0 || status.Leader != "" {
		t.Fatalf("expected an empty QuorumStatus while not in quorum, got %+v", status)
	}
}

func TestQuorumStatusPopulatedOnceLeader(t *testing.T) {
	q, fsm := newTestQuery(t, []peermap.Member{{Name: "mon.a"}})
	if err := fsm.EnterProbing(); err != nil { t.Fatalf("unexpected error: %v", err) }

	status := q.QuorumStatus()
	if len(status.QuorumNames) != 1 || status.QuorumNames[0] != "mon.a" {
		t.Fatalf("expected quorum of [mon.a], got %v", status.QuorumNames)
	}
}

func TestSyncForcePersistsRetrievableNonce(t *testing.T) {
	q, _ := newTestQuery(t, []peermap.Member{{Name: "mon.a"}})

	if err := q.SyncForce(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := q.Store.Get(store.PrefixMonSync, store.KeyForceSync)
	if err != nil { t.Fatalf("unexpected error reading back nonce: %v", err) }
	if len(v) == 0 {
		t.Fatal("expected a non-empty nonce written by SyncForce")
	}
}

func TestAddBootstrapPeerHintAllowedWhileProbing(t *testing.T) {
	q, _ := newTestQuery(t, []peermap.Member{{Name: "mon.a"}, {Name: "mon.b"}})

	if err := q.AddBootstrapPeerHint("10.0.0.5:3300"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*q.ExtraBootstrapHints) != 1 || (*q.ExtraBootstrapHints)[0] != "10.0.0.5:3300" {
		t.Fatalf("expected the hint to be recorded, got %v", *q.ExtraBootstrapHints)
	}
}

func TestAddBootstrapPeerHintRejectedOutsideProbing(t *testing.T) {
	q, fsm := newTestQuery(t, []peermap.Member{{Name: "mon.a"}})
	if err := fsm.EnterProbing(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if fsm.CurrentState() != lifecycle.Leader {
		t.Fatalf("expected a singleton map to self-elect, got %v", fsm.CurrentState())
	}

	if err := q.AddBootstrapPeerHint("10.0.0.5:3300"); err == nil {
		t.Fatal("expected a rejection once sync/election is already active")
	}
}
