package ceph

import (
	"github.com/wangevan/ceph/internal/admin"
	"github.com/wangevan/ceph/internal/dispatch"
	"github.com/wangevan/ceph/internal/election"
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
	"github.com/wangevan/ceph/internal/tick"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Monitor Construction
//
// NewMonitor wires every internal package together in the order the
// sync invariant in spec §5 requires to be meaningful at all: store
// before log, peer map before lifecycle, lifecycle before dispatch.


func NewMonitor(opts MonitorOpts) *Monitor {
	st, storeErr := store.NewStore(opts.DataDir, servicePrefixes)
	if storeErr != nil { Log.Fatal("unable to open store:", storeErr.Error()) }

	connPool := pool.NewPool(opts.PoolOpts)
	msn := messenger.NewMessenger(messenger.MessengerOpts{Port: opts.Port, Pool: connPool})

	seed := peermap.FilterInitialMembers(opts.SeedMembers, opts.Config.MonInitialMembers)
	peers := peermap.New(opts.Fsid, seed)
	sessions := session.NewRegistry()
	rtr := router.New(opts.Name, peers, sessions, msn)

	log2 := paxoslog.NewBoltLog(st)

	services := map[string]kvservice.Service{
		kvservice.Prefix: kvservice.NewKVService(st),
	}

	syncEngine := syncengine.NewEngine(opts.Name, opts.Config, st, log2, msn, syncengine.PrefixSet(servicePrefixes))

	mon := &Monitor{
		Self: opts.Name, Opts: opts, Store: st, Messenger: msn, Peers: peers, Sessions: sessions,
		Router: rtr, Log2: log2, Sync: syncEngine, Services: services,
		extraBootstrapHints: append([]string{}, opts.ExtraBootstrapHints...),
	}

	fsm := lifecycle.NewFSM(opts.Name, opts.Config, peers, sessions, rtr, msn, syncEngine, nil, log2, st, services, syncengine.PrefixSet(servicePrefixes))
	fsm.ExtraBootstrapHints = mon.extraBootstrapHints

	acclaim := election.NewAcclamation(opts.Name, peers, msn, election.Callbacks{
		WinElection:  fsm.OnWinElection,
		LoseElection: fsm.OnLoseElection,
	})
	fsm.Election = acclaim
	mon.Election = acclaim

	syncEngine.IsLeader = func() bool { return fsm.CurrentState() == lifecycle.Leader }
	syncEngine.LeaderAddr = func() string { return rtr.CurrentLeader }

	mon.FSM = fsm
	mon.Dispatch = dispatch.NewShell(opts.Name, fsm, rtr, sessions, peers, msn, services, opts.Config.MonLease)
	mon.Tick = tick.NewLoop(opts.Config.MonTickInterval, opts.Config.MonLease, fsm, sessions, mon.Dispatch, services)
	mon.Admin = admin.NewQuery(fsm, peers, syncEngine, st, &fsm.ExtraBootstrapHints)

	wireMessenger(mon)

	return mon
}

/*
	wireMessenger:
		register the Dispatch Shell as the handler for every unary Deliver
		call and the Sync Engine as the handler for every SyncStream call.
*/

func wireMessenger(mon *Monitor) {
	mon.Messenger.OnDeliver(func(from string, env *wire.Envelope) (*wire.Envelope, error) {
		return mon.Dispatch.Inbound(from, from, mon.Peers.Contains(from), env)
	})
	mon.Messenger.OnSyncStream(mon.Sync.HandleSyncStream)
}
