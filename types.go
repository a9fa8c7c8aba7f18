package ceph

import (
	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/admin"
	"github.com/wangevan/ceph/internal/config"
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
)


//=========================================== Monitor Types
//
// Monitor wires every internal package into the cluster monitor
// coordination core, grounded on the teacher's RDB struct (rdb.go's
// NewRDB/StartRaftService split becomes NewMonitor/StartMonitor below).


const NAME = "Monitor"

var Log = logger.NewCustomLog(NAME)

// MonitorOpts configures one monitor process.
type MonitorOpts struct {
	Name string
	Fsid string

	Port     int
	DataDir  string

	SeedMembers []peermap.Member

	Config  config.Config
	PoolOpts pool.PoolOpts

	ExtraBootstrapHints []string
}

// Monitor holds every wired subsystem for one monitor process.
type Monitor struct {
	Self string
	Opts MonitorOpts

	Store     *store.Store
	Messenger *messenger.Messenger
	Peers     *peermap.PeerMap
	Sessions  *session.Registry
	Router    *router.Router
	Log2      paxoslog.Log
	Election  election.Election
	Sync      *syncengine.Engine
	Services  map[string]kvservice.Service
	FSM       *lifecycle.FSM
	Dispatch  *dispatch.Shell
	Tick      *tick.Loop
	Admin     *admin.Query

	extraBootstrapHints []string
}

type monitorInfo string
type monitorError string

const (
	Started monitorInfo = "monitor started, listening"
)

const (
	ListenErr monitorError = "failed to bind listener"
)

// servicePrefixes names every map-service store prefix; a sync copies
// their union plus paxos (spec §6).
var servicePrefixes = []string{"osdmap", "mdsmap", "pgmap", kvservice.Prefix, "logm", "auth", paxoslog.Prefix}
