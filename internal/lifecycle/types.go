package lifecycle

import (
	"sync"
	"time"

	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/config"
	"github.com/wangevan/ceph/internal/election"
	"github.com/wangevan/ceph/internal/kvservice"
	"github.com/wangevan/ceph/internal/messenger"
	"github.com/wangevan/ceph/internal/paxoslog"
	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/router"
	"github.com/wangevan/ceph/internal/session"
	"github.com/wangevan/ceph/internal/store"
	"github.com/wangevan/ceph/internal/syncengine"
)


//=========================================== Lifecycle Types (C5)
//
// One tagged variant for the monitor's top-level state, independent of
// the Sync Engine's own role bitset (spec §9 "model lifecycle as one
// tagged variant and sync_role as an independent bitset"). Grounded on
// the teacher's internal/system.System mutex-guarded state struct,
// generalized from a two-state (leader/follower) machine to the core's
// six states.


const NAME = "Lifecycle"

var Log = logger.NewCustomLog(NAME)

type State int

const (
	Probing State = iota
	Electing
	Synchronizing
	Leader
	Peon
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Probing: return "probing"
	case Electing: return "electing"
	case Synchronizing: return "synchronizing"
	case Leader: return "leader"
	case Peon: return "peon"
	case ShuttingDown: return "shutting_down"
	default: return "unknown"
	}
}

// FSM owns the monitor's top-level state and every collaborator the
// lifecycle transitions drive.
type FSM struct {
	mu sync.Mutex

	Self string
	Cfg  config.Config

	State State

	Peers     *peermap.PeerMap
	Sessions  *session.Registry
	Router    *router.Router
	Messenger *messenger.Messenger
	Sync      *syncengine.Engine
	Election  election.Election
	Log2      paxoslog.Log
	Store     *store.Store

	Services map[string]kvservice.Service

	// outsideQuorum tracks bootstrap peers seen during Probing that have
	// not yet formed a quorum, keyed by name (spec §4.1 rule 5).
	outsideQuorum map[string]bool

	// hasEverJoined mirrors peers.HasEverJoined(Self) for the self-fence
	// check, updated whenever this node successfully enters Leader/Peon.
	hasEverJoined bool

	probeTimer *time.Timer

	// SyncPrefixes is the union of every Service's store prefix plus
	// paxos. StartRequester takes only a peer address; the Sync Engine
	// clears and fills its own copy of this set.
	SyncPrefixes syncengine.PrefixSet

	ExtraBootstrapHints []string
}

func NewFSM(self string, cfg config.Config, peers *peermap.PeerMap, sessions *session.Registry, rtr *router.Router, msn *messenger.Messenger, syncEngine *syncengine.Engine, el election.Election, log2 paxoslog.Log, st *store.Store, services map[string]kvservice.Service, prefixes syncengine.PrefixSet) *FSM {
	return &FSM{
		Self: self, Cfg: cfg, Peers: peers, Sessions: sessions, Router: rtr, Messenger: msn,
		Sync: syncEngine, Election: el, Log2: log2, Store: st, Services: services,
		SyncPrefixes: prefixes,
		outsideQuorum: make(map[string]bool),
	}
}

type lifecycleInfo string
type lifecycleError string

const (
	EnteredProbing  lifecycleInfo = "entering probing"
	EnteredElecting lifecycleInfo = "entering electing"
	EnteredSyncing  lifecycleInfo = "entering synchronizing"
	EnteredLeader   lifecycleInfo = "entering leader"
	EnteredPeon     lifecycleInfo = "entering peon"
	EnteredShutdown lifecycleInfo = "entering shutting down"
	SelfElected     lifecycleInfo = "single member map, self-electing"
	QuorumFormed    lifecycleInfo = "outside_quorum reached majority including self, calling election"
	AdoptedPeerMap  lifecycleInfo = "adopted newer peer map from probe reply"
)

const (
	SelfFencedErr lifecycleError = "removed from peer map after having joined, self-fencing"
)
