package admin

import (
	"sync"

	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/lifecycle"
	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/stats"
	"github.com/wangevan/ceph/internal/store"
	"github.com/wangevan/ceph/internal/syncengine"
)


//=========================================== Admin Query Types (C8)
//
// Read-only snapshots of lifecycle and sync state for operators, plus
// the two state-mutating admin commands (sync_force, add_bootstrap_peer
// _hint). Grounded on the teacher's internal/stats disk/runtime snapshot
// shape (stats/types.go), generalized from disk metrics to monitor
// lifecycle/sync/quorum status.


const NAME = "Admin"

var Log = logger.NewCustomLog(NAME)

type Query struct {
	mu sync.Mutex

	FSM   *lifecycle.FSM
	Peers *peermap.PeerMap
	Sync  *syncengine.Engine
	Store *store.Store

	ExtraBootstrapHints *[]string
}

func NewQuery(fsm *lifecycle.FSM, peers *peermap.PeerMap, sync *syncengine.Engine, st *store.Store, hints *[]string) *Query {
	return &Query{FSM: fsm, Peers: peers, Sync: sync, Store: st, ExtraBootstrapHints: hints}
}

// MonStatus is the JSON shape returned by the mon_status admin command.
type MonStatus struct {
	Name    string   `json:"name"`
	Rank    int      `json:"rank"`
	State   string   `json:"state"`
	Epoch   uint64   `json:"epoch"`
	Members []string `json:"members"`
	Disk    *stats.Stats `json:"disk,omitempty"`
}

// QuorumStatus is the JSON shape returned by the quorum_status admin command.
type QuorumStatus struct {
	QuorumNames []string `json:"quorum_names"`
	Leader      string   `json:"leader"`
}

// SyncStatus is the JSON shape returned by the sync_status admin command.
type SyncStatus struct {
	State       string `json:"state"`
	Requesting  bool   `json:"requesting"`
	InSync      bool   `json:"in_sync"`
}

type adminError string

const (
	AlreadyActiveErr adminError = "add_bootstrap_peer_hint rejected, sync already active"
)
