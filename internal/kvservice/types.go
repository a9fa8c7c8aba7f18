package kvservice

import (
	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/store"
)


//=========================================== Service Types
//
// Service is the external Service[i] collaborator's contract, exactly
// per spec's interface. Service stands in for one of the named map
// services (osdmap/mdsmap/pgmap/monmap/logm/auth) that layer on top of
// the replicated log; this core treats every such service identically.
// kvservice.Service is one concrete example, grounded on the teacher's
// internal/state bbolt collection store, generalized from a single
// bucket-per-collection KV machine to the monmap-adjacent example used
// by MonJoin/rename flows.


const NAME = "KVService"

var Log = logger.NewCustomLog(NAME)

const Prefix = "monmap"

type Action string

const (
	ActionPut    Action = "put"
	ActionDelete Action = "delete"
)

type Operation struct {
	Action Action
	Key    string
	Value  []byte
}

// Service is the narrow surface the core dispatches into: update from a
// committed paxos version, election-outcome notification, tick, clean
// shutdown, and message dispatch. Dispatch returns the reply payload to
// route back to the originating client (nil for operations with no
// meaningful reply), per spec §4.3's send_reply/handle_route path.
type Service interface {
	UpdateFromPaxos(version int64) error
	ElectionFinished() error
	Tick() error
	Shutdown() error
	Dispatch(op Operation) ([]byte, error)
}

type KVService struct {
	store *store.Store
}

func NewKVService(s *store.Store) *KVService {
	return &KVService{store: s}
}

type kvInfo string

const (
	AppliedFromPaxos kvInfo = "applied committed version from paxos"
)
