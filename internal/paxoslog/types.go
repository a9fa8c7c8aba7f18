package paxoslog

import (
	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/store"
)


//=========================================== Log Types
//
// Log is the external replicated-log collaborator's contract, exactly
// per spec's Log interface. The real Paxos two-phase commit algorithm
// is out of scope; Log only persists and serves committed versions —
// advancing past first_committed/version is driven by whatever drives
// Paxos itself, standing in the way Service[i] stands in for a map
// service.


const NAME = "PaxosLog"

var Logger = logger.NewCustomLog(NAME)

const Prefix = "paxos"

const (
	keyVersion    = "version"
	keyFirst      = "first_committed"
)

// Log is the narrow surface the core consults: current/first committed
// version, role-entry hooks, trim suppression, and a consistency check.
type Log interface {
	Version() (int64, error)
	FirstCommitted() (int64, error)
	Init() error
	LeaderInit() error
	PeonInit() error
	Restart() error
	TrimDisable()
	TrimEnable()
	ShouldTrim() bool
	IsConsistent() bool
}

// BoltLog is the one concrete Log implementation, backed by the core's
// own Store. Advancing Version/FirstCommitted is exposed via SetVersion
// for whatever external driver (test harness, future Paxos module) owns
// the actual commit algorithm.
type BoltLog struct {
	store *store.Store

	trimDisableCount int
	trimEnableCount  int
}

func NewBoltLog(s *store.Store) *BoltLog {
	return &BoltLog{store: s}
}
