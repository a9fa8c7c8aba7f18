package dispatch

import (
	"sync"
	"time"

	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/kvservice"
	"github.com/wangevan/ceph/internal/lifecycle"
	"github.com/wangevan/ceph/internal/messenger"
	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/router"
	"github.com/wangevan/ceph/internal/session"
)


//=========================================== Dispatch Shell Types (C6)
//
// Per-message admission, capability check, routing to C3/C4/C5 or an
// external Service, quorum waitlisting. Grounded on the teacher's
// internal/request handler-table dispatch (request/handlers.go), with
// the waitlist modeled after the same package's pending-response
// channel bookkeeping.


const NAME = "Dispatch"

var Log = logger.NewCustomLog(NAME)

// waitlisted is one held inbound message, released once quorum forms or
// dropped once it ages past mon_lease.
type waitlisted struct {
	connID   string
	kind     string
	payload  []byte
	queuedAt time.Time
}

// Shell is the single entry point every inbound Envelope passes through
// before reaching a component or Service.
type Shell struct {
	mu sync.Mutex

	Self      string
	FSM       *lifecycle.FSM
	Router    *router.Router
	Sessions  *session.Registry
	Peers     *peermap.PeerMap
	Messenger *messenger.Messenger
	Services  map[string]kvservice.Service

	MonLease time.Duration

	waitlist []waitlisted

	// firstSeen records when each session-less connection was first seen,
	// so the mon_lease admission timeout (spec §4.4 rule 2) can measure
	// real connection age instead of always reading as brand new.
	firstSeen map[string]time.Time
}

func NewShell(self string, fsm *lifecycle.FSM, rtr *router.Router, sessions *session.Registry, peers *peermap.PeerMap, msn *messenger.Messenger, services map[string]kvservice.Service, monLease time.Duration) *Shell {
	return &Shell{Self: self, FSM: fsm, Router: rtr, Sessions: sessions, Peers: peers, Messenger: msn, Services: services, MonLease: monLease, firstSeen: make(map[string]time.Time)}
}

type dispatchInfo string
type dispatchError string

const (
	Waitlisted    dispatchInfo = "out of quorum, waitlisting message"
	WaitlistFlush dispatchInfo = "quorum formed, flushing waitlist"
)

const (
	ShuttingDownErr dispatchError = "shutting down, dropping message"
	NoSessionErr    dispatchError = "no session and out of quorum, rejecting"
	EpochStaleErr   dispatchError = "paxos epoch not greater than current, dropping silently"
)
