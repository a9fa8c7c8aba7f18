package session

import (
	"sync"
	"time"

	"github.com/sirgallo/logger"
)


//=========================================== Session Registry Types
//
// Session Registry (C2): active client/peer connections, their
// capabilities, expiry, and routed-request bookkeeping. Grounded on the
// teacher's ClientMappedResponseChannels sync.Map pattern, generalized
// from a single response-channel map to the full Session/RoutedRequest
// shape spec'd.


const NAME = "Session"

var Log = logger.NewCustomLog(NAME)

// CapabilityGrant is a per-service bitmask plus an optional allow-all and
// ordered command-prefix allow-lists, per spec §3.
type CapBits uint8

const (
	CapRead  CapBits = 1 << 0
	CapWrite CapBits = 1 << 1 // X
)

type AllowList []string // tokens; "*" matches one token, "..." matches remainder

type CapabilityGrant struct {
	PerService map[string]CapBits
	AllowAll   bool
	Allow      []AllowList
}

func (c CapabilityGrant) Has(service string, bit CapBits) bool {
	if c.AllowAll { return true }
	return c.PerService[service]&bit != 0
}

// ProxyLink is set for fabricated sessions created from a forwarded
// request; it holds the connection to the forwarding monitor and the
// forward tag so replies route back. The back-reference from the real
// connection to this session must be cleared after handoff to break the
// session<->connection ownership cycle (spec §9).
type ProxyLink struct {
	ForwardingMonitor string
	Tid               int64
}

type PeerIdentity struct {
	ConnID  string
	Address string
	IsPeer  bool
}

type Session struct {
	PeerIdentity PeerIdentity
	Caps         CapabilityGrant
	AdmittedAt   time.Time
	ExpiresAt    *time.Time
	Closed       bool
	ProxyLink    *ProxyLink
}

// RoutedRequest is created when a non-leader receives a state-changing
// client message; destroyed on reply arrival or when the owning session
// closes.
type RoutedRequest struct {
	Tid                int64
	Originator         string
	SerializedRequest  []byte
	OwningSession      string
}

// Registry owns every live Session, keyed by connection id, and every
// outstanding RoutedRequest, keyed by tid. The Dispatch Shell owns this
// registry; the Router borrows sessions by id.
type Registry struct {
	mu sync.RWMutex

	sessions map[string]*Session
	routed   map[int64]*RoutedRequest

	nextTid int64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		routed:   make(map[int64]*RoutedRequest),
	}
}

type sessionError string

const (
	NotFoundErr sessionError = "session not found"
	ClosedErr   sessionError = "session closed"
)
