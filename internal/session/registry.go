package session

import (
	"errors"
	"sync/atomic"
	"time"
)


//=========================================== Registry Operations


func (r *Registry) Admit(connID string, peer PeerIdentity, caps CapabilityGrant, lease time.Duration) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{PeerIdentity: peer, Caps: caps, AdmittedAt: time.Now()}
	if lease != 0 {
		exp := time.Now().Add(lease)
		s.ExpiresAt = &exp
	}

	r.sessions[connID] = s
	return s
}

func (r *Registry) Get(connID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	return s, ok
}

func (r *Registry) Close(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[connID]; ok {
		s.Closed = true
		delete(r.sessions, connID)
	}
}

// TrimExpired closes every session whose ExpiresAt has passed, used by
// the tick loop (C7, spec §4.5b).
func (r *Registry) TrimExpired(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var trimmed []string
	for id, s := range r.sessions {
		if s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
			s.Closed = true
			delete(r.sessions, id)
			trimmed = append(trimmed, id)
		}
	}
	return trimmed
}

// EvictClients closes every non-peer session, used when this node has
// been out of quorum for more than 2*mon_lease (spec §4.5c).
func (r *Registry) EvictClients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, s := range r.sessions {
		if !s.PeerIdentity.IsPeer {
			s.Closed = true
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

//=========================================== Routed Request Bookkeeping


// NextTid allocates the next monotonically increasing, process-wide
// unique tid (spec §8 invariant).
func (r *Registry) NextTid() int64 {
	return atomic.AddInt64(&r.nextTid, 1)
}

func (r *Registry) TrackRoute(rr *RoutedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routed[rr.Tid] = rr
}

func (r *Registry) LookupRoute(tid int64) (*RoutedRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rr, ok := r.routed[tid]
	return rr, ok
}

func (r *Registry) DropRoute(tid int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routed, tid)
}

// DropRoutesForSession removes every outstanding routed request owned by
// a closing session (RoutedRequest is destroyed when owning session
// closes, per spec §3).
func (r *Registry) DropRoutesForSession(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tid, rr := range r.routed {
		if rr.OwningSession == connID { delete(r.routed, tid) }
	}
}

// AllRoutes returns every outstanding routed request, used to resend on
// entering Leader/Peon (spec §4.3 leader-change resilience).
func (r *Registry) AllRoutes() []*RoutedRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*RoutedRequest, 0, len(r.routed))
	for _, rr := range r.routed { out = append(out, rr) }
	return out
}

var ErrSessionClosed = errors.New(string(ClosedErr))
