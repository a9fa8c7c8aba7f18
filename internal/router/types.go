package router

import (
	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/messenger"
	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/session"
)


//=========================================== Router Types
//
// Router (C3): forwards state-changing client requests to the current
// leader, demultiplexes replies back to the originating client.
// Grounded on the teacher's leader-redirect logic in
// internal/request/handlers.go (http.Client.Do there becomes
// Messenger.Send here) and on Monitor::forward_request_leader/
// handle_forward/handle_route/try_send_message for exact session and
// proxy_link cycle-break semantics.


const NAME = "Router"

var Log = logger.NewCustomLog(NAME)

type Router struct {
	Self     string
	Peers    *peermap.PeerMap
	Sessions *session.Registry
	Messenger *messenger.Messenger

	// CurrentLeader is updated by the lifecycle FSM whenever it changes;
	// empty string means unknown.
	CurrentLeader string

	// Capability required on the synthesized forwarded-request session,
	// per spec §4.3 handle_forward ("verify capability MONMAP:X").
	RequiredService string
}

func New(self string, peers *peermap.PeerMap, sessions *session.Registry, msn *messenger.Messenger) *Router {
	return &Router{Self: self, Peers: peers, Sessions: sessions, Messenger: msn, RequiredService: "MONMAP"}
}

type routerInfo string
type routerError string

const (
	NoLeaderErr    routerError = "no current leader known, dropping forward"
	SessionClosedErr routerError = "owning session closed, dropping forward"
	PermissionErr  routerError = "forwarded request lacks required capability"
	RouteNotFoundErr routerError = "route tid not found, dropping reply"
)

const (
	ResentOnEntry routerInfo = "resent outstanding routed request on leader/peon entry"
)
