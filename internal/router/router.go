package router

import (
	"errors"

	"github.com/sirgallo/array"

	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/session"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Router Operations


/*
	ForwardRequestLeader:
		if this node is not the leader and the request has not already
		been forwarded (sessionMon >= 0 signals prior forwarding), wrap it
		keyed by a monotonically increasing tid, record
		{tid -> RoutedRequest}, and send to the current leader. If the
		owning session is already closed, drop.
*/

func (r *Router) ForwardRequestLeader(connID string, sessionMon int, innerMessage []byte, caps []byte, clientAddr string) error {
	if r.CurrentLeader == r.Self { return nil }
	if sessionMon >= 0 { return nil } // already forwarded once

	sess, ok := r.Sessions.Get(connID)
	if !ok || sess.Closed { return errors.New(string(SessionClosedErr)) }

	if r.CurrentLeader == "" { return errors.New(string(NoLeaderErr)) }

	tid := r.Sessions.NextTid()
	r.Sessions.TrackRoute(&session.RoutedRequest{
		Tid: tid, Originator: clientAddr, SerializedRequest: innerMessage, OwningSession: connID,
	})

	fwd := &wire.Forward{Tid: tid, InnerMessageBytes: innerMessage, ClientCaps: caps, ClientAddress: clientAddr}
	return r.sendForward(r.CurrentLeader, fwd)
}

func (r *Router) sendForward(leaderAddr string, fwd *wire.Forward) error {
	payload, err := fwd.Marshal()
	if err != nil { return err }
	env := wireEnvelope("forward", payload)
	_, sendErr := r.Messenger.Send(leaderAddr, &env)
	return sendErr
}

/*
	HandleForward (leader side):
		verify capability MONMAP:X against the real caller's capabilities
		(decoded from the Forward's opaque ClientCaps field, not trusted
		from the forwarding peer); synthesize a transient session bound
		to a transient connection carrying those capabilities and a
		proxy_link pointing at the forwarding monitor; redispatch the
		inner request as if it had arrived directly. The synthetic
		connection closes the session<->connection ownership loop, so the
		back-reference from session to connection is cleared after
		handoff (spec §9).
*/

func (r *Router) HandleForward(fromAddr string, fwd *wire.Forward, redispatch func(connID string, inner []byte) error) error {
	grant := session.DecodeCapabilityGrant(fwd.ClientCaps)
	if !grant.Has(r.RequiredService, session.CapWrite) { return errors.New(string(PermissionErr)) }

	transientConnID := "forward:" + fromAddr + ":" + itoa64(fwd.Tid)
	sess := r.Sessions.Admit(transientConnID, session.PeerIdentity{ConnID: transientConnID, Address: fwd.ClientAddress}, grant, 0)
	sess.ProxyLink = &session.ProxyLink{ForwardingMonitor: fromAddr, Tid: fwd.Tid}

	dispatchErr := redispatch(transientConnID, fwd.InnerMessageBytes)

	// break the session<->connection cycle: the transient connection does
	// not persist past this handoff.
	r.Sessions.Close(transientConnID)

	return dispatchErr
}

/*
	SendReply:
		if the originating session has a proxy_link, encapsulate the
		reply in a Route message addressed to the forwarding monitor;
		else send directly to the client.
*/

func (r *Router) SendReply(connID string, replyBytes []byte, sendDirect func(replyBytes []byte) error) error {
	sess, ok := r.Sessions.Get(connID)
	if !ok { return errors.New(string(SessionClosedErr)) }

	if sess.ProxyLink != nil {
		route := &wire.Route{Tid: sess.ProxyLink.Tid, HasTid: true, Dest: sess.PeerIdentity.Address, InnerMessageBytes: replyBytes}
		payload, err := route.Marshal()
		if err != nil { return err }
		env := wireEnvelope("route", payload)
		_, sendErr := r.Messenger.Send(sess.ProxyLink.ForwardingMonitor, &env)
		return sendErr
	}

	return sendDirect(replyBytes)
}

/*
	HandleRoute (forwarding monitor side):
		look up tid in the routed-request table; on hit, clear the
		reply's serialized payload (it may need re-encoding for the
		client's feature set) and send to the original client; remove the
		entry.
*/

func (r *Router) HandleRoute(route *wire.Route, sendToClient func(originator string, replyBytes []byte) error) error {
	if !route.HasTid { return nil }

	rr, ok := r.Sessions.LookupRoute(route.Tid)
	if !ok { return errors.New(string(RouteNotFoundErr)) }

	r.Sessions.DropRoute(route.Tid)
	rr.SerializedRequest = nil // cleared; may need re-encoding for the client

	return sendToClient(rr.Originator, route.InnerMessageBytes)
}

/*
	ResendOutstanding:
		on entering Leader/Peon, resend every outstanding routed request
		to the (possibly new) leader under its original tid. Duplicates
		are idempotent because state-changing services key by client+tid.
*/

func (r *Router) ResendOutstanding() {
	all := r.Sessions.AllRoutes()

	toForward := func(rr *session.RoutedRequest) *wire.Forward {
		return &wire.Forward{Tid: rr.Tid, InnerMessageBytes: rr.SerializedRequest, ClientAddress: rr.Originator}
	}
	forwards := array.Map[*session.RoutedRequest, *wire.Forward](all, toForward)

	for _, fwd := range forwards {
		if r.CurrentLeader != "" { r.sendForward(r.CurrentLeader, fwd) }
	}

	if len(forwards) > 0 { Log.Info(string(ResentOnEntry), len(forwards)) }
}

/*
	Broadcast (supplemented feature: try_send_message peer-map fanout):
		mirror a message to every other quorum member wrapped in Route
		with no tid, so a peon that doesn't yet know a session exists can
		still route replies if a leader change happens mid-flight.
*/

func (r *Router) Broadcast(members []peermap.Member, innerMessage []byte) {
	notSelf := func(m peermap.Member) bool { return m.Name != r.Self }
	targets := array.Filter[peermap.Member](members, notSelf)

	for _, m := range targets {
		route := &wire.Route{Dest: m.Address, InnerMessageBytes: innerMessage}
		payload, err := route.Marshal()
		if err != nil { continue }
		env := wireEnvelope("route", payload)
		r.Messenger.Send(m.Address, &env)
	}
}

func wireEnvelope(kind string, payload []byte) wire.Envelope {
	return wire.Envelope{Kind: kind, Payload: payload}
}

func itoa64(v int64) string {
	if v == 0 { return "0" }
	neg := v < 0
	if neg { v = -v }
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
