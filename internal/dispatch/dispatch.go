package dispatch

import (
	"errors"
	"time"

	"github.com/wangevan/ceph/internal/kvservice"
	"github.com/wangevan/ceph/internal/lifecycle"
	"github.com/wangevan/ceph/internal/session"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Dispatch Operations
//
// Inbound() is the single gate every Envelope passes through, applying
// the four numbered rules from spec §4.4 in order.


// bypassKinds are message families that bypass the session-admission
// gate: peer monitors, auth, and commands.
var bypassKinds = map[string]bool{"probe": true, "join": true, "auth": true, "command": true, "forward": true, "route": true}

/*
	Inbound:
		1.) shutdown gate
		2.) session admission (waitlist or reject if out of quorum and no
			session yet, unless the message kind bypasses the gate)
		3.) capability assignment for newly admitted sessions
		4.) typed routing to the right component or Service
*/

func (d *Shell) Inbound(connID, fromAddr string, isPeer bool, env *wire.Envelope) (*wire.Envelope, error) {
	d.mu.Lock()

	if d.FSM.CurrentState() == lifecycle.ShuttingDown {
		d.mu.Unlock()
		return nil, errors.New(string(ShuttingDownErr))
	}

	sess, hasSession := d.Sessions.Get(connID)
	inQuorum := d.FSM.CurrentState() == lifecycle.Leader || d.FSM.CurrentState() == lifecycle.Peon

	if !hasSession && !isPeer && !inQuorum && !bypassKinds[env.Kind] {
		if time.Since(d.firstSeenLocked(connID)) < d.MonLease {
			d.waitlist = append(d.waitlist, waitlisted{connID: connID, kind: env.Kind, payload: env.Payload, queuedAt: time.Now()})
			Log.Info(string(Waitlisted), connID)
			d.mu.Unlock()
			return nil, nil
		}
		delete(d.firstSeen, connID)
		d.mu.Unlock()
		d.Messenger.MarkDown(fromAddr)
		return nil, errors.New(string(NoSessionErr))
	}

	if !hasSession {
		grant := session.CapabilityGrant{}
		if isPeer { grant = session.CapabilityGrant{AllowAll: true} }
		sess = d.Sessions.Admit(connID, session.PeerIdentity{ConnID: connID, Address: fromAddr, IsPeer: isPeer}, grant, 0)
		delete(d.firstSeen, connID)
	}
	_ = sess

	d.mu.Unlock()
	return d.route(connID, fromAddr, env)
}

// firstSeenLocked records and returns when connID was first observed
// without a session, so repeated calls measure real connection age
// against mon_lease instead of always reading as brand new.
func (d *Shell) firstSeenLocked(connID string) time.Time {
	if t, ok := d.firstSeen[connID]; ok { return t }
	now := time.Now()
	d.firstSeen[connID] = now
	return now
}

func (d *Shell) route(connID, fromAddr string, env *wire.Envelope) (*wire.Envelope, error) {
	switch env.Kind {
	case "probe":
		probe := &wire.MonProbe{}
		if err := probe.Unmarshal(env.Payload); err != nil { return nil, err }
		if probe.Op == wire.ProbeOpProbe {
			reply := d.FSM.HandleProbe(fromAddr, probe)
			payload, err := reply.Marshal()
			if err != nil { return nil, err }
			return &wire.Envelope{Kind: "probe", Payload: payload}, nil
		}
		return nil, d.FSM.HandleProbeReply(fromAddr, probe)

	case "join":
		join := &wire.MonJoin{}
		if err := join.Unmarshal(env.Payload); err != nil { return nil, err }
		d.Peers.LearnAddress(join.Name, join.Address)
		return &wire.Envelope{Kind: "join"}, nil

	case "forward":
		fwd := &wire.Forward{}
		if err := fwd.Unmarshal(env.Payload); err != nil { return nil, err }
		redispatch := func(transientConnID string, inner []byte) error {
			innerEnv := &wire.Envelope{}
			if err := innerEnv.Unmarshal(inner); err != nil { return err }
			_, err := d.Inbound(transientConnID, fwd.ClientAddress, false, innerEnv)
			return err
		}
		return nil, d.Router.HandleForward(fromAddr, fwd, redispatch)

	case "route":
		route := &wire.Route{}
		if err := route.Unmarshal(env.Payload); err != nil { return nil, err }
		sendToClient := func(originator string, replyBytes []byte) error {
			_, err := d.Messenger.Send(originator, &wire.Envelope{Kind: "command_ack", Payload: replyBytes})
			return err
		}
		return nil, d.Router.HandleRoute(route, sendToClient)

	default:
		return d.dispatchToServiceLocked(connID, fromAddr, env)
	}
}

/*
	dispatchToServiceLocked:
		paxos-epoch gate, then forward the opaque payload to the named
		Service. Messages whose epoch is not greater than the Peer Map's
		current epoch are dropped silently; a strictly greater epoch
		triggers re-bootstrap before the payload is applied. Any reply the
		Service produces is routed back via the Router's send_reply path
		(spec §4.3), so it reaches the client either directly or through
		the forwarding monitor that proxied the original request.
*/

func (d *Shell) dispatchToServiceLocked(connID, fromAddr string, env *wire.Envelope) (*wire.Envelope, error) {
	if env.Epoch > 0 {
		if env.Epoch <= int64(d.Peers.EpochValue()) {
			return nil, nil // EpochStaleErr, dropped silently per spec
		}
		d.FSM.EnterProbing()
	}

	svc, ok := d.Services[env.Kind]
	if !ok { return nil, nil }

	if leader := d.Router.CurrentLeader; leader != "" && leader != d.Self {
		return nil, d.forwardToLeaderLocked(connID, fromAddr, env)
	}

	reply, dispatchErr := svc.Dispatch(kvservice.Operation{Action: kvservice.ActionPut, Key: env.Kind, Value: env.Payload})
	if dispatchErr != nil { return nil, dispatchErr }
	if reply == nil { return nil, nil }

	sendDirect := func(replyBytes []byte) error {
		_, err := d.Messenger.Send(fromAddr, &wire.Envelope{Kind: "command_ack", Payload: replyBytes})
		return err
	}
	return nil, d.Router.SendReply(connID, reply, sendDirect)
}

/*
	forwardToLeaderLocked (forward_request_leader, spec §4.3):
		a peon that receives a state-changing message does not apply it
		locally; it wraps the whole Envelope (so the leader's redispatch
		keeps the original Service kind, not just the opaque payload) and
		hands it to the Router to forward to the current leader. A session
		that already carries a proxy_link is itself a synthesized forwarded
		session (admitted by HandleForward on the leader side), so it is
		marked as already-forwarded to keep the hop count at one.
*/

func (d *Shell) forwardToLeaderLocked(connID, fromAddr string, env *wire.Envelope) error {
	sessionMon := -1
	var caps []byte
	if sess, ok := d.Sessions.Get(connID); ok {
		if sess.ProxyLink != nil { sessionMon = 0 }
		caps = session.EncodeCapabilityGrant(sess.Caps)
	}

	inner, err := env.Marshal()
	if err != nil { return err }

	return d.Router.ForwardRequestLeader(connID, sessionMon, inner, caps, fromAddr)
}

// FlushWaitlist is invoked by the tick loop once quorum forms.
func (d *Shell) FlushWaitlist() {
	d.mu.Lock()
	pending := d.waitlist
	d.waitlist = nil
	d.mu.Unlock()

	if len(pending) == 0 { return }
	Log.Info(string(WaitlistFlush), len(pending))

	for _, w := range pending {
		d.Inbound(w.connID, "", false, &wire.Envelope{Kind: w.kind, Payload: w.payload})
	}
}

// TrimWaitlist drops every entry older than mon_lease, closing the
// corresponding connection is the caller's responsibility at the
// transport layer; here we only stop holding the message.
func (d *Shell) TrimWaitlist() {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-d.MonLease)
	kept := make([]waitlisted, 0, len(d.waitlist))
	for _, w := range d.waitlist {
		if w.queuedAt.After(cutoff) { kept = append(kept, w) }
	}
	d.waitlist = kept
}
