package syncengine

import (
	"context"
	"os"
	"time"

	"google.golang.org/grpc/peer"

	"github.com/wangevan/ceph/internal/config"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Sync Leader Protocol
//
// Owns trim-suppression for the cluster while any requester is mid-sync.
// Also the default Provider for whichever requester it granted, since
// spec §4.2 only lets Provider and Sync Leader differ under a debug
// override. One grpc SyncStream call serves both roles for its
// requester; HandleSyncStream is the sole entrypoint registered with the
// Messenger for every inbound stream.


/*
	HandleSyncStream:
		read loop for one inbound requester stream; OP_START/OP_HEARTBEAT/
		OP_FINISH drive the Sync Leader state machine below,
		OP_START_CHUNKS/OP_CHUNK_REPLY drive the Provider state machine in
		provider.go, and OP_ABORT tears down whichever of the two is live
		for this peer.
*/

func (e *Engine) HandleSyncStream(stream wire.MonWire_SyncStreamServer) error {
	requesterAddr := peerAddrFromStream(stream)

	for {
		msg, err := stream.Recv()
		if err != nil { return nil }

		e.mu.Lock()
		switch msg.Op {
		case wire.OpStart:
			e.onSyncStartLocked(requesterAddr, msg, stream)
		case wire.OpHeartbeat:
			e.onSyncHeartbeatLocked(requesterAddr, stream)
		case wire.OpFinish:
			e.onSyncFinishLocked(requesterAddr, stream)
		case wire.OpStartChunks:
			e.beginProviderLocked(requesterAddr, msg, stream)
		case wire.OpChunkReply:
			e.onProviderChunkReplyLocked(requesterAddr, msg, stream)
		case wire.OpAbort:
			if _, ok := e.leaders[requesterAddr]; ok {
				delete(e.leaders, requesterAddr)
				e.scheduleTrimReenableLocked()
			}
			e.abortProviderLocked(requesterAddr)
		}
		e.mu.Unlock()
	}
}

func peerAddrFromStream(stream wire.MonWire_SyncStreamServer) string {
	p, ok := peer.FromContext(stream.Context())
	if !ok || p.Addr == nil { return "unknown" }
	return p.Addr.String()
}

/*
	onSyncStartLocked:
		stray-if-already-tracking: a duplicate OP_START from a sender we
		already granted is dropped, not re-granted (spec §8 boundary
		behavior) — a restart must come through OP_ABORT first.
		forward-if-not-leader: a non-leader monitor that still receives an
		OP_START (stale peer map on the requester's side) forwards the
		start to the real leader with REPLY_TO set to the original sender,
		so the real leader's OP_START_REPLY can be relayed straight back
		without the requester needing to re-probe. Otherwise grant locally:
		disable trimming (refcounted across concurrently syncing
		requesters) and reply OP_START_REPLY.
*/

func (e *Engine) onSyncStartLocked(requesterAddr string, msg *wire.MonSyncMsg, stream wire.MonWire_SyncStreamServer) {
	if _, already := e.leaders[requesterAddr]; already {
		Log.Debug(string(StrayErr), requesterAddr)
		return
	}

	if e.IsLeader != nil && !e.IsLeader() {
		e.forwardStartToLeaderLocked(requesterAddr, stream)
		return
	}

	e.grantLeaderLocked(requesterAddr, stream)
}

func (e *Engine) grantLeaderLocked(requesterAddr string, stream wire.MonWire_SyncStreamServer) {
	checkKill(e.Cfg, config.KillSyncLeaderBeforeReply)

	e.trimMu.Lock()
	e.trimDisabled = true
	e.trimMu.Unlock()
	if e.Log2 != nil { e.Log2.TrimDisable() }

	e.leaders[requesterAddr] = &leaderState{requesterAddr: requesterAddr, stream: stream}
	Log.Info(string(LeaderGranted), requesterAddr)

	checkKill(e.Cfg, config.KillSyncLeaderAfterTrimDisable)

	stream.Send(&wire.MonSyncMsg{Op: wire.OpStartReply})
}

/*
	forwardStartToLeaderLocked:
		opens a short-lived outbound sync stream to the real leader, relays
		OP_START with REPLY_TO set to the original requester, and forwards
		whatever OP_START_REPLY comes back onto the original stream. Runs
		in a goroutine since it blocks on a network round trip and must
		not hold e.mu. Falls back to RETRY on any dial/send/recv failure or
		if the real leader's address is unknown.
*/

func (e *Engine) forwardStartToLeaderLocked(requesterAddr string, stream wire.MonWire_SyncStreamServer) {
	var leaderAddr string
	if e.LeaderAddr != nil { leaderAddr = e.LeaderAddr() }

	if leaderAddr == "" || leaderAddr == e.Self {
		stream.Send(&wire.MonSyncMsg{Op: wire.OpStartReply, Flags: wire.FlagRetry})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.Cfg.MonSyncTimeout)
		defer cancel()

		leaderStream, err := e.Messenger.OpenSyncStream(ctx, leaderAddr)
		if err != nil {
			stream.Send(&wire.MonSyncMsg{Op: wire.OpStartReply, Flags: wire.FlagRetry})
			return
		}

		if err := leaderStream.Send(&wire.MonSyncMsg{Op: wire.OpStart, ReplyTo: requesterAddr, HasReplyTo: true}); err != nil {
			stream.Send(&wire.MonSyncMsg{Op: wire.OpStartReply, Flags: wire.FlagRetry})
			return
		}

		reply, err := leaderStream.Recv()
		if err != nil {
			stream.Send(&wire.MonSyncMsg{Op: wire.OpStartReply, Flags: wire.FlagRetry})
			return
		}

		reply.HasReplyTo = true
		reply.ReplyTo = leaderAddr
		stream.Send(reply)
	}()
}

func (e *Engine) onSyncHeartbeatLocked(requesterAddr string, stream wire.MonWire_SyncStreamServer) {
	if ld, ok := e.leaders[requesterAddr]; ok && ld.trimTimer != nil {
		ld.trimTimer.Stop()
		ld.trimTimer = nil
	}
	stream.Send(&wire.MonSyncMsg{Op: wire.OpHeartbeatReply})
}

/*
	onSyncFinishLocked:
		drop this requester's leader-side bookkeeping and ack; arm a
		delayed trim re-enable for this departure rather than re-enabling
		immediately, giving a fast-following second sync a chance to reuse
		the disable without a trim racing in between.
*/

func (e *Engine) onSyncFinishLocked(requesterAddr string, stream wire.MonWire_SyncStreamServer) {
	if _, ok := e.leaders[requesterAddr]; !ok { return }
	delete(e.leaders, requesterAddr)
	stream.Send(&wire.MonSyncMsg{Op: wire.OpFinishReply})
	e.scheduleTrimReenableLocked()
}

// scheduleTrimReenableLocked balances this departure's TrimDisable with a
// TrimEnable, delayed by TrimReenableDelay so a fast-following second sync
// can reuse the disable without a trim racing in between. The shadow
// trimDisabled flag only clears once every tracked leader has departed.
func (e *Engine) scheduleTrimReenableLocked() {
	time.AfterFunc(e.Cfg.TrimReenableDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.Log2 != nil { e.Log2.TrimEnable() }
		if len(e.leaders) == 0 {
			e.trimMu.Lock()
			e.trimDisabled = false
			e.trimMu.Unlock()
		}
	})
}

/*
	AbortAllOnLoseElection (lose_election handling):
		a sync leader that loses its seat can no longer vouch for
		trim-suppression; broadcast OP_ABORT to every tracked requester and
		clear leader/provider role entirely.
*/

func (e *Engine) AbortAllOnLoseElection() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ld := range e.leaders {
		if ld.stream != nil { ld.stream.Send(&wire.MonSyncMsg{Op: wire.OpAbort}) }
		if e.Log2 != nil { e.Log2.TrimEnable() }
	}
	for _, prov := range e.providers {
		if prov.stream != nil { prov.stream.Send(&wire.MonSyncMsg{Op: wire.OpAbort}) }
	}

	e.leaders = make(map[string]*leaderState)
	e.providers = make(map[string]*providerState)

	e.trimMu.Lock()
	e.trimDisabled = false
	e.trimMu.Unlock()
}

func checkKill(cfg config.Config, point config.KillPoint) {
	if cfg.KillAt == point { os.Exit(1) }
}
