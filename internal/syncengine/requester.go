package syncengine

import (
	"context"
	"hash/crc32"
	"time"

	"github.com/wangevan/ceph/internal/config"
	"github.com/wangevan/ceph/internal/store"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Requester Protocol
//
// Initiated from Probing when a peer has higher committed state.


/*
	StartRequester:
		1.) mark Synchronizing/Requester/Start, persist mon_sync:in_sync,
			clear every sync-target prefix (a partial snapshot from a
			previous attempt is worthless)
		2.) open a coordination stream to the chosen peer and send
			OP_START; arm a Start-reply timeout at 2*trim_timeout to
			tolerate a forwarding hop
*/

func (e *Engine) StartRequester(peerAddr string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.requester == nil {
		if err := e.Store.Put(store.PrefixMonSync, store.KeyInSync, []byte{1}); err != nil { return err }
		for _, p := range e.Prefixes {
			if err := e.Store.Clear(p); err != nil { return err }
		}
	}

	e.requester = &requesterState{leaderAddr: peerAddr, phase: PhaseStart}
	Log.Info(string(RequesterStart), peerAddr)

	stream, err := e.Messenger.OpenSyncStream(context.Background(), peerAddr)
	if err != nil { return err }
	e.requester.stream = stream

	if err := stream.Send(&wire.MonSyncMsg{Op: wire.OpStart}); err != nil { return err }

	e.requester.startTimer = time.AfterFunc(2*e.Cfg.MonSyncTrimTimeout, func() { e.requesterTimeout("start") })

	go e.requesterReadLoop(stream)
	return nil
}

func (e *Engine) requesterReadLoop(stream interface {
	Recv() (*wire.MonSyncMsg, error)
}) {
	for {
		msg, err := stream.Recv()
		if err != nil { return }
		e.handleRequesterMessage(msg)
	}
}

func (e *Engine) handleRequesterMessage(msg *wire.MonSyncMsg) {
	if msg.Op == wire.OpFinishReply {
		e.OnFinishReply()
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.requester
	if r == nil { return }

	switch msg.Op {
	case wire.OpStartReply:
		e.onStartReplyLocked(r, msg)
	case wire.OpChunk:
		e.onChunkLocked(r, msg)
	case wire.OpHeartbeatReply:
		e.rearmHeartbeatLocked(r)
	case wire.OpAbort:
		e.abortRequesterLocked("received OP_ABORT from sync leader")
	}
}

/*
	onStartReplyLocked:
		if RETRY: drop all roles, arm a back-off timer, retry from step 1
		else: record replier as real Sync Leader, arm heartbeat timer,
		send initial heartbeat, send OP_START_CHUNKS to the provider,
		phase -> Chunks
*/

func (e *Engine) onStartReplyLocked(r *requesterState, msg *wire.MonSyncMsg) {
	if msg.Flags&wire.FlagRetry != 0 {
		r.attempts++
		if r.attempts > e.Cfg.MonSyncMaxRetries {
			e.abortRequesterLocked(string(MaxRetriesErr))
			return
		}

		leaderAddr := r.leaderAddr
		e.requester = nil
		e.trimMu.Lock()
		e.trimDisabled = false
		e.trimMu.Unlock()

		attempts := r.attempts
		time.AfterFunc(e.Cfg.MonSyncBackoffTimeout, func() {
			e.StartRequester(leaderAddr)
			e.mu.Lock()
			if e.requester != nil { e.requester.attempts = attempts }
			e.mu.Unlock()
		})
		return
	}

	if msg.HasReplyTo { r.leaderAddr = msg.ReplyTo }
	r.providerAddr = r.leaderAddr
	r.phase = PhaseChunks

	if r.startTimer != nil { r.startTimer.Stop() }
	r.heartbeatTimer = time.AfterFunc(e.Cfg.MonSyncHeartbeatInterval, func() { e.sendHeartbeat() })

	r.stream.Send(&wire.MonSyncMsg{Op: wire.OpHeartbeat})
	r.heartbeatTimeoutTimer = time.AfterFunc(e.Cfg.MonSyncHeartbeatTimeout, func() { e.heartbeatTimeoutExpired() })
	r.stream.Send(&wire.MonSyncMsg{Op: wire.OpStartChunks, LastKey: wire.StoreKey{Prefix: r.lastKey.Prefix, Key: r.lastKey.Key}})

	r.providerTimer = time.AfterFunc(e.Cfg.MonSyncTimeout, func() { e.requesterTimeout("provider") })
}

/*
	onChunkLocked:
		cancel provider timeout; apply the chunk's encoded transaction to
		the store; record last_key; send OP_CHUNK_REPLY (propagating
		LAST); re-arm provider timeout. If CRC flag set, verify a locally
		recomputed CRC matches; mismatch is fatal.
*/

func (e *Engine) onChunkLocked(r *requesterState, msg *wire.MonSyncMsg) {
	checkKill(e.Cfg, config.KillSyncRequesterChunk)
	if r.providerTimer != nil { r.providerTimer.Stop() }

	entries := decodeEntries(msg.ChunkBytes)
	batches := make(map[string][]store.KV, len(e.Prefixes))
	for _, entry := range entries {
		batches[entry.Prefix] = append(batches[entry.Prefix], store.KV{Key: entry.Key, Value: entry.Value})
		r.crc = crc32.Update(r.crc, crc32.IEEETable, entry.Value)
	}
	e.Store.PutAcrossPrefixes(batches)
	r.lastKey = store.PrefixedKey{Prefix: msg.LastKey.Prefix, Key: msg.LastKey.Key}

	if msg.HasCRC && msg.CRC != r.crc {
		e.abortRequesterLocked(string(CRCMismatchErr))
		return
	}

	reply := &wire.MonSyncMsg{Op: wire.OpChunkReply, LastKey: wire.StoreKey{Prefix: r.lastKey.Prefix, Key: r.lastKey.Key}}
	if msg.Flags&wire.FlagLast != 0 { reply.Flags |= wire.FlagLast }
	r.stream.Send(reply)

	if msg.Flags&wire.FlagLast != 0 {
		e.onLastChunkLocked(r)
		return
	}

	r.providerTimer = time.AfterFunc(e.Cfg.MonSyncTimeout, func() { e.requesterTimeout("provider") })
}

// onLastChunkLocked: Phase -> Stop, send OP_FINISH to Sync Leader, arm
// finish-reply timeout.
func (e *Engine) onLastChunkLocked(r *requesterState) {
	r.phase = PhaseStop
	r.stream.Send(&wire.MonSyncMsg{Op: wire.OpFinish})
	time.AfterFunc(e.Cfg.MonSyncTimeout, func() { e.requesterTimeout("finish") })
}

func (e *Engine) sendHeartbeat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.requester
	if r == nil || r.stream == nil { return }
	r.stream.Send(&wire.MonSyncMsg{Op: wire.OpHeartbeat})
	if r.heartbeatTimeoutTimer != nil { r.heartbeatTimeoutTimer.Stop() }
	r.heartbeatTimeoutTimer = time.AfterFunc(e.Cfg.MonSyncHeartbeatTimeout, func() { e.heartbeatTimeoutExpired() })
}

func (e *Engine) rearmHeartbeatLocked(r *requesterState) {
	if r.heartbeatTimer != nil { r.heartbeatTimer.Stop() }
	r.heartbeatTimer = time.AfterFunc(e.Cfg.MonSyncHeartbeatInterval, func() { e.sendHeartbeat() })

	if r.heartbeatTimeoutTimer != nil { r.heartbeatTimeoutTimer.Stop() }
	r.heartbeatTimeoutTimer = nil
	r.missedHeartbeats = 0
}

// heartbeatTimeoutExpired fires when a heartbeat reply hasn't arrived
// within MonSyncHeartbeatTimeout of sending. Three consecutive misses
// abort the sync per spec §4.2 step 7.
func (e *Engine) heartbeatTimeoutExpired() {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.requester
	if r == nil { return }

	r.missedHeartbeats++
	if r.missedHeartbeats >= 3 {
		e.abortRequesterLocked(string(HeartbeatLostErr))
		return
	}

	r.heartbeatTimeoutTimer = time.AfterFunc(e.Cfg.MonSyncHeartbeatTimeout, func() { e.heartbeatTimeoutExpired() })
}

func (e *Engine) requesterTimeout(kind string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.requester == nil { return }
	e.abortRequesterLocked("timeout: " + kind)
}

/*
	abortRequesterLocked (sync_requester_abort):
		cancel timers, send OP_ABORT to Provider, clear sync-target
		prefixes (store is knowingly inconsistent), return to Probing. The
		in_sync marker is left set — per spec §8 it is cleared exactly once,
		on successful finish (OnFinishReply), never on abort, so a crash or
		retry mid-sync still shows the store as not yet trustworthy.
*/

func (e *Engine) abortRequesterLocked(reason string) {
	r := e.requester
	if r == nil { return }

	Log.Warn(string(RequesterAbort), reason)

	if r.startTimer != nil { r.startTimer.Stop() }
	if r.providerTimer != nil { r.providerTimer.Stop() }
	if r.heartbeatTimer != nil { r.heartbeatTimer.Stop() }
	if r.heartbeatTimeoutTimer != nil { r.heartbeatTimeoutTimer.Stop() }

	if r.stream != nil { r.stream.Send(&wire.MonSyncMsg{Op: wire.OpAbort}) }

	for _, p := range e.Prefixes { e.Store.Clear(p) }

	e.requester = nil

	if e.OnSyncAbort != nil { go e.OnSyncAbort() }
}

/*
	OnFinishReply:
		clear mon_sync:in_sync marker, re-initialize the Log from the
		freshly populated store, drop all sync state, re-bootstrap.
*/

func (e *Engine) OnFinishReply() {
	e.mu.Lock()
	r := e.requester
	if r == nil {
		e.mu.Unlock()
		return
	}

	e.Store.Put(store.PrefixMonSync, store.KeyInSync, nil)
	e.requester = nil
	e.mu.Unlock()

	Log.Info(string(RequesterFinish))
	if e.Log2 != nil { e.Log2.Restart() }
	if e.OnSyncComplete != nil { go e.OnSyncComplete() }
}

// IsRequesting reports whether this node is currently acting as
// Requester — at most one of {Leader, Peon, Requester} holds (spec §8).
func (e *Engine) IsRequesting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requester != nil
}
