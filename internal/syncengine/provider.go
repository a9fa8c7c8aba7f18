package syncengine

import (
	"github.com/wangevan/ceph/internal/config"
	"github.com/wangevan/ceph/internal/store"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Provider Protocol
//
// Streams the store's content to one Requester, one chunk outstanding at
// a time, periodically stamping a CRC32 over the values sent so the
// Requester can detect silent corruption. Grounded on the teacher's
// internal/snapshot chunked bidi-stream client/server pair
// (ChunkSize-bounded pushes acked one at a time).


/*
	beginProviderLocked:
		OP_START_CHUNKS arrived on the leader/provider stream — create a
		Synchronizer cursor over every sync-target prefix, optionally
		resuming at the key the requester last acked (msg.LastKey), and
		push the first chunk immediately.
*/

func (e *Engine) beginProviderLocked(requesterAddr string, msg *wire.MonSyncMsg, stream wire.MonWire_SyncStreamServer) {
	resumeAt := store.PrefixedKey{Prefix: msg.LastKey.Prefix, Key: msg.LastKey.Key}
	cursor := e.Store.NewSynchronizer(e.Prefixes, resumeAt)

	prov := &providerState{cursor: cursor, stream: stream}
	e.providers[requesterAddr] = prov

	Log.Info(string(ProviderStart), requesterAddr)
	checkKill(e.Cfg, config.KillSyncProviderStartChunks)
	e.sendNextChunkLocked(requesterAddr, prov, stream)
}

/*
	sendNextChunkLocked:
		pull one bounded-size chunk from the cursor, CRC-stamp it if this
		is the last chunk or SyncCRCEveryK chunks have elapsed since the
		last stamp, and push it as a single OP_CHUNK. One chunk is ever
		outstanding; the next push happens only once OP_CHUNK_REPLY for
		this one arrives (onProviderChunkReplyLocked).
*/

func (e *Engine) sendNextChunkLocked(requesterAddr string, prov *providerState, stream wire.MonWire_SyncStreamServer) {
	chunk, err := prov.cursor.Next(e.Cfg.SyncChunkBytes)
	if err != nil {
		stream.Send(&wire.MonSyncMsg{Op: wire.OpAbort})
		delete(e.providers, requesterAddr)
		return
	}

	prov.sinceLastCRC++
	stampCRC := chunk.Done || prov.sinceLastCRC >= e.Cfg.SyncCRCEveryK

	out := &wire.MonSyncMsg{
		Op:         wire.OpChunk,
		ChunkBytes: encodeEntries(chunk.Entries),
		LastKey:    wire.StoreKey{Prefix: chunk.LastKey.Prefix, Key: chunk.LastKey.Key},
	}
	if chunk.Done { out.Flags |= wire.FlagLast }
	if stampCRC {
		out.HasCRC = true
		out.CRC = chunk.CRC
		prov.sinceLastCRC = 0
	}

	stream.Send(out)

	if chunk.Done { delete(e.providers, requesterAddr) }
}

// onProviderChunkReplyLocked advances the provider's cursor once the
// requester acknowledges the outstanding chunk.
func (e *Engine) onProviderChunkReplyLocked(requesterAddr string, msg *wire.MonSyncMsg, stream wire.MonWire_SyncStreamServer) {
	prov, ok := e.providers[requesterAddr]
	if !ok { return }
	checkKill(e.Cfg, config.KillSyncProviderChunkReply)
	if msg.Flags&wire.FlagLast != 0 {
		delete(e.providers, requesterAddr)
		return
	}
	e.sendNextChunkLocked(requesterAddr, prov, stream)
}

func (e *Engine) abortProviderLocked(requesterAddr string) {
	delete(e.providers, requesterAddr)
}

// encodeEntries packs a chunk's (prefix, key, value) triples into a flat
// byte stream for the wire, each of the three fields length-prefixed.
func encodeEntries(entries []store.PrefixedKV) []byte {
	var out []byte
	for _, kv := range entries {
		out = appendLenPrefixed(out, []byte(kv.Prefix))
		out = appendLenPrefixed(out, []byte(kv.Key))
		out = appendLenPrefixed(out, kv.Value)
	}
	return out
}

func decodeEntries(b []byte) []store.PrefixedKV {
	var out []store.PrefixedKV
	for len(b) > 0 {
		prefix, rest := consumeLenPrefixed(b)
		key, rest2 := consumeLenPrefixed(rest)
		val, rest3 := consumeLenPrefixed(rest2)
		out = append(out, store.PrefixedKV{Prefix: string(prefix), Key: string(key), Value: val})
		b = rest3
	}
	return out
}

func appendLenPrefixed(dst, field []byte) []byte {
	n := len(field)
	dst = append(dst, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return append(dst, field...)
}

func consumeLenPrefixed(b []byte) ([]byte, []byte) {
	if len(b) < 4 { return nil, nil }
	n := int(b[0]) | int(b[1])<<8 | int(b[2])<<16 | int(b[3])<<24
	if len(b) < 4+n { return nil, nil }
	return b[4 : 4+n], b[4+n:]
}
