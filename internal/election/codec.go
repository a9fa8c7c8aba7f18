package election

import (
	"strconv"
	"strings"

	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Acclaim Wire Encoding
//
// The acclaim request/reply are an implementation detail of this
// particular Election stand-in, not part of the core's external wire
// message set (spec §6) — a simple delimited encoding is enough, carried
// inside a generic wire.Envelope the way thin-passthrough messages are.


func encodeAcclaim(candidate string, epoch uint64) []byte {
	return []byte(candidate + "|" + strconv.FormatUint(epoch, 10))
}

func decodeAcclaim(b []byte) (candidate string, epoch uint64) {
	parts := strings.SplitN(string(b), "|", 2)
	if len(parts) != 2 { return "", 0 }
	candidate = parts[0]
	e, _ := strconv.ParseUint(parts[1], 10, 64)
	return candidate, e
}

func encodeAcclaimReply(defers bool, rank int) []byte {
	d := "0"
	if defers { d = "1" }
	return []byte(d + "|" + strconv.Itoa(rank))
}

func decodeAcclaimReply(env *wire.Envelope) (defers bool, rank int) {
	if env == nil { return false, -1 }
	parts := strings.SplitN(string(env.Payload), "|", 2)
	if len(parts) != 2 { return false, -1 }
	rank, _ = strconv.Atoi(parts[1])
	return parts[0] == "1", rank
}

/*
	HandleAcclaim:
		server-side handler for an inbound acclaim request. The dispatch
		shell has no route for wire.Envelope.Kind == "acclaim", so nothing
		in this module passes inbound acclaim requests to it. Defers
		to the candidate unless this node is itself participating and has
		a lower rank (lower rank wins ties, matching CallElection's own
		tie-break).
*/

func (a *Acclamation) HandleAcclaim(from string, req *wire.Envelope) *wire.Envelope {
	candidate, _ := decodeAcclaim(req.Payload)

	selfRank := a.peers.Rank(a.self)
	candidateRank := a.peers.Rank(candidate)

	a.mu.Lock()
	participating := a.participating
	a.mu.Unlock()

	defers := !participating || candidateRank <= selfRank
	return &wire.Envelope{Kind: "acclaim_reply", Payload: encodeAcclaimReply(defers, selfRank)}
}
