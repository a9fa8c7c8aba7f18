package election

import (
	"testing"

	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/wire"
)

func TestAcclaimEncodeDecodeRoundTrip(t *testing.T) {
	b := encodeAcclaim("mon.a", 7)
	candidate, epoch := decodeAcclaim(b)
	if candidate != "mon.a" || epoch != 7 {
		t.Fatalf("expected mon.a/7, got %s/%d", candidate, epoch)
	}
}

func TestAcclaimReplyEncodeDecodeRoundTrip(t *testing.T) {
	b := encodeAcclaimReply(true, 2)
	env := &wire.Envelope{Payload: b}

	defers, rank := decodeAcclaimReply(env)
	if !defers || rank != 2 {
		t.Fatalf("expected defers=true rank=2, got defers=%v rank=%d", defers, rank)
	}
}

func TestDecodeAcclaimReplyNilEnvelope(t *testing.T) {
	defers, rank := decodeAcclaimReply(nil)
	if defers || rank != -1 {
		t.Fatalf("expected defers=false rank=-1 for a nil envelope, got defers=%v rank=%d", defers, rank)
	}
}

func TestSingleMemberCallElectionWins(t *testing.T) {
	peers := peermap.New("fsid-1", []peermap.Member{{Name: "mon.a"}})

	var wonEpoch uint64
	won := false
	a := NewAcclamation("mon.a", peers, nil, Callbacks{
		WinElection: func(epoch uint64) { won = true; wonEpoch = epoch },
	})
	a.StartParticipating()

	a.CallElection()

	if !won {
		t.Fatal("expected a singleton peer map to self-elect")
	}
	if wonEpoch != 1 {
		t.Fatalf("expected epoch 1 on first election, got %d", wonEpoch)
	}
}

func TestCallElectionNoOpWhenNotParticipating(t *testing.T) {
	peers := peermap.New("fsid-1", []peermap.Member{{Name: "mon.a"}})

	called := false
	a := NewAcclamation("mon.a", peers, nil, Callbacks{
		WinElection: func(epoch uint64) { called = true },
	})

	a.CallElection()

	if called {
		t.Fatal("expected CallElection to no-op when not participating")
	}
}

func TestHandleAcclaimDefersToLowerRankCandidate(t *testing.T) {
	peers := peermap.New("fsid-1", []peermap.Member{{Name: "mon.a"}, {Name: "mon.b"}})
	a := NewAcclamation("mon.b", peers, nil, Callbacks{})
	a.StartParticipating()

	reply := a.HandleAcclaim("mon.a:1", &wire.Envelope{Payload: encodeAcclaim("mon.a", 1)})

	defers, _ := decodeAcclaimReply(reply)
	if !defers {
		t.Fatal("expected mon.b to defer to lower-ranked mon.a")
	}
}

func TestHandleAcclaimDefersWhenNotParticipating(t *testing.T) {
	peers := peermap.New("fsid-1", []peermap.Member{{Name: "mon.a"}, {Name: "mon.b"}})
	a := NewAcclamation("mon.b", peers, nil, Callbacks{})

	reply := a.HandleAcclaim("mon.a:1", &wire.Envelope{Payload: encodeAcclaim("mon.a", 1)})

	defers, _ := decodeAcclaimReply(reply)
	if !defers {
		t.Fatal("expected a non-participating node to always defer")
	}
}
