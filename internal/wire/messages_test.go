package wire

import "testing"

func TestMonProbeRoundTrip(t *testing.T) {
	in := &MonProbe{
		Fsid: "fsid-1", Op: ProbeOpReply, Name: "mon.a", HasEverJoined: true,
		QuorumSet: []string{"mon.a", "mon.b"}, PaxosFirst: 3, PaxosLast: 42,
	}

	b, err := in.Marshal()
	if err != nil { t.Fatalf("unexpected marshal error: %v", err) }

	out := &MonProbe{}
	if err := out.Unmarshal(b); err != nil { t.Fatalf("unexpected unmarshal error: %v", err) }

	if out.Fsid != in.Fsid || out.Op != in.Op || out.Name != in.Name {
		t.Fatalf("scalar fields did not round-trip: got %+v", out)
	}
	if out.HasEverJoined != in.HasEverJoined {
		t.Fatal("expected HasEverJoined to round-trip")
	}
	if len(out.QuorumSet) != 2 || out.QuorumSet[0] != "mon.a" || out.QuorumSet[1] != "mon.b" {
		t.Fatalf("expected quorum set to round-trip, got %v", out.QuorumSet)
	}
	if out.PaxosFirst != 3 || out.PaxosLast != 42 {
		t.Fatalf("expected paxos bounds to round-trip, got first=%d last=%d", out.PaxosFirst, out.PaxosLast)
	}
}

func TestMonSyncMsgOptionalFields(t *testing.T) {
	in := &MonSyncMsg{Op: OpChunk, Version: 7, ChunkBytes: []byte("chunk-payload")}

	b, err := in.Marshal()
	if err != nil { t.Fatalf("unexpected marshal error: %v", err) }

	out := &MonSyncMsg{}
	if err := out.Unmarshal(b); err != nil { t.Fatalf("unexpected unmarshal error: %v", err) }

	if out.HasCRC {
		t.Fatal("expected HasCRC to stay false when CRC was never set")
	}
	if out.HasReplyTo {
		t.Fatal("expected HasReplyTo to stay false when ReplyTo was never set")
	}
	if string(out.ChunkBytes) != "chunk-payload" {
		t.Fatalf("expected chunk bytes to round-trip, got %q", out.ChunkBytes)
	}

	in.HasCRC, in.CRC = true, 0xdeadbeef
	in.HasReplyTo, in.ReplyTo = true, "mon.b"

	b2, _ := in.Marshal()
	out2 := &MonSyncMsg{}
	if err := out2.Unmarshal(b2); err != nil { t.Fatalf("unexpected unmarshal error: %v", err) }

	if !out2.HasCRC || out2.CRC != 0xdeadbeef {
		t.Fatalf("expected CRC to round-trip when set, got has=%v crc=%x", out2.HasCRC, out2.CRC)
	}
	if !out2.HasReplyTo || out2.ReplyTo != "mon.b" {
		t.Fatalf("expected ReplyTo to round-trip when set, got has=%v reply=%q", out2.HasReplyTo, out2.ReplyTo)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := &Envelope{Kind: "command", Payload: []byte{1, 2, 3}, Epoch: 9}

	b, err := in.Marshal()
	if err != nil { t.Fatalf("unexpected marshal error: %v", err) }

	out := &Envelope{}
	if err := out.Unmarshal(b); err != nil { t.Fatalf("unexpected unmarshal error: %v", err) }

	if out.Kind != in.Kind || out.Epoch != in.Epoch {
		t.Fatalf("expected kind/epoch to round-trip, got %+v", out)
	}
	if len(out.Payload) != 3 || out.Payload[0] != 1 || out.Payload[2] != 3 {
		t.Fatalf("expected payload to round-trip, got %v", out.Payload)
	}
}

func TestRouteHasTidFlag(t *testing.T) {
	withTid := &Route{Tid: 5, HasTid: true, Dest: "mon.a"}
	b, _ := withTid.Marshal()
	out := &Route{}
	out.Unmarshal(b)
	if !out.HasTid || out.Tid != 5 {
		t.Fatalf("expected tid to round-trip when present, got %+v", out)
	}

	noTid := &Route{Dest: "mon.a"}
	b2, _ := noTid.Marshal()
	out2 := &Route{}
	out2.Unmarshal(b2)
	if out2.HasTid {
		t.Fatal("expected HasTid to stay false when the field was never set")
	}
}
