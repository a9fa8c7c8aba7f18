package peermap

import "testing"

func newTestMap() *PeerMap {
	return New("fsid-1", []Member{{Name: "mon.a", Address: "a:1"}, {Name: "mon.b", Address: "b:1"}})
}

func TestRankAndContains(t *testing.T) {
	pm := newTestMap()

	if rank := pm.Rank("mon.a"); rank != 0 {
		t.Fatalf("expected rank 0 for mon.a, got %d", rank)
	}
	if rank := pm.Rank("mon.b"); rank != 1 {
		t.Fatalf("expected rank 1 for mon.b, got %d", rank)
	}
	if rank := pm.Rank("mon.c"); rank != -1 {
		t.Fatalf("expected rank -1 for absent member, got %d", rank)
	}
	if !pm.Contains("mon.a") {
		t.Fatal("expected mon.a to be present")
	}
	if pm.Contains("mon.z") {
		t.Fatal("expected mon.z to be absent")
	}
}

func TestReplaceRejectsNonGreaterEpoch(t *testing.T) {
	pm := newTestMap()
	pm.Epoch = 5

	if err := pm.Replace(5, []Member{{Name: "mon.a"}}); err == nil {
		t.Fatal("expected error replacing at same epoch")
	}
	if err := pm.Replace(4, []Member{{Name: "mon.a"}}); err == nil {
		t.Fatal("expected error replacing at lower epoch")
	}
	if err := pm.Replace(6, []Member{{Name: "mon.a"}}); err != nil {
		t.Fatalf("unexpected error replacing at higher epoch: %v", err)
	}
	if pm.Epoch != 6 {
		t.Fatalf("expected epoch 6 after replace, got %d", pm.Epoch)
	}
}

func TestReplaceFromPeerRequiresEverJoined(t *testing.T) {
	pm := newTestMap()

	if err := pm.ReplaceFromPeer("mon.b", 10, []Member{{Name: "mon.b"}}); err == nil {
		t.Fatal("expected error replacing from a peer that never joined")
	}

	pm.MarkEverJoined("mon.b")
	if err := pm.ReplaceFromPeer("mon.b", 10, []Member{{Name: "mon.b"}}); err != nil {
		t.Fatalf("unexpected error replacing from a peer that has joined: %v", err)
	}
}

func TestRenamePlaceholderOnlyAtEpochZero(t *testing.T) {
	pm := New("fsid-1", []Member{{Name: "noname-0"}})

	if !pm.RenamePlaceholder("noname-0", "mon.a") {
		t.Fatal("expected rename to succeed at epoch 0")
	}
	if pm.Rank("mon.a") != 0 {
		t.Fatal("expected renamed member to keep its rank")
	}

	pm.Epoch = 1
	if pm.RenamePlaceholder("mon.a", "mon.b") {
		t.Fatal("expected rename to fail once epoch is nonzero")
	}
}

func TestLearnAddressOnlyFillsBlank(t *testing.T) {
	pm := New("fsid-1", []Member{{Name: "mon.a"}})

	if !pm.LearnAddress("mon.a", "10.0.0.1:1000") {
		t.Fatal("expected LearnAddress to fill a blank address")
	}
	if pm.LearnAddress("mon.a", "10.0.0.2:1000") {
		t.Fatal("expected LearnAddress to refuse overwriting a populated address")
	}
	addr, _ := pm.AddressOf("mon.a")
	if addr != "10.0.0.1:1000" {
		t.Fatalf("expected address to remain 10.0.0.1:1000, got %q", addr)
	}
}

func TestFilterInitialMembers(t *testing.T) {
	members := []Member{{Name: "mon.a"}, {Name: "mon.b"}, {Name: "mon.c"}}

	if out := FilterInitialMembers(members, nil); len(out) != 3 {
		t.Fatalf("expected no filtering with an empty allow list, got %d members", len(out))
	}

	out := FilterInitialMembers(members, []string{"mon.a", "mon.c"})
	if len(out) != 2 {
		t.Fatalf("expected 2 members after filtering, got %d", len(out))
	}
	for _, m := range out {
		if m.Name == "mon.b" {
			t.Fatal("expected mon.b to be filtered out")
		}
	}
}
