package config

import "testing"

func TestDefaultIsInternallyConsistent(t *testing.T) {
	cfg := Default()

	if cfg.KillAt != KillNone {
		t.Fatalf("expected default kill point to be KillNone, got %v", cfg.KillAt)
	}
	if cfg.MonLease <= 0 {
		t.Fatal("expected a positive default mon lease")
	}
	if cfg.MonSyncMaxRetries <= 0 {
		t.Fatal("expected a positive default sync retry budget")
	}
	if cfg.SyncChunkBytes <= 0 {
		t.Fatal("expected a positive default sync chunk size")
	}
	if len(cfg.MonInitialMembers) != 0 {
		t.Fatal("expected no initial member restriction by default")
	}
}

func TestConfigIsCopiedByValue(t *testing.T) {
	base := Default()
	derived := base
	derived.MonLease = base.MonLease * 2

	if base.MonLease == derived.MonLease {
		t.Fatal("expected mutating a copy not to affect the original Config value")
	}
}
