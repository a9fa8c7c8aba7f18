package paxoslog

import (
	"testing"

	"github.com/wangevan/ceph/internal/store"
)

func newTestLog(t *testing.T) *BoltLog {
	t.Helper()
	st, err := store.NewStore(t.TempDir(), []string{Prefix})
	if err != nil { t.Fatalf("unable to open store: %v", err) }
	t.Cleanup(func() { st.Close() })
	return NewBoltLog(st)
}

func TestVersionDefaultsToZero(t *testing.T) {
	log := newTestLog(t)

	v, err := log.Version()
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if v != 0 {
		t.Fatalf("expected version 0 before any SetVersion, got %d", v)
	}
}

func TestSetVersionPersists(t *testing.T) {
	log := newTestLog(t)

	if err := log.SetVersion(42); err != nil { t.Fatalf("unexpected error: %v", err) }
	if err := log.SetFirstCommitted(10); err != nil { t.Fatalf("unexpected error: %v", err) }

	v, _ := log.Version()
	first, _ := log.FirstCommitted()
	if v != 42 || first != 10 {
		t.Fatalf("expected version=42 first=10, got version=%d first=%d", v, first)
	}
}

func TestTrimDisableEnableBalance(t *testing.T) {
	log := newTestLog(t)

	if !log.ShouldTrim() {
		t.Fatal("expected trim to be allowed with no outstanding disables")
	}

	log.TrimDisable()
	if log.ShouldTrim() {
		t.Fatal("expected trim to be suppressed after an unmatched TrimDisable")
	}

	log.TrimEnable()
	if !log.ShouldTrim() {
		t.Fatal("expected trim to resume once disable/enable are balanced")
	}

	disabled, enabled := log.TrimBalance()
	if disabled != 1 || enabled != 1 {
		t.Fatalf("expected balanced counts of 1/1, got %d/%d", disabled, enabled)
	}
}

func TestRoleInitHooksDoNotError(t *testing.T) {
	log := newTestLog(t)

	if err := log.Init(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if err := log.LeaderInit(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if err := log.PeonInit(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if err := log.Restart(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if !log.IsConsistent() {
		t.Fatal("expected IsConsistent to report true")
	}
}
