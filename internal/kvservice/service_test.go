package kvservice

import (
	"testing"

	"github.com/wangevan/ceph/internal/store"
)

func newTestService(t *testing.T) *KVService {
	t.Helper()
	st, err := store.NewStore(t.TempDir(), []string{Prefix})
	if err != nil { t.Fatalf("unable to open store: %v", err) }
	t.Cleanup(func() { st.Close() })
	return NewKVService(st)
}

func TestDispatchPut(t *testing.T) {
	svc := newTestService(t)

	reply, err := svc.Dispatch(Operation{Action: ActionPut, Key: "name", Value: []byte("mon.a")})
	if err != nil {
		t.Fatalf("unexpected error on dispatch put: %v", err)
	}
	if string(reply) != "mon.a" {
		t.Fatalf("expected the put reply to echo the stored value, got %q", reply)
	}

	v, err := svc.Get("name")
	if err != nil { t.Fatalf("unexpected error on get: %v", err) }
	if string(v) != "mon.a" {
		t.Fatalf("expected mon.a, got %q", v)
	}
}

func TestDispatchDeleteClearsValue(t *testing.T) {
	svc := newTestService(t)
	svc.Dispatch(Operation{Action: ActionPut, Key: "name", Value: []byte("mon.a")})

	if _, err := svc.Dispatch(Operation{Action: ActionDelete, Key: "name"}); err != nil {
		t.Fatalf("unexpected error on dispatch delete: %v", err)
	}

	v, err := svc.Get("name")
	if err != nil { t.Fatalf("unexpected error on get after delete: %v", err) }
	if len(v) != 0 {
		t.Fatalf("expected an empty value after delete, got %q", v)
	}
}

func TestLifecycleHooksAreNoFail(t *testing.T) {
	svc := newTestService(t)

	if err := svc.UpdateFromPaxos(1); err != nil { t.Fatalf("unexpected error: %v", err) }
	if err := svc.ElectionFinished(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if err := svc.Tick(); err != nil { t.Fatalf("unexpected error: %v", err) }
	if err := svc.Shutdown(); err != nil { t.Fatalf("unexpected error: %v", err) }
}
