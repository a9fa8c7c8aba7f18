package store

import "testing"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), []string{"monmap", "paxos"})
	if err != nil { t.Fatalf("unable to open store: %v", err) }
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("monmap", "k1", []byte("v1")); err != nil {
		t.Fatalf("unexpected error on Put: %v", err)
	}

	v, err := s.Get("monmap", "k1")
	if err != nil { t.Fatalf("unexpected error on Get: %v", err) }
	if string(v) != "v1" {
		t.Fatalf("expected v1, got %q", v)
	}

	missing, err := s.Get("monmap", "nope")
	if err != nil { t.Fatalf("unexpected error on Get of missing key: %v", err) }
	if missing != nil {
		t.Fatalf("expected nil for missing key, got %v", missing)
	}
}

func TestPutBatchAtomic(t *testing.T) {
	s := newTestStore(t)

	kvs := []KV{{Key: "a", Value: []byte("1")}, {Key: "b", Value: []byte("2")}}
	if err := s.PutBatch("monmap", kvs); err != nil {
		t.Fatalf("unexpected error on PutBatch: %v", err)
	}

	va, _ := s.Get("monmap", "a")
	vb, _ := s.Get("monmap", "b")
	if string(va) != "1" || string(vb) != "2" {
		t.Fatalf("expected a=1 b=2, got a=%q b=%q", va, vb)
	}
}

func TestPutAcrossPrefixes(t *testing.T) {
	s := newTestStore(t)

	batches := map[string][]KV{
		"monmap": {{Key: "m1", Value: []byte("x")}},
		"paxos":  {{Key: "p1", Value: []byte("y")}},
	}
	if err := s.PutAcrossPrefixes(batches); err != nil {
		t.Fatalf("unexpected error on PutAcrossPrefixes: %v", err)
	}

	vm, _ := s.Get("monmap", "m1")
	vp, _ := s.Get("paxos", "p1")
	if string(vm) != "x" || string(vp) != "y" {
		t.Fatalf("expected m1=x p1=y, got m1=%q p1=%q", vm, vp)
	}
}

func TestClearAndIsEmpty(t *testing.T) {
	s := newTestStore(t)

	s.Put("monmap", "k1", []byte("v1"))
	empty, err := s.IsEmpty("monmap")
	if err != nil { t.Fatalf("unexpected error on IsEmpty: %v", err) }
	if empty { t.Fatal("expected monmap to be non-empty after a put") }

	if err := s.Clear("monmap"); err != nil {
		t.Fatalf("unexpected error on Clear: %v", err)
	}
	empty, err = s.IsEmpty("monmap")
	if err != nil { t.Fatalf("unexpected error on IsEmpty after Clear: %v", err) }
	if !empty { t.Fatal("expected monmap to be empty after Clear") }
}
