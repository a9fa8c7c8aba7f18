package router

import "testing"

func TestItoa64(t *testing.T) {
	cases := map[int64]string{0: "0", 5: "5", -5: "-5", 12345: "12345", -98765: "-98765"}
	for in, want := range cases {
		if got := itoa64(in); got != want {
			t.Fatalf("itoa64(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestWireEnvelopeCarriesKindAndPayload(t *testing.T) {
	env := wireEnvelope("forward", []byte{1, 2, 3})
	if env.Kind != "forward" {
		t.Fatalf("expected kind forward, got %q", env.Kind)
	}
	if len(env.Payload) != 3 {
		t.Fatalf("expected a 3-byte payload, got %v", env.Payload)
	}
}

func TestForwardRequestLeaderNoOpWhenAlreadySelf(t *testing.T) {
	r := &Router{Self: "mon.a", CurrentLeader: "mon.a"}

	if err := r.ForwardRequestLeader("conn-1", -1, nil, nil, "client-1"); err != nil {
		t.Fatalf("expected no-op when self is already leader, got %v", err)
	}
}

func TestForwardRequestLeaderNoOpOnceAlreadyForwarded(t *testing.T) {
	r := &Router{Self: "mon.b", CurrentLeader: "mon.a"}

	if err := r.ForwardRequestLeader("conn-1", 0, nil, nil, "client-1"); err != nil {
		t.Fatalf("expected no-op once sessionMon signals a prior forward, got %v", err)
	}
}
