package syncengine

import (
	"testing"

	"github.com/wangevan/ceph/internal/store"
)

func TestEncodeDecodeEntriesRoundTrip(t *testing.T) {
	entries := []store.PrefixedKV{
		{Prefix: "monmap", Key: "a", Value: []byte("value-a")},
		{Prefix: "monmap", Key: "b", Value: []byte("")},
		{Prefix: "paxos", Key: "version", Value: []byte{0, 1, 2, 3}},
	}

	encoded := encodeEntries(entries)
	decoded := decodeEntries(encoded)

	if len(decoded) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(decoded))
	}
	for i, want := range entries {
		got := decoded[i]
		if got.Prefix != want.Prefix || got.Key != want.Key || string(got.Value) != string(want.Value) {
			t.Fatalf("entry %d mismatch: got %+v, want %+v", i, got, want)
		}
	}
}

func TestDecodeEntriesEmptyInput(t *testing.T) {
	if decoded := decodeEntries(nil); len(decoded) != 0 {
		t.Fatalf("expected no entries decoded from empty input, got %d", len(decoded))
	}
}

func TestConsumeLenPrefixedTruncated(t *testing.T) {
	field, rest := consumeLenPrefixed([]byte{1, 2})
	if field != nil || rest != nil {
		t.Fatalf("expected nil/nil for a truncated length header, got %v/%v", field, rest)
	}

	tooShort := appendLenPrefixed(nil, []byte("hello"))
	tooShort = tooShort[:len(tooShort)-1]
	field, rest = consumeLenPrefixed(tooShort)
	if field != nil || rest != nil {
		t.Fatalf("expected nil/nil when declared length exceeds available bytes, got %v/%v", field, rest)
	}
}
