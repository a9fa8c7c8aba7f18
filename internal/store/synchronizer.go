package store

import (
	"bytes"
	"hash/crc32"

	bolt "go.etcd.io/bbolt"
)


//=========================================== Synchronizer
//
// Chunked iterator over the union of a set of prefixes, resumable from a
// (prefix, key) cursor, with a running CRC over every value streamed in
// this Synchronizer's lifetime. Grounded on the WAL's cursor range-read
// pattern, generalized from a single ordered bucket to a prefix union.


// Chunk is one bounded-size unit of transfer: the encoded (prefix, key,
// value) triples packed since the last chunk, the last key reached, and
// the running CRC of every value streamed so far in this Synchronizer's
// lifetime.
type Chunk struct {
	Entries  []PrefixedKV
	LastKey  PrefixedKey
	CRC      uint32
	Done     bool
}

type PrefixedKey struct {
	Prefix string
	Key    string
}

type PrefixedKV struct {
	Prefix string
	Key    string
	Value  []byte
}

// Synchronizer streams key-value pairs from a fixed, ordered list of
// prefixes, honoring a byte-size bound per call to Next and maintaining
// a running CRC32 accumulator across the whole session.
type Synchronizer struct {
	store    *Store
	prefixes []string
	resumeAt PrefixedKey
	crc      uint32
	started  bool
}

// NewSynchronizer creates a cursor over prefixes in the given order,
// optionally resuming after resumeAt (used when a provider restarts a
// sync after a transient error without losing position).
func (s *Store) NewSynchronizer(prefixes []string, resumeAt PrefixedKey) *Synchronizer {
	return &Synchronizer{store: s, prefixes: prefixes, resumeAt: resumeAt}
}

// Next pulls up to maxBytes of entries, starting just after the last key
// returned by a previous call (or resumeAt on the first call).
func (sy *Synchronizer) Next(maxBytes int) (*Chunk, error) {
	chunk := &Chunk{}
	size := 0

	readErr := sy.store.DB.View(func(tx *bolt.Tx) error {
		startPrefixIdx := 0
		seekKey := []byte{}

		if sy.started || sy.resumeAt.Prefix != "" {
			for i, p := range sy.prefixes {
				if p == sy.resumeAt.Prefix {
					startPrefixIdx = i
					seekKey = nextKeyAfter([]byte(sy.resumeAt.Key))
					break
				}
			}
		}

		for pi := startPrefixIdx; pi < len(sy.prefixes); pi++ {
			prefix := sy.prefixes[pi]
			bucket := tx.Bucket([]byte(prefix))
			if bucket == nil { continue }

			cursor := bucket.Cursor()
			var k, v []byte
			if pi == startPrefixIdx && len(seekKey) > 0 {
				k, v = cursor.Seek(seekKey)
			} else {
				k, v = cursor.First()
			}

			for ; k != nil; k, v = cursor.Next() {
				entry := PrefixedKV{Prefix: prefix, Key: string(k), Value: append([]byte{}, v...)}
				chunk.Entries = append(chunk.Entries, entry)
				chunk.LastKey = PrefixedKey{Prefix: prefix, Key: entry.Key}
				sy.crc = crc32.Update(sy.crc, crc32.IEEETable, entry.Value)
				size += len(entry.Key) + len(entry.Value)

				if size >= maxBytes {
					sy.resumeAt = chunk.LastKey
					sy.started = true
					chunk.CRC = sy.crc
					return nil
				}
			}
		}

		chunk.Done = true
		chunk.CRC = sy.crc
		sy.started = true
		if chunk.LastKey.Prefix != "" { sy.resumeAt = chunk.LastKey }
		return nil
	})
	if readErr != nil { return nil, readErr }

	return chunk, nil
}

// CRC returns the running checksum accumulated so far.
func (sy *Synchronizer) CRC() uint32 { return sy.crc }

func nextKeyAfter(k []byte) []byte {
	return append(bytes.Clone(k), 0x00)
}
