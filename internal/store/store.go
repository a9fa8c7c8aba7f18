package store

import (
	bolt "go.etcd.io/bbolt"
)


//=========================================== Store


// Known top-level prefixes the core itself consults directly.
const (
	PrefixMonitor = "monitor"
	PrefixMonSync = "mon_sync"
)

// Well-known keys within PrefixMonitor / PrefixMonSync.
const (
	KeyMagic     = "magic"
	KeyCompatSet = "compat_set"
	KeyJoined    = "joined"
	KeyInSync    = "in_sync"
	KeyForceSync = "force_sync"
)

/*
	NewStore:
		1.) open the bbolt db at dataDir/store.db
		2.) create buckets for every prefix passed in up front so Get/Put
			never has to special-case "bucket missing"
*/

func NewStore(dataDir string, prefixes []string) (*Store, error) {
	path := dbPath(dataDir)

	db, openErr := bolt.Open(path, 0600, nil)
	if openErr != nil { return nil, openErr }

	all := append([]string{PrefixMonitor, PrefixMonSync}, prefixes...)

	createErr := db.Update(func(tx *bolt.Tx) error {
		for _, p := range all {
			if _, err := tx.CreateBucketIfNotExists([]byte(p)); err != nil { return err }
		}
		return nil
	})
	if createErr != nil { return nil, createErr }

	return &Store{DBFile: path, DB: db}, nil
}

// Get reads a single key from a prefix. Returns nil, nil if absent.
func (s *Store) Get(prefix, key string) ([]byte, error) {
	var val []byte
	readErr := s.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(prefix))
		if bucket == nil { return nil }
		v := bucket.Get([]byte(key))
		if v == nil { return nil }
		val = append([]byte{}, v...)
		return nil
	})
	if readErr != nil { return nil, readErr }
	return val, nil
}

// Put writes a single key in a prefix as its own transaction.
func (s *Store) Put(prefix, key string, value []byte) error {
	return s.PutBatch(prefix, []KV{{Key: key, Value: value}})
}

// PutBatch writes every kv pair within a prefix in one atomic transaction,
// matching the Store contract's "atomic multi-put".
func (s *Store) PutBatch(prefix string, kvs []KV) error {
	return s.DB.Update(func(tx *bolt.Tx) error {
		bucket, bucketErr := tx.CreateBucketIfNotExists([]byte(prefix))
		if bucketErr != nil { return bucketErr }

		for _, kv := range kvs {
			if putErr := bucket.Put([]byte(kv.Key), kv.Value); putErr != nil { return putErr }
		}
		return nil
	})
}

// PutAcrossPrefixes writes into multiple prefixes within one atomic
// transaction — used by the sync engine when applying a chunk's encoded
// transaction, which may touch more than one prefix at once.
func (s *Store) PutAcrossPrefixes(batches map[string][]KV) error {
	return s.DB.Update(func(tx *bolt.Tx) error {
		for prefix, kvs := range batches {
			bucket, bucketErr := tx.CreateBucketIfNotExists([]byte(prefix))
			if bucketErr != nil { return bucketErr }

			for _, kv := range kvs {
				if putErr := bucket.Put([]byte(kv.Key), kv.Value); putErr != nil { return putErr }
			}
		}
		return nil
	})
}

// Clear deletes every key in a prefix by dropping and recreating the
// bucket — the "full-prefix clear" the sync Requester uses before
// starting a fresh transfer and on abort.
func (s *Store) Clear(prefix string) error {
	return s.DB.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(prefix)) != nil {
			if delErr := tx.DeleteBucket([]byte(prefix)); delErr != nil { return delErr }
		}
		_, createErr := tx.CreateBucketIfNotExists([]byte(prefix))
		return createErr
	})
}

// IsEmpty reports whether a prefix currently has no keys.
func (s *Store) IsEmpty(prefix string) (bool, error) {
	empty := true
	readErr := s.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(prefix))
		if bucket == nil { return nil }
		k, _ := bucket.Cursor().First()
		empty = k == nil
		return nil
	})
	if readErr != nil { return false, readErr }
	return empty, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
