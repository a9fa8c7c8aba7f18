package kvservice

import "github.com/wangevan/ceph/internal/store"


//=========================================== Service Operations


func (s *KVService) UpdateFromPaxos(version int64) error {
	Log.Debug(string(AppliedFromPaxos), version)
	return nil
}

func (s *KVService) ElectionFinished() error { return nil }

func (s *KVService) Tick() error { return nil }

func (s *KVService) Shutdown() error { return nil }

// Dispatch applies op to the store and echoes the stored value back as
// the reply payload, so the caller (a client, possibly reached only
// through a forwarding hop) gets confirmation of what was committed.
func (s *KVService) Dispatch(op Operation) ([]byte, error) {
	switch op.Action {
	case ActionPut:
		if err := s.store.Put(Prefix, op.Key, op.Value); err != nil { return nil, err }
		return op.Value, nil
	case ActionDelete:
		if err := s.store.PutBatch(Prefix, []store.KV{{Key: op.Key, Value: nil}}); err != nil { return nil, err }
		return nil, nil
	}
	return nil, nil
}

func (s *KVService) Get(key string) ([]byte, error) {
	return s.store.Get(Prefix, key)
}
