package paxoslog

import (
	"encoding/binary"
)


//=========================================== BoltLog


func int64ToBytes(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func bytesToInt64(b []byte) int64 {
	if len(b) != 8 { return 0 }
	return int64(binary.BigEndian.Uint64(b))
}

func (l *BoltLog) Version() (int64, error) {
	v, err := l.store.Get(Prefix, keyVersion)
	if err != nil { return 0, err }
	if v == nil { return 0, nil }
	return bytesToInt64(v), nil
}

func (l *BoltLog) FirstCommitted() (int64, error) {
	v, err := l.store.Get(Prefix, keyFirst)
	if err != nil { return 0, err }
	if v == nil { return 0, nil }
	return bytesToInt64(v), nil
}

// SetVersion is called by whatever drives actual commits (test harness
// or, in a complete deployment, the real Paxos module) to advance state.
func (l *BoltLog) SetVersion(v int64) error {
	return l.store.Put(Prefix, keyVersion, int64ToBytes(v))
}

func (l *BoltLog) SetFirstCommitted(v int64) error {
	return l.store.Put(Prefix, keyFirst, int64ToBytes(v))
}

func (l *BoltLog) Init() error {
	_, err := l.Version()
	return err
}

func (l *BoltLog) LeaderInit() error { return nil }
func (l *BoltLog) PeonInit() error   { return nil }
func (l *BoltLog) Restart() error    { return nil }

func (l *BoltLog) TrimDisable() { l.trimDisableCount++ }
func (l *BoltLog) TrimEnable()  { l.trimEnableCount++ }

func (l *BoltLog) ShouldTrim() bool { return l.trimDisableCount <= l.trimEnableCount }

func (l *BoltLog) IsConsistent() bool { return true }

// TrimBalance reports whether trim_disable/trim_enable calls are
// balanced, exposed for the sync-session invariant tests.
func (l *BoltLog) TrimBalance() (int, int) { return l.trimDisableCount, l.trimEnableCount }
