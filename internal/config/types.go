package config

import "time"


//=========================================== Config Types


// KillPoint names a debug fault-injection checkpoint honored by the
// sync engine. One enum value per numbered site in the original
// mon_sync_{leader,provider,requester}_kill_at knobs.
type KillPoint int

const (
	KillNone KillPoint = iota
	KillSyncLeaderBeforeReply
	KillSyncLeaderAfterTrimDisable
	KillSyncProviderStartChunks
	KillSyncProviderChunkReply
	KillSyncRequesterChunk
)

// Config carries every tunable the core consults. It is built once at
// construction time and passed by value into every subsystem's Opts
// struct; nothing in this package is read as process-global state.
type Config struct {
	MonInitialMembers []string

	MonSyncTrimTimeout        time.Duration
	MonSyncTimeout            time.Duration
	MonSyncHeartbeatTimeout   time.Duration
	MonSyncHeartbeatInterval  time.Duration
	MonSyncBackoffTimeout     time.Duration
	MonSyncMaxRetries         int

	MonProbeTimeout  time.Duration
	MonTickInterval  time.Duration
	MonLease         time.Duration

	PaxosMaxJoinDrift int64

	SyncChunkBytes  int
	SyncCRCEveryK   int
	TrimReenableDelay time.Duration

	KillAt KillPoint
}

func Default() Config {
	return Config{
		MonInitialMembers: nil,

		MonSyncTrimTimeout:       15 * time.Second,
		MonSyncTimeout:           10 * time.Second,
		MonSyncHeartbeatTimeout:  10 * time.Second,
		MonSyncHeartbeatInterval: 5 * time.Second,
		MonSyncBackoffTimeout:    5 * time.Second,
		MonSyncMaxRetries:        5,

		MonProbeTimeout: 2 * time.Second,
		MonTickInterval: 5 * time.Second,
		MonLease:        5 * time.Second,

		PaxosMaxJoinDrift: 100,

		SyncChunkBytes:    1 << 20,
		SyncCRCEveryK:      8,
		TrimReenableDelay: 30 * time.Second,

		KillAt: KillNone,
	}
}
