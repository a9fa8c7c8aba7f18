package tick

import (
	"sync"
	"time"

	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/dispatch"
	"github.com/wangevan/ceph/internal/kvservice"
	"github.com/wangevan/ceph/internal/lifecycle"
	"github.com/wangevan/ceph/internal/session"
)


//=========================================== Tick/Timer Types (C7)
//
// A single periodic loop: service tick(), session trimming, out-of-
// quorum client eviction, waitlist flush. Grounded on the teacher's
// heartbeat ticker in internal/campaign/client.go, generalized from a
// single election heartbeat to the core's four periodic duties.


const NAME = "Tick"

var Log = logger.NewCustomLog(NAME)

type Loop struct {
	mu sync.Mutex

	Interval time.Duration
	MonLease time.Duration

	FSM      *lifecycle.FSM
	Sessions *session.Registry
	Shell    *dispatch.Shell
	Services map[string]kvservice.Service

	outOfQuorumSince *time.Time

	stop chan struct{}
}

func NewLoop(interval, monLease time.Duration, fsm *lifecycle.FSM, sessions *session.Registry, shell *dispatch.Shell, services map[string]kvservice.Service) *Loop {
	return &Loop{Interval: interval, MonLease: monLease, FSM: fsm, Sessions: sessions, Shell: shell, Services: services, stop: make(chan struct{})}
}

type tickInfo string

const (
	EvictedOutOfQuorum tickInfo = "out of quorum beyond 2x mon_lease, evicting client sessions"
)
