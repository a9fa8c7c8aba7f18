package tick

import (
	"time"

	"github.com/wangevan/ceph/internal/lifecycle"
)


//=========================================== Tick Operations


// Start runs the periodic tick on its own goroutine until Stop is called.
func (l *Loop) Start() {
	go func() {
		ticker := time.NewTicker(l.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.runOnce()
			case <-l.stop:
				return
			}
		}
	}()
}

func (l *Loop) Stop() { close(l.stop) }

func (l *Loop) runOnce() {
	for _, svc := range l.Services { svc.Tick() }

	l.Sessions.TrimExpired(time.Now())

	l.trackQuorumLocked()
	if state := l.FSM.CurrentState(); state == lifecycle.Leader || state == lifecycle.Peon {
		l.Shell.FlushWaitlist()
	}
	l.Shell.TrimWaitlist()
}

/*
	trackQuorumLocked:
		records when this node last fell out of quorum; once it has been
		out for more than 2*mon_lease, evict every client session so they
		can reconnect elsewhere (spec §4.5c).
*/

func (l *Loop) trackQuorumLocked() {
	inQuorum := l.FSM.CurrentState() == lifecycle.Leader || l.FSM.CurrentState() == lifecycle.Peon

	l.mu.Lock()
	defer l.mu.Unlock()

	if inQuorum {
		l.outOfQuorumSince = nil
		return
	}

	if l.outOfQuorumSince == nil {
		now := time.Now()
		l.outOfQuorumSince = &now
		return
	}

	if time.Since(*l.outOfQuorumSince) > 2*l.MonLease {
		Log.Info(string(EvictedOutOfQuorum))
		l.Sessions.EvictClients()
	}
}
