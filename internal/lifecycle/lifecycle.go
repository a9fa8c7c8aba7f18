package lifecycle

import (
	"errors"
	"os"
	"time"

	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/wire"
)

// selfFenceExit terminates the process on self-fence, matching
// syncengine/leader.go's checkKill/os.Exit pattern. Overridable so tests
// can assert on the self-fence path without killing the test binary.
var selfFenceExit = os.Exit


//=========================================== Lifecycle Operations
//
// Grounded on the teacher's campaign win/lose callback wiring
// (internal/campaign/service.go's state transition on vote outcome) and
// on Monitor::bootstrap/Monitor::handle_probe_reply/
// Monitor::win_election/Monitor::lose_election for the exact rule set.


/*
	EnterProbing:
		cancel any pending probe timer; self-fence if removed from the map
		after having joined; else clear the outside-quorum set (rank
		bookkeeping and outbound connections are not reset here).
		Self-elect on a singleton map; otherwise broadcast
		OP_PROBE to every member and bootstrap hint and arm the probe
		timeout.
*/

func (f *FSM) EnterProbing() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enterProbingLocked()
}

func (f *FSM) enterProbingLocked() error {
	if f.probeTimer != nil { f.probeTimer.Stop(); f.probeTimer = nil }

	_, inMap := f.Peers.AddressOf(f.Self)
	if !inMap && f.hasEverJoined {
		Log.Error(string(SelfFencedErr))
		selfFenceExit(1)
		return errors.New(string(SelfFencedErr))
	}

	f.State = Probing
	f.outsideQuorum = make(map[string]bool)
	Log.Info(string(EnteredProbing))

	members := f.Peers.MembersSnapshot()
	if len(members) == 1 && members[0].Name == f.Self {
		Log.Info(string(SelfElected))
		f.enterLeaderOrPeonLocked(true)
		return nil
	}

	f.broadcastProbeLocked(members)
	f.armProbeTimeoutLocked()
	return nil
}

func (f *FSM) broadcastProbeLocked(members []peermap.Member) {
	version, _ := f.Log2.Version()
	first, _ := f.Log2.FirstCommitted()

	probe := &wire.MonProbe{
		Fsid: f.Peers.Fsid, Op: wire.ProbeOpProbe, Name: f.Self,
		HasEverJoined: f.hasEverJoined, PaxosFirst: first, PaxosLast: version,
	}
	payload, err := probe.Marshal()
	if err != nil { return }
	env := &wire.Envelope{Kind: "probe", Payload: payload}

	for _, m := range members {
		if m.Name == f.Self || m.Address == "" { continue }
		go f.Messenger.Send(m.Address, env)
	}
	for _, hint := range f.ExtraBootstrapHints {
		go f.Messenger.Send(hint, env)
	}
}

func (f *FSM) armProbeTimeoutLocked() {
	f.probeTimer = time.AfterFunc(f.Cfg.MonProbeTimeout, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.State != Probing { return }
		f.broadcastProbeLocked(f.Peers.MembersSnapshot())
		f.armProbeTimeoutLocked()
	})
}

/*
	HandleProbeReply implements spec §4.1's five-rule probe-reply
	acceptance algorithm, applied in order against one peer's MonProbe
	reply.
*/

func (f *FSM) HandleProbeReply(fromAddr string, reply *wire.MonProbe) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	version, _ := f.Log2.Version()
	first, _ := f.Log2.FirstCommitted()

	// rule 1: adopt a newer peer map if the peer has ever joined and its
	// epoch exceeds ours, or we ourselves never joined.
	if reply.HasEverJoined {
		f.Peers.MarkEverJoined(reply.Name)

		peerEpoch, peerMembers := peermap.DecodeSnapshot(reply.MonmapBytes)
		epochNewer := peerEpoch > f.Peers.EpochValue()

		if epochNewer || !f.hasEverJoined {
			members := peerMembers
			epoch := f.Peers.EpochValue() + 1
			if len(members) == 0 { members = decodeQuorumSet(reply.QuorumSet, fromAddr, reply.Name) }
			if epochNewer { epoch = peerEpoch }

			if err := f.Peers.ReplaceFromPeer(reply.Name, epoch, members); err == nil {
				Log.Info(string(AdoptedPeerMap), reply.Name)
				f.enterProbingLocked()
				return nil
			}
		}
	}

	// rule 2: rename the peer's local-map entry (keyed by the address it
	// sent from) from its placeholder name to the name it reports, if
	// still a placeholder and epoch is 0.
	if currentName, ok := f.Peers.NameByAddress(fromAddr); ok {
		f.Peers.RenamePlaceholder(currentName, reply.Name)
	}

	// rule 3: learn peer's real address if local entry had a blank one.
	f.Peers.LearnAddress(reply.Name, fromAddr)

	if len(reply.QuorumSet) > 0 {
		if f.State == Synchronizing { return nil }

		if reply.PaxosLast > version+f.Cfg.PaxosMaxJoinDrift {
			f.enterSynchronizingLocked(fromAddr)
			return nil
		}

		if addr, ok := f.Peers.AddressOf(f.Self); ok && addr != "" {
			f.enterElectingLocked()
			return nil
		}

		return f.sendJoinLocked(fromAddr)
	}

	if reply.PaxosFirst > version {
		f.enterSynchronizingLocked(fromAddr)
		return nil
	}
	if first > reply.PaxosLast {
		// peer is behind us; wait for it to sync from us as Provider.
		return nil
	}

	f.outsideQuorum[reply.Name] = true
	f.outsideQuorum[f.Self] = true
	needed := (f.Peers.Size() / 2) + 1
	if len(f.outsideQuorum) >= needed && f.outsideQuorum[f.Self] {
		Log.Info(string(QuorumFormed))
		f.enterElectingLocked()
	}
	return nil
}

/*
	HandleProbe answers an inbound OP_PROBE with this node's quorum state,
	first/last committed version, and ever-joined flag, so the asking
	peer can run its own acceptance rules against us.
*/

func (f *FSM) HandleProbe(fromAddr string, probe *wire.MonProbe) *wire.MonProbe {
	f.mu.Lock()
	defer f.mu.Unlock()

	version, _ := f.Log2.Version()
	first, _ := f.Log2.FirstCommitted()

	reply := &wire.MonProbe{
		Fsid: f.Peers.Fsid, Op: wire.ProbeOpReply, Name: f.Self,
		HasEverJoined: f.hasEverJoined, PaxosFirst: first, PaxosLast: version,
		MonmapBytes: peermap.EncodeSnapshot(f.Peers),
	}

	if f.State == Leader || f.State == Peon {
		members := f.Peers.MembersSnapshot()
		names := make([]string, len(members))
		for i, m := range members { names[i] = m.Name }
		reply.QuorumSet = names
	}

	return reply
}

func (f *FSM) sendJoinLocked(addr string) error {
	join := &wire.MonJoin{Fsid: f.Peers.Fsid, Name: f.Self, Address: f.Self}
	payload, err := join.Marshal()
	if err != nil { return err }
	_, sendErr := f.Messenger.Send(addr, &wire.Envelope{Kind: "join", Payload: payload})
	return sendErr
}

func decodeQuorumSet(names []string, fallbackAddr, fallbackName string) []peermap.Member {
	if len(names) == 0 { return []peermap.Member{{Name: fallbackName, Address: fallbackAddr}} }
	out := make([]peermap.Member, len(names))
	for i, n := range names { out[i] = peermap.Member{Name: n} }
	return out
}

/*
	EnterElecting: delegate to the Election module and await callbacks.
*/

func (f *FSM) EnterElecting() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enterElectingLocked()
}

func (f *FSM) enterElectingLocked() {
	if f.State == Electing { return }
	f.State = Electing
	Log.Info(string(EnteredElecting))
	f.Election.StartParticipating()
	go f.Election.CallElection()
}

// OnWinElection is wired as the Election module's WinElection callback.
func (f *FSM) OnWinElection(epoch uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enterLeaderOrPeonLocked(true)
}

// OnLoseElection is wired as the Election module's LoseElection callback.
func (f *FSM) OnLoseElection(epoch uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sync.AbortAllOnLoseElection()
	f.enterLeaderOrPeonLocked(false)
}

/*
	enterLeaderOrPeonLocked:
		initialize the Log in the appropriate role, call election_finished
		on every service, mark self as ever-joined, and resend outstanding
		routed requests. The self entry in the peer map is not renamed
		here. Order follows spec §5's ordering
		guarantee: election resolved -> (sync-finish already applied by
		the time we get here) -> leader_init/peon_init -> election_finished
		per service -> resend routed requests.
*/

func (f *FSM) enterLeaderOrPeonLocked(isLeader bool) {
	if isLeader {
		f.State = Leader
		f.Log2.LeaderInit()
		Log.Info(string(EnteredLeader))
		f.Router.CurrentLeader = f.Self
	} else {
		f.State = Peon
		f.Log2.PeonInit()
		Log.Info(string(EnteredPeon))
	}

	for _, svc := range f.Services { svc.ElectionFinished() }

	f.Peers.MarkEverJoined(f.Self)
	f.hasEverJoined = true

	f.Router.ResendOutstanding()
}

/*
	enterSynchronizingLocked: Sync Engine's Requester role owns the rest
	of the protocol; wire its completion/abort callbacks back into the
	lifecycle so a finished sync re-bootstraps through Probing again.
*/

func (f *FSM) enterSynchronizingLocked(peerAddr string) {
	f.State = Synchronizing
	Log.Info(string(EnteredSyncing))

	f.Sync.OnSyncComplete = func() { f.EnterProbing() }
	f.Sync.OnSyncAbort = func() { f.EnterProbing() }

	f.Sync.StartRequester(peerAddr)
}

func (f *FSM) EnterShuttingDown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.State = ShuttingDown
	Log.Info(string(EnteredShutdown))

	for _, svc := range f.Services { svc.Shutdown() }
}

func (f *FSM) CurrentState() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.State
}
