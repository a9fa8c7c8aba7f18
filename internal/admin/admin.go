package admin

import (
	"errors"

	cephUtils "github.com/wangevan/ceph/internal/utils"

	"github.com/wangevan/ceph/internal/lifecycle"
	"github.com/wangevan/ceph/internal/stats"
	"github.com/wangevan/ceph/internal/store"
)


//=========================================== Admin Query Operations


func (q *Query) MonStatus() MonStatus {
	members := q.Peers.MembersSnapshot()
	names := make([]string, len(members))
	for i, m := range members { names[i] = m.Name }

	diskStats, statsErr := stats.CalculateCurrentStats()
	if statsErr != nil { diskStats = nil }

	return MonStatus{
		Name: q.FSM.Self, Rank: q.Peers.Rank(q.FSM.Self),
		State: q.FSM.CurrentState().String(), Epoch: q.Peers.EpochValue(), Members: names,
		Disk: diskStats,
	}
}

func (q *Query) QuorumStatus() QuorumStatus {
	state := q.FSM.CurrentState()
	if state != lifecycle.Leader && state != lifecycle.Peon { return QuorumStatus{} }

	members := q.Peers.MembersSnapshot()
	names := make([]string, len(members))
	for i, m := range members { names[i] = m.Name }

	return QuorumStatus{QuorumNames: names, Leader: q.FSM.Router.CurrentLeader}
}

func (q *Query) SyncStatus() SyncStatus {
	inSyncBytes, _ := q.Store.Get(store.PrefixMonSync, store.KeyInSync)

	return SyncStatus{
		State:      q.FSM.CurrentState().String(),
		Requesting: q.Sync.IsRequesting(),
		InSync:     len(inSyncBytes) > 0,
	}
}

// SyncForce persists a fresh nonce under force_sync, forcing the next
// startup to clear every sync-target prefix and resync from scratch.
// The nonce itself carries no meaning beyond "present" — it exists so
// two SyncForce calls in a row are distinguishable in the store's
// change history.
func (q *Query) SyncForce() error {
	nonce, hashErr := cephUtils.GenerateRandomSHA256Hash()
	if hashErr != nil { return hashErr }
	return q.Store.Put(store.PrefixMonSync, store.KeyForceSync, []byte(nonce))
}

/*
	AddBootstrapPeerHint (supplemented feature 6): rejected once sync has
	become active against this node's own initiative, i.e. any state
	other than Probing — a hint added mid-election or mid-sync can't
	influence a decision already in flight.
*/

func (q *Query) AddBootstrapPeerHint(addr string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.FSM.CurrentState() != lifecycle.Probing { return errors.New(string(AlreadyActiveErr)) }

	*q.ExtraBootstrapHints = append(*q.ExtraBootstrapHints, addr)
	return nil
}
