package election

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Acclamation Election


func (a *Acclamation) Epoch() uint64 { return atomic.LoadUint64(&a.epoch) }

func (a *Acclamation) StartParticipating() {
	a.mu.Lock()
	a.participating = true
	a.mu.Unlock()
}

func (a *Acclamation) StopParticipating() {
	a.mu.Lock()
	a.participating = false
	a.mu.Unlock()
}

/*
	CallElection:
		single-round majority-acclaim variant of the teacher's term-based
		vote broadcast:
			1.) broadcast an acclaim request to every reachable peer
			2.) count this node plus every "defer" response
			3.) if the count is a strict majority of the peer map, win;
				the surviving node with the lowest rank among responders
				wins ties, matching win_standalone_election's single-member
				shortcut folded into the same path
			4.) otherwise lose; the loser simply does not self-elect and
				waits for the peer that does win to announce itself via a
				later probe/join round
*/

func (a *Acclamation) CallElection() {
	a.mu.Lock()
	if !a.participating {
		a.mu.Unlock()
		return
	}
	newEpoch := a.epoch + 1
	a.epoch = newEpoch
	a.mu.Unlock()

	members := a.peers.MembersSnapshot()
	selfRank := a.peers.Rank(a.self)

	if len(members) == 1 {
		a.win(newEpoch)
		return
	}

	var wg sync.WaitGroup
	defers := int64(1) // self
	lowestDeferringRank := selfRank

	var mu sync.Mutex

	for _, mem := range members {
		if mem.Name == a.self { continue }
		mem := mem
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
			defer cancel()

			req := &wire.Envelope{Kind: "acclaim", Payload: encodeAcclaim(a.self, newEpoch)}
			res, sendErr := a.msn.SendCtx(ctx, mem.Address, req)
			if sendErr != nil { return }

			defers_, rank := decodeAcclaimReply(res)
			if !defers_ { return }

			mu.Lock()
			atomic.AddInt64(&defers, 1)
			if rank >= 0 && rank < lowestDeferringRank { lowestDeferringRank = rank }
			mu.Unlock()
		}()
	}

	wg.Wait()

	majority := int64(len(members)/2 + 1)
	if defers >= majority && selfRank == lowestDeferringRank {
		a.win(newEpoch)
		return
	}

	a.lose(newEpoch)
}

func (a *Acclamation) win(epoch uint64) {
	Log.Info(string(WonElection), epoch)
	if a.callbacks.WinElection != nil { a.callbacks.WinElection(epoch) }
}

func (a *Acclamation) lose(epoch uint64) {
	Log.Info(string(LostElection), epoch)
	if a.callbacks.LoseElection != nil { a.callbacks.LoseElection(epoch) }
}
