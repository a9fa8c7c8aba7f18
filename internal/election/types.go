package election

import (
	"sync"
	"time"

	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/messenger"
	"github.com/wangevan/ceph/internal/peermap"
)


//=========================================== Election Types
//
// Election is the external black-box collaborator's contract, exactly
// per spec's Election interface. The vote-counting algorithm itself is
// unspecified by the core — only call_election/epoch/participate and the
// win/lose callbacks are. Acclamation implements a single-round
// majority-acclaim variant rather than the teacher's full term-counting
// Raft vote, since the algorithm is explicitly out of the core's scope.


const NAME = "Election"

var Log = logger.NewCustomLog(NAME)

const RPCTimeout = 200 * time.Millisecond
const RoundTimeout = 1 * time.Second

type Callbacks struct {
	WinElection  func(epoch uint64)
	LoseElection func(epoch uint64)
}

type Election interface {
	CallElection()
	Epoch() uint64
	StartParticipating()
	StopParticipating()
}

type Acclamation struct {
	mu  sync.Mutex
	peers *peermap.PeerMap
	msn *messenger.Messenger
	self string

	epoch        uint64
	participating bool

	callbacks Callbacks
}

func NewAcclamation(self string, peers *peermap.PeerMap, msn *messenger.Messenger, cb Callbacks) *Acclamation {
	return &Acclamation{peers: peers, msn: msn, self: self, callbacks: cb}
}

type electionInfo string
type electionError string

const (
	WonElection  electionInfo = "won election, self-acclaimed by quorum"
	LostElection electionInfo = "lost election, deferring to lower rank"
)

const (
	BroadcastErr electionError = "error broadcasting acclaim"
)
