package peermap

import (
	"sync"

	"github.com/sirgallo/logger"
)


//=========================================== Peer Map Types
//
// PeerMap is the authoritative membership list: rank <-> name <-> address,
// cluster identity (fsid), versioned epoch. Grounded on the teacher's
// internal/system.System mutex-guarded transition pattern, generalized
// from a single system's state to a map of monitor ids.


const NAME = "PeerMap"

var Log = logger.NewCustomLog(NAME)

const PlaceholderPrefix = "noname-"

// Member is one entry in the ordered membership list. Rank is implicit:
// it is the member's index in Members.
type Member struct {
	Name    string
	Address string
}

// MonitorId identifies a single monitor. Rank is -1 until resolved
// against a PeerMap.
type MonitorId struct {
	Name    string
	Rank    int
	Address string
}

// PeerMap is the sole authority for rank(name) and contains(name).
type PeerMap struct {
	mu sync.RWMutex

	Epoch   uint64
	Fsid    string
	Members []Member

	// everJoined tracks, by name, whether a member has ever been part of
	// a formed quorum — governs whether a newer-epoch replacement from
	// that peer is trusted (spec §3 mutation rule).
	everJoined map[string]bool
}

func New(fsid string, seed []Member) *PeerMap {
	return &PeerMap{
		Fsid:       fsid,
		Members:    append([]Member{}, seed...),
		everJoined: make(map[string]bool),
	}
}

type peermapError string

const (
	EpochNotGreaterErr peermapError = "candidate peer map epoch not strictly greater, ignoring"
	NeverJoinedErr     peermapError = "peer has never joined quorum, ignoring newer-epoch replacement"
)
