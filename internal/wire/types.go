package wire

import "github.com/sirgallo/logger"


//=========================================== Wire Types


// SyncOp enumerates MonSync operations exactly per MMonSync's op set,
// generalized from the five-op header to the ten ops the core's sync
// protocol actually drives.
type SyncOp uint32

const (
	OpStart SyncOp = iota + 1
	OpStartReply
	OpHeartbeat
	OpHeartbeatReply
	OpFinish
	OpFinishReply
	OpStartChunks
	OpChunk
	OpChunkReply
	OpAbort
)

// SyncFlag is a bitset carried on every MonSync message.
type SyncFlag uint8

const (
	FlagLast SyncFlag = 1 << iota
	FlagRetry
	FlagCRC
	FlagReplyTo
)

// ProbeOp distinguishes a MonProbe request from its reply.
type ProbeOp uint32

const (
	ProbeOpProbe ProbeOp = iota + 1
	ProbeOpReply
)

// StoreKey names a (prefix, key) pair inside the Store, matching
// MMonSync's pair<string,string> first_key/last_key fields.
type StoreKey struct {
	Prefix string
	Key    string
}

// MonProbe is the probing/bootstrap discovery message.
type MonProbe struct {
	Fsid          string
	Op            ProbeOp
	Name          string
	HasEverJoined bool
	QuorumSet     []string
	MonmapBytes   []byte
	PaxosFirst    int64
	PaxosLast     int64
}

// MonSyncMsg is the bulk-transfer coordination message.
type MonSyncMsg struct {
	Op          SyncOp
	Flags       SyncFlag
	Version     int64
	ChunkBytes  []byte
	FirstKey    StoreKey
	LastKey     StoreKey
	CRC         uint32
	HasCRC      bool
	ReplyTo     string
	HasReplyTo  bool
}

// MonJoin requests admission into the peer map.
type MonJoin struct {
	Fsid    string
	Name    string
	Address string
}

// Forward wraps a client request being routed to the leader.
type Forward struct {
	Tid              int64
	InnerMessageBytes []byte
	ClientCaps       []byte
	ClientAddress    string
}

// Route carries a reply (or unsolicited fanout) back along the forward path.
type Route struct {
	Tid               int64
	HasTid            bool
	Dest              string
	InnerMessageBytes []byte
}

// Envelope is the generic passthrough shape for message families whose
// inner payload belongs to an external Service, not the core
// (MonCommand/Ack, MonSubscribe/Ack, MonGetVersion/Reply, MonGetMap/MonMap).
type Envelope struct {
	Kind    string
	Payload []byte
	Epoch   int64
}

const NAME = "Wire"

var Log = logger.NewCustomLog(NAME)

type wireError string

const (
	EncodeErr wireError = "error encoding wire message"
	DecodeErr wireError = "error decoding wire message"
)
