package messenger

import (
	"sync"
	"time"

	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph/internal/pool"
	"github.com/wangevan/ceph/internal/wire"
)


//=========================================== Messenger Types


const NAME = "Messenger"

var Log = logger.NewCustomLog(NAME)

const RPCTimeout = 2 * time.Second

// Handler processes one inbound Envelope and returns the reply Envelope.
type Handler func(from string, env *wire.Envelope) (*wire.Envelope, error)

// StreamHandler processes one inbound SyncStream call.
type StreamHandler func(stream wire.MonWire_SyncStreamServer) error

// MessengerOpts configures a Messenger's listening address and dial pool.
type MessengerOpts struct {
	Port int
	Pool *pool.Pool
}

// Messenger is the Send/MarkDown/peer-events transport the core drives
// every outbound message through, grounded on the teacher's campaign
// client dial/backoff pattern and connection pool.
type Messenger struct {
	wire.UnimplementedMonWireServer

	Port string
	Pool *pool.Pool

	handlersMu    sync.RWMutex
	handler       Handler
	streamHandler StreamHandler

	downMu sync.Mutex
	down   map[string]bool
}

type messengerError string

const (
	ConnectionErr messengerError = "failed connection"
	RPCErr        messengerError = "error on wire rpc"
	DialErr       messengerError = "unable to dial peer"
)
