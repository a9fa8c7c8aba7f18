package store

import (
	"path/filepath"

	bolt "go.etcd.io/bbolt"
	"github.com/sirgallo/logger"
)


//=========================================== Store Types


const NAME = "Store"

var Log = logger.NewCustomLog(NAME)

const SubDirectory = ".ceph-mon"
const DBFileName = "store.db"

// Store is a bbolt-backed key-value persistence layer with prefixed
// namespaces, atomic multi-put transactions, full-prefix clear, and a
// chunked Synchronizer iterator, matching the external Store contract
// the core drives.
type Store struct {
	DBFile string
	DB     *bolt.DB
}

// KV is a single key-value pair within a prefix.
type KV struct {
	Key   string
	Value []byte
}

type storeError string

const (
	OpenErr    storeError = "unable to open store"
	BucketErr  storeError = "unable to create or open bucket"
	PutErr     storeError = "unable to put key"
	ClearErr   storeError = "unable to clear prefix"
)

func dbPath(dataDir string) string {
	if dataDir == "" { return filepath.Join(SubDirectory, DBFileName) }
	return filepath.Join(dataDir, DBFileName)
}
