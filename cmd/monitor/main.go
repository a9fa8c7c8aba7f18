package main

import (
	"log"
	"os"
	"strconv"

	"github.com/sirgallo/logger"

	"github.com/wangevan/ceph"
	"github.com/wangevan/ceph/internal/config"
	"github.com/wangevan/ceph/internal/peermap"
	"github.com/wangevan/ceph/internal/pool"
)


const NAME = "Main"
var Log = logger.NewCustomLog(NAME)

func main() {
	name, nameErr := ceph.DefaultName()
	if nameErr != nil { log.Fatal("unable to get hostname") }

	port := 54400
	if p := os.Getenv("MON_PORT"); p != "" {
		parsed, parseErr := strconv.Atoi(p)
		if parseErr != nil { log.Fatal("MON_PORT must be an integer") }
		port = parsed
	}

	// the peer map must include self; spec §4.1's self-fence and
	// self-elect checks both look up f.Self by name.
	seedMembers := []peermap.Member{
		{ Name: "mon.a", Address: "mon-a" },
		{ Name: "mon.b", Address: "mon-b" },
		{ Name: "mon.c", Address: "mon-c" },
	}

	opts := ceph.MonitorOpts{
		Name:    name,
		Fsid:    "ceph-fsid-dev",
		Port:    port,
		DataDir: "/var/lib/ceph-mon/" + name,

		SeedMembers: seedMembers,

		Config:   config.Default(),
		PoolOpts: pool.PoolOpts{ MaxConn: 10 },
	}

	mon := ceph.NewMonitor(opts)
	go mon.StartMonitor()

	select {}
}
