package ceph

import "net"
import "strconv"

import "github.com/wangevan/ceph/internal/lifecycle"


//=========================================== Monitor Service
//
// Grounded on the teacher's rdb.go StartRaftService: bind a listener,
// start the periodic loop, enter the lifecycle FSM's initial state,
// then block forever. A monitor process has exactly one such loop —
// there is no StartModulePassThroughs equivalent here since every
// collaborator here is wired directly by callback, not by channel.


/*
	StartMonitor:
		1.) bind the grpc listener on the configured port
		2.) start the tick loop
		3.) enter probing, which kicks off bootstrap discovery
		4.) block forever
*/

func (mon *Monitor) StartMonitor() error {
	lis, lisErr := net.Listen("tcp", ":"+strconv.Itoa(mon.Opts.Port))
	if lisErr != nil {
		Log.Error(string(ListenErr), lisErr.Error())
		return lisErr
	}

	go mon.Messenger.Listen(lis)

	mon.Tick.Start()
	mon.FSM.EnterProbing()

	Log.Info(string(Started), mon.Self)

	select {}
}

// Shutdown drives the lifecycle FSM into ShuttingDown and stops the
// tick loop; used by tests and by a future admin-socket "stop" command.
func (mon *Monitor) Shutdown() {
	mon.Tick.Stop()
	mon.FSM.EnterShuttingDown()
}

// CurrentState is a convenience passthrough for callers outside the
// internal packages (cmd/monitor, admin HTTP handlers).
func (mon *Monitor) CurrentState() lifecycle.State { return mon.FSM.CurrentState() }
