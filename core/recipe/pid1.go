package recipe

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
)

// PID1Reaper runs the reaper loop a spawned process enters when it holds
// PID 1 of a new pid namespace and has no program to exec. It reaps
// SIGCHLD (via os/signal, the idiomatic Go substitute for a blocked
// signal plus a signalfd -- both ultimately deliver the same "a child
// changed state" wakeup), wakes at least every 60 seconds regardless, and
// exits successfully once it is the only numbered entry left under /proc.
func PID1Reaper(log log15.Logger) int {
	if log == nil {
		log = log15.New()
	}
	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, syscall.SIGCHLD)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
		case <-ticker.C:
		}

		drainZombies(log)

		if soleProcessRemaining() {
			log.Debug("pid1: only self remains, exiting")
			return 0
		}
	}
}

func drainZombies(log log15.Logger) {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
		if err != nil {
			if err == syscall.ECHILD {
				return
			}
			return
		}
		if pid <= 0 {
			return
		}
		log.Debug("pid1: reaped child", "pid", pid)
	}
}

func soleProcessRemaining() bool {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return false
	}
	count := 0
	for _, e := range entries {
		if _, err := strconv.Atoi(e.Name()); err == nil {
			count++
		}
	}
	return count <= 1
}
