package clone

import (
	"os/exec"
	"runtime"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/nserr"
)

// ChildRef exclusively owns a spawned child's pid and its cleanup state
// (rendezvous descriptors, a temp payload file). The cleanup closure runs
// exactly once, on the first successful Wait/Poll; dropping a ChildRef
// without ever waiting on it is a programmer error and is diagnosed via a
// finalizer, since Go has no drop-time hook otherwise.
type ChildRef struct {
	cmd     *exec.Cmd
	cleanup func()

	mu      sync.Mutex
	waited  bool
	warnSet bool
}

func newChildRef(cmd *exec.Cmd, cleanup func()) *ChildRef {
	ref := &ChildRef{cmd: cmd, cleanup: cleanup}
	runtime.SetFinalizer(ref, warnIfNotWaited)
	ref.warnSet = true
	return ref
}

func warnIfNotWaited(ref *ChildRef) {
	ref.mu.Lock()
	waited := ref.waited
	ref.mu.Unlock()
	if !waited {
		pid := -1
		if ref.cmd.Process != nil {
			pid = ref.cmd.Process.Pid
		}
		println("kons: ChildRef for pid", pid, "was garbage collected without Wait -- this is a bug")
	}
}

func (c *ChildRef) Pid() int { return c.cmd.Process.Pid }

func (c *ChildRef) runCleanupOnce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waited {
		return
	}
	c.waited = true
	if c.warnSet {
		runtime.SetFinalizer(c, nil)
	}
	if c.cleanup != nil {
		c.cleanup()
	}
}

// Wait blocks for the child to exit, runs cleanup exactly once, and
// returns its exit code.
func (c *ChildRef) Wait() (int, error) {
	err := c.cmd.Wait()
	c.runCleanupOnce()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, nserr.ChildErr("wait: %v", err)
}

// Poll is the non-blocking form of Wait: it reports whether the child has
// exited yet, and if so its exit code, running cleanup exactly once.
func (c *ChildRef) Poll() (exited bool, code int, err error) {
	// WNOWAIT leaves the exited child waitable, so Wait below still reaps it.
	var info unix.Siginfo
	if err := unix.Waitid(unix.P_PID, c.cmd.Process.Pid, &info, unix.WEXITED|unix.WNOHANG|unix.WNOWAIT, nil); err != nil {
		return false, 0, nserr.ChildErr("poll: %v", err)
	}
	if info.Signo == 0 {
		return false, 0, nil
	}
	// Process has exited; reap it properly via Wait to run cleanup.
	code, err = c.Wait()
	return true, code, err
}

// Kill sends SIGTERM to the child, the top-level driver's cancellation
// primitive.
func (c *ChildRef) Kill() error {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Signal(syscall.SIGTERM)
}
