package clone

import (
	"runtime"

	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/ns/mount"
	"go.sodimm.me/kons/nserr"
)

// JoinAndSpawn implements the join path's parent-side half: setns into
// user then pid on the target NamespaceRef's directory, then spawn a
// fresh child. Because a Go process is multi-threaded, the setns calls
// and the clone that must inherit them are locked onto one OS thread for
// the duration -- the same pattern container tooling uses (e.g. moby's
// unshare.Go) to make an unshare/setns visible to a specific fork+exec.
func JoinAndSpawn(nsDir string, opts SpawnOpts) (*ChildRef, error) {
	type result struct {
		ref *ChildRef
		err error
	}
	done := make(chan result, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := mount.SetNS(nsDir, "user", unix.CLONE_NEWUSER); err != nil {
			done <- result{nil, nserr.SetupErr("join-setns-user", err)}
			return
		}
		if err := mount.SetNS(nsDir, "pid", unix.CLONE_NEWPID); err != nil {
			done <- result{nil, nserr.SetupErr("join-setns-pid", err)}
			return
		}

		ref, err := Spawn(opts)
		done <- result{ref, err}
	}()

	r := <-done
	return r.ref, r.err
}
