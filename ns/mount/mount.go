/*
	mount wraps the mount(2)/pivot_root(2)/setns(2) family and the small
	number of fixed-order mount recipes ("mount_core", "protect_path")
	that appear in every namespace this engine builds.
*/
package mount

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/lib/cvshort"
	"go.sodimm.me/kons/ns/idmap"
	"go.sodimm.me/kons/nserr"
)

func Mount(source, target, fstype string, flags uintptr, data string) error {
	if err := unix.Mount(source, target, fstype, flags, data); err != nil {
		return nserr.SetupErr("mount:"+target, err)
	}
	return nil
}

func Bind(source, target string, flags uintptr) error {
	return Mount(source, target, "", unix.MS_BIND|flags, "")
}

func Unmount(target string, flags int) error {
	if err := unix.Unmount(target, flags); err != nil {
		return nserr.SetupErr("umount:"+target, err)
	}
	return nil
}

// IsMountpoint parses /proc/self/mounts and reports whether path appears
// verbatim as a mountpoint's mnt_dir field.
func IsMountpoint(path string) (bool, error) {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[1] == path {
			return true, nil
		}
	}
	return false, sc.Err()
}

// MountCore is the fixed-order recipe every constructed root gets before
// the caller's own Recipe runs: bind root onto itself if it isn't already
// a mountpoint, then mount proc/sys/dev/tmp/run under it if those
// directories exist.
func MountCore(root string) cvshort.Result {
	c := cvshort.Chain{}.ThenChain(func() cvshort.Result {
		mounted, err := IsMountpoint(root)
		if err != nil {
			return cvshort.Result{Err: nserr.SetupErr("is-mountpoint:"+root, err), Label: "is-mountpoint:" + root}
		}
		if mounted {
			return cvshort.Result{}
		}
		return cvshort.Chain{}.Then("bind-root-self", func() error {
			return Bind(root, root, unix.MS_REC)
		}).Result()
	})

	for _, sub := range []string{"proc", "sys", "dev", "tmp", "run"} {
		target := root + "/" + sub
		if _, err := os.Stat(target); err != nil {
			continue
		}
		switch sub {
		case "proc":
			c = c.Then("mount-proc", func() error { return Mount("proc", target, "proc", 0, "") })
		case "sys":
			c = c.Then("bind-sys", func() error { return Bind("/sys", target, unix.MS_REC) })
		case "dev":
			c = c.Then("bind-dev", func() error { return Bind("/dev", target, unix.MS_REC) })
		case "tmp":
			c = c.Then("mount-tmp", func() error { return Mount("tmpfs", target, "tmpfs", 0, "") })
		case "run":
			c = c.Then("mount-run", func() error { return Mount("tmpfs", target, "tmpfs", 0, "") })
		}
	}
	return c.Result()
}

// ProtectPath bind-mounts path onto itself recursively, then remounts it
// recursively read-only. The two-step form is required because
// MS_REMOUNT|MS_RDONLY can't be combined with the initial bind.
func ProtectPath(path string) cvshort.Result {
	return cvshort.Chain{}.
		Then("protect-bind:"+path, func() error { return Bind(path, path, unix.MS_REC) }).
		Then("protect-remount-ro:"+path, func() error {
			return Mount("", path, "", unix.MS_BIND|unix.MS_REC|unix.MS_REMOUNT|unix.MS_RDONLY, "")
		}).
		Result()
}

// PivotRoot pivots the process root to newRoot, chdirs to /, and (unless
// keepOld) detaches the old root at newRoot/oldRootRelpath.
func PivotRoot(newRoot, oldRootRelpath string, keepOld bool) cvshort.Result {
	oldRootAbs := newRoot + "/" + oldRootRelpath
	return cvshort.Chain{}.
		Then("pivot-mkdir-oldroot", func() error {
			return os.MkdirAll(oldRootAbs, 0700)
		}).
		Then("pivot-root", func() error {
			if err := unix.PivotRoot(newRoot, oldRootAbs); err != nil {
				return err
			}
			return nil
		}).
		Then("pivot-chdir", func() error { return os.Chdir("/") }).
		IfThen("pivot-detach-oldroot", !keepOld, func() error {
			return Unmount("/"+oldRootRelpath, unix.MNT_DETACH)
		}).
		Result()
}

// UnshareSingle enters a user namespace (adding CLONE_NEWUSER to flags),
// then maps uid/gid inside to the caller's effective uid/gid outside --
// the primitive used when the caller is already the future occupant. The
// outside ids must be captured before Unshare: once inside a fresh user
// namespace with no map written yet, getuid/getgid report the overflow id,
// not the caller's real outside identity.
func UnshareSingle(uid, gid int, flags uintptr) error {
	outerUID, outerGID := os.Geteuid(), os.Getegid()
	if err := unix.Unshare(int(flags | unix.CLONE_NEWUSER)); err != nil {
		return nserr.SetupErr("unshare-single", err)
	}
	pid := os.Getpid()
	return idmap.WriteIdentity(pid, idmap.Single(uid, outerUID), idmap.Single(gid, outerGID))
}
