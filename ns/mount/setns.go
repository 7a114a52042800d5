package mount

import (
	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/nserr"
)

// SetNS enters the namespace named by kind (one of "user", "pid", "mnt")
// under the given /proc/<pid>/ns directory.
func SetNS(nsDir string, kind string, nsType int) error {
	path := nsDir + "/" + kind
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nserr.SetupErr("open-ns:"+kind, err)
	}
	defer unix.Close(fd)

	if err := unix.Setns(fd, nsType); err != nil {
		return nserr.SetupErr("setns:"+kind, err)
	}
	return nil
}
