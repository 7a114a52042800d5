/*
	idmap writes /proc/<pid>/{uid,gid}_map and /proc/<pid>/setgroups, the
	three files that grant an unprivileged user namespace its identity.

	These must be written by the parent, after the child namespace exists
	but before the child does anything privilege-sensitive, and the kernel
	enforces an order: setgroups must be "deny" before gid_map can be
	written by an unprivileged writer. WriteIdentity is the only entrypoint
	this package exposes for that reason -- there's no way to call the
	three writes out of order through this API.
*/
package idmap

import (
	"bytes"
	"fmt"
	"os"

	"go.sodimm.me/kons/nserr"
)

// Entry is one line of a uid_map or gid_map: count ids starting at
// InsideStart (as seen inside the namespace) map to OutsideStart (as seen
// outside it).
type Entry struct {
	InsideStart  int
	OutsideStart int
	Count        int
}

// Single builds the one-entry map used for single-user namespaces.
func Single(insideID, outsideID int) []Entry {
	return []Entry{{InsideStart: insideID, OutsideStart: outsideID, Count: 1}}
}

func Path(pid int, kind string) string {
	return fmt.Sprintf("/proc/%d/%s_map", pid, kind)
}

func SetgroupsPath(pid int) string {
	return fmt.Sprintf("/proc/%d/setgroups", pid)
}

func write(path string, entries []Entry) error {
	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%d %d %d\n", e.InsideStart, e.OutsideStart, e.Count)
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, writeErr := f.Write(buf.Bytes())
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func disableSetgroups(pid int) error {
	return os.WriteFile(SetgroupsPath(pid), []byte("deny"), 0)
}

// WriteIdentity performs the full, correctly-ordered handshake for pid:
// write uid_map, disable setgroups, write gid_map. It must be called from
// the parent process, exactly once, while the child is parked waiting on
// its rendezvous endpoint.
func WriteIdentity(pid int, uidMap, gidMap []Entry) error {
	if err := write(Path(pid, "uid"), uidMap); err != nil {
		return nserr.SetupErr("write-uid-map", err)
	}
	if err := disableSetgroups(pid); err != nil {
		return nserr.SetupErr("disable-setgroups", err)
	}
	if err := write(Path(pid, "gid"), gidMap); err != nil {
		return nserr.SetupErr("write-gid-map", err)
	}
	return nil
}
