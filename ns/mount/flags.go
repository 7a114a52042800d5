package mount

import "golang.org/x/sys/unix"

// FlagNames maps the mount-spec grammar's recognised option names to the
// MS_* bit they set. Used by lib/mountspec's spec parser and directly
// exercises the flag vocabulary named in the external interfaces.
var FlagNames = map[string]uintptr{
	"remount":     unix.MS_REMOUNT,
	"move":        unix.MS_MOVE,
	"bind":        unix.MS_BIND,
	"rec":         unix.MS_REC,
	"shared":      unix.MS_SHARED,
	"private":     unix.MS_PRIVATE,
	"unbindable":  unix.MS_UNBINDABLE,
	"slave":       unix.MS_SLAVE,
	"rw":          0,
	"ro":          unix.MS_RDONLY,
	"noatime":     unix.MS_NOATIME,
	"nodiratime":  unix.MS_NODIRATIME,
	"relatime":    unix.MS_RELATIME,
	"strictatime": unix.MS_STRICTATIME,
	"nodev":       unix.MS_NODEV,
	"noexec":      unix.MS_NOEXEC,
	"nosuid":      unix.MS_NOSUID,
	"dirsync":     unix.MS_DIRSYNC,
	"lazytime":    unix.MS_LAZYTIME,
	"silent":      unix.MS_SILENT,
	"synchronous": unix.MS_SYNCHRONOUS,
	"mandlock":    unix.MS_MANDLOCK,
}
