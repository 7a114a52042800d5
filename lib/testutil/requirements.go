package testutil

import (
	"os"

	"github.com/smartystreets/goconvey/convey"
)

// Convey_IfHaveRoot runs a Convey block, or skips it, depending on
// whether the test process is uid 0 -- most namespace-construction
// operations (writing an idmap, calling unshare) require it.
func Convey_IfHaveRoot(items ...interface{}) {
	if os.Getuid() == 0 {
		convey.Convey(items...)
	} else {
		convey.SkipConvey(items...)
	}
}

// Requires composes Convey_IfHaveRoot with WithTmpdir: it's the shape
// nearly every namespace test needs -- root privileges plus a scratch
// directory to build mounts in -- so tests reach for this instead of
// nesting both decorators by hand every time.
func Requires(name string, t interface{}, fn interface{}) {
	Convey_IfHaveRoot(name, t, WithTmpdir(fn))
}
