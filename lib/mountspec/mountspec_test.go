package mountspec

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/lib/testutil"
	"go.sodimm.me/kons/nserr"
)

func TestParseMount(t *testing.T) {
	Convey("Given mount-spec strings", t, func() {
		Convey("a full form spec parses fstype/source/target and flags", func() {
			step, err := ParseMount("tmpfs,tmpfs,/tmp,noexec,mkdir=maybe")
			So(err, ShouldBeNil)
			So(step.Mount, ShouldNotBeNil)
			So(step.Mount.Fstype, ShouldEqual, "tmpfs")
			So(step.Mount.Source, ShouldEqual, "tmpfs")
			So(step.Mount.Target, ShouldEqual, "/tmp")
			So(step.Mount.Flags, ShouldEqual, uintptr(unix.MS_NOEXEC))
			So(step.Mount.MkdirPolicy, ShouldEqual, api.MkdirMaybeThis)
		})

		Convey("the bind shorthand is equivalent to an explicit bind flag", func() {
			step, err := ParseMount("bind,/usr,/mnt/usr")
			So(err, ShouldBeNil)
			So(step.Mount.Fstype, ShouldEqual, "")
			So(step.Mount.Source, ShouldEqual, "/usr")
			So(step.Mount.Target, ShouldEqual, "/mnt/usr")
			So(step.Mount.Flags, ShouldEqual, uintptr(unix.MS_BIND))
		})

		Convey("the rbind shorthand sets bind and rec", func() {
			step, err := ParseMount("rbind,/dev,/mnt/dev")
			So(err, ShouldBeNil)
			So(step.Mount.Target, ShouldEqual, "/mnt/dev")
			So(step.Mount.Flags, ShouldEqual, uintptr(unix.MS_BIND|unix.MS_REC))
		})

		Convey("an incomplete spec is a ParseError with the documented message prefix", func() {
			_, err := ParseMount("bind")
			So(err, testutil.ShouldBeErrorClass, nserr.Parse)
			So(err.Error(), ShouldStartWith, "Incomplete mount spec")
		})

		Convey("commas can be escaped inside an option value", func() {
			step, err := ParseMount(`overlay,none,/mnt,lowerdir=/a\,b`)
			So(err, ShouldBeNil)
			So(step.Mount.Data, ShouldEqual, "lowerdir=/a,b")
		})
	})
}

func TestParseOverlay(t *testing.T) {
	Convey("Given overlay-spec strings", t, func() {
		Convey("tmp and shadow set their respective flags", func() {
			step, err := ParseOverlay("/opt/app,shadow,tmp")
			So(err, ShouldBeNil)
			So(step.Overlay, ShouldNotBeNil)
			So(step.Overlay.Target, ShouldEqual, "/opt/app")
			So(step.Overlay.Shadow, ShouldBeTrue)
			So(step.Overlay.Tmp, ShouldBeTrue)
		})

		Convey("lowerdir/upperdir/workdir/copyfrom are captured", func() {
			step, err := ParseOverlay("/x,lowerdir=/a,upperdir=/b,workdir=/c,copyfrom=/d")
			So(err, ShouldBeNil)
			So(step.Overlay.Lowerdir, ShouldEqual, "/a")
			So(step.Overlay.Upperdir, ShouldEqual, "/b")
			So(step.Overlay.Workdir, ShouldEqual, "/c")
			So(step.Overlay.CopyFrom, ShouldEqual, "/d")
		})

		Convey("an empty mountpoint is rejected", func() {
			_, err := ParseOverlay("")
			So(err, testutil.ShouldBeErrorClass, nserr.Parse)
		})
	})
}
