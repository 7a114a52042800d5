package mount

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/lib/testutil"
)

func TestIsMountpoint(t *testing.T) {
	Convey("root is always a mountpoint", t, func() {
		ok, err := IsMountpoint("/")
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
	})

	Convey("an arbitrary non-mountpoint path isn't", t, func() {
		ok, err := IsMountpoint("/this/path/does/not/exist/as/a/mountpoint")
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)
	})
}

func TestFlagNames(t *testing.T) {
	Convey("every grammar-recognised flag name resolves", t, func() {
		for _, name := range []string{
			"remount", "move", "bind", "rec", "shared", "private", "unbindable",
			"slave", "rw", "ro", "noatime", "nodiratime", "relatime", "strictatime",
			"nodev", "noexec", "nosuid", "dirsync", "lazytime", "silent",
			"synchronous", "mandlock",
		} {
			_, ok := FlagNames[name]
			So(ok, ShouldBeTrue)
		}
	})
}

func TestProtectPath(t *testing.T) {
	testutil.Requires("protecting a path binds it onto itself read-only", t, func() {
		cwd, err := filepath.Abs(".")
		So(err, ShouldBeNil)
		target := filepath.Join(cwd, "protected")
		So(os.MkdirAll(target, 0755), ShouldBeNil)

		result := ProtectPath(target)
		So(result.OK(), ShouldBeTrue)
		defer Unmount(target, unix.MNT_DETACH)

		mounted, err := IsMountpoint(target)
		So(err, ShouldBeNil)
		So(mounted, ShouldBeTrue)

		err = os.WriteFile(filepath.Join(target, "x"), []byte("y"), 0644)
		So(err, ShouldNotBeNil)
	})
}

func TestDisplayRegex(t *testing.T) {
	Convey("numeric local displays match", t, func() {
		So(displayRe.MatchString(":0"), ShouldBeTrue)
		So(displayRe.MatchString(":12.0"), ShouldBeTrue)
		So(displayRe.MatchString("remote:0.0"), ShouldBeFalse)
		So(displayRe.MatchString(""), ShouldBeFalse)
	})
}
