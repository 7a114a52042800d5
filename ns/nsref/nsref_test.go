package nsref

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPublishAndResolve(t *testing.T) {
	Convey("publish then resolve round-trips against our own pid", t, func() {
		dir := t.TempDir()
		link := filepath.Join(dir, "myns")

		ref, err := Publish(link, os.Getpid())
		So(err, ShouldBeNil)
		defer Remove(ref)

		resolved, err := Resolve(link)
		So(err, ShouldBeNil)
		So(resolved.TargetDir, ShouldEqual, ref.TargetDir)
	})

	Convey("a ref pointing at a dead pid is stale and gets pruned", t, func() {
		dir := t.TempDir()
		link := filepath.Join(dir, "deadns")

		// Pid 999999 is not expected to exist.
		_, err := Publish(link, 999999)
		So(err, ShouldBeNil)

		_, err = Resolve(link)
		So(err, ShouldNotBeNil)

		_, statErr := os.Lstat(link)
		So(os.IsNotExist(statErr), ShouldBeTrue)
	})
}
