package recipe

import (
	"os/exec"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"go.sodimm.me/kons/lib/testutil"
)

func TestDrainZombies(t *testing.T) {
	Convey("drainZombies reaps a child that exited without anyone waiting on it", t, func(c C) {
		log := testutil.TestLogger(c)

		cmd := exec.Command("true")
		So(cmd.Start(), ShouldBeNil)
		time.Sleep(50 * time.Millisecond)

		drainZombies(log)
		So(cmd.Wait(), ShouldNotBeNil) // already reaped: there is no child left to wait for
		drainZombies(log)              // nothing left the second time; must not block or panic
	})
}

func TestSoleProcessRemaining(t *testing.T) {
	Convey("a host running more than this test is never sole", t, func() {
		So(soleProcessRemaining(), ShouldBeFalse)
	})
}
