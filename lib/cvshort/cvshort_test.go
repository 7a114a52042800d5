package cvshort

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func Test(t *testing.T) {
	Convey("Chain short-circuits on first failure", t, func() {
		var ran []string
		boom := errors.New("boom")

		c := Chain{}.
			Then("one", func() error { ran = append(ran, "one"); return nil }).
			Then("two", func() error { ran = append(ran, "two"); return boom }).
			Then("three", func() error { ran = append(ran, "three"); return nil })

		So(c.OK(), ShouldBeFalse)
		So(c.Label, ShouldEqual, "two")
		So(c.Err, ShouldEqual, boom)
		So(ran, ShouldResemble, []string{"one", "two"})
	})

	Convey("IfThen skips when cond is false without failing", t, func() {
		c := Chain{}.
			IfThen("skip-me", false, func() error { return errors.New("should never run") }).
			Then("run-me", func() error { return nil })

		So(c.OK(), ShouldBeTrue)
	})

	Convey("ThenChain composes a sub-chain's label", t, func() {
		sub := func() Result {
			return Chain{}.Then("nested", func() error { return errors.New("nope") }).Result()
		}
		c := Chain{}.ThenChain(sub)
		So(c.OK(), ShouldBeFalse)
		So(c.Label, ShouldEqual, "nested")
	})
}
