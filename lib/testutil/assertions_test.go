package testutil

import (
	"os"
	"path/filepath"
	"testing"

	cv "github.com/smartystreets/goconvey/convey"

	"go.sodimm.me/kons/nserr"
)

func TestShouldBeFile(t *testing.T) {
	cv.Convey("Given a temp directory", t, func() {
		dir := t.TempDir()
		file := filepath.Join(dir, "exists")
		cv.So(os.WriteFile(file, []byte("x"), 0644), cv.ShouldBeNil)

		cv.Convey("ShouldBeFile passes for a path that exists", func() {
			cv.So(ShouldBeFile(file), cv.ShouldEqual, "")
		})

		cv.Convey("ShouldBeFile fails for a path that doesn't exist", func() {
			cv.So(ShouldBeFile(filepath.Join(dir, "missing")), cv.ShouldNotEqual, "")
		})

		cv.Convey("ShouldBeNotFile passes for a path that doesn't exist", func() {
			cv.So(ShouldBeNotFile(filepath.Join(dir, "missing")), cv.ShouldEqual, "")
		})

		cv.Convey("ShouldBeNotFile fails for a path that exists", func() {
			cv.So(ShouldBeNotFile(file), cv.ShouldNotEqual, "")
		})
	})
}

func TestShouldBeErrorClass(t *testing.T) {
	cv.Convey("ShouldBeErrorClass matches an error against its nserr category", t, func() {
		cv.So(ShouldBeErrorClass(nserr.ParseErr("bad"), nserr.Parse), cv.ShouldEqual, "")
		cv.So(ShouldBeErrorClass(nserr.ParseErr("bad"), nserr.Setup), cv.ShouldNotEqual, "")
	})

	cv.Convey("ShouldBeErrorClass rejects non-error actuals and missing categories", t, func() {
		cv.So(ShouldBeErrorClass("not an error"), cv.ShouldNotEqual, "")
		cv.So(ShouldBeErrorClass(nserr.ParseErr("bad")), cv.ShouldNotEqual, "")
	})
}

func TestShouldPanicWith(t *testing.T) {
	cv.Convey("ShouldPanicWith matches a panic carrying the expected category", t, func() {
		fn := func() { panic(nserr.ParseErr("boom")) }
		cv.So(ShouldPanicWith(fn, nserr.Parse), cv.ShouldEqual, "")
	})

	cv.Convey("ShouldPanicWith fails when nothing panics", t, func() {
		fn := func() {}
		cv.So(ShouldPanicWith(fn, nserr.Parse), cv.ShouldNotEqual, "")
	})

	cv.Convey("ShouldPanicWith fails when the panic's category doesn't match", t, func() {
		fn := func() { panic(nserr.SetupErr("step", os.ErrPermission)) }
		cv.So(ShouldPanicWith(fn, nserr.Parse), cv.ShouldNotEqual, "")
	})
}
