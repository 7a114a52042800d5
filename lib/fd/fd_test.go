package fd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFD(t *testing.T) {
	Convey("FD ownership", t, func() {
		r, w, err := os.Pipe()
		So(err, ShouldBeNil)
		defer w.Close()

		f := New(int(r.Fd()))
		So(f.Valid(), ShouldBeTrue)

		raw := f.Release()
		So(f.Valid(), ShouldBeFalse)
		So(raw, ShouldEqual, int(r.Fd()))
		r.Close()
	})
}

func TestPathHelpers(t *testing.T) {
	Convey("MkdirAllCounting counts only newly created dirs", t, func() {
		base := t.TempDir()

		created, err := MkdirAllCounting(filepath.Join(base, "a/b/c"), 0755)
		So(err, ShouldBeNil)
		So(created, ShouldEqual, 3)

		created, err = MkdirAllCounting(filepath.Join(base, "a/b/c/d"), 0755)
		So(err, ShouldBeNil)
		So(created, ShouldEqual, 1)

		created, err = MkdirAllCounting(filepath.Join(base, "a/b/c"), 0755)
		So(err, ShouldBeNil)
		So(created, ShouldEqual, 0)
	})

	Convey("MkdirAllCounting refuses a non-directory intermediate", t, func() {
		base := t.TempDir()
		file := filepath.Join(base, "notadir")
		So(os.WriteFile(file, []byte("x"), 0644), ShouldBeNil)

		_, err := MkdirAllCounting(filepath.Join(file, "child"), 0755)
		So(err, ShouldNotBeNil)
	})

	Convey("ReadlinkOrSelf", t, func() {
		base := t.TempDir()
		target := filepath.Join(base, "target")
		So(os.WriteFile(target, []byte("x"), 0644), ShouldBeNil)

		link := filepath.Join(base, "link")
		So(os.Symlink(target, link), ShouldBeNil)
		So(ReadlinkOrSelf(link), ShouldEqual, target)
		So(ReadlinkOrSelf(target), ShouldEqual, target)
		So(ReadlinkOrSelf(filepath.Join(base, "missing")), ShouldEqual, "")
	})
}

func TestDirIterator(t *testing.T) {
	Convey("Dir yields entries then io.EOF", t, func() {
		base := t.TempDir()
		So(os.WriteFile(filepath.Join(base, "one"), nil, 0644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(base, "two"), nil, 0644), ShouldBeNil)

		d, err := OpenDir(base)
		So(err, ShouldBeNil)
		defer d.Close()

		var names []string
		for {
			ent, err := d.Next()
			if err == io.EOF {
				break
			}
			So(err, ShouldBeNil)
			names = append(names, ent.Name())
		}
		So(names, ShouldContain, "one")
		So(names, ShouldContain, "two")
	})
}
