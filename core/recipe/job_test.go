package recipe

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/lib/testutil"
	"go.sodimm.me/kons/nserr"
)

func TestRecipeJobRoundTrip(t *testing.T) {
	Convey("Given a RecipeJob with a recipe and exec spec", t, func() {
		job := &RecipeJob{
			Recipe: api.Recipe{Steps: []api.Step{
				{Bind: &api.BindStep{Source: "/src", Target: "/dst"}},
			}},
			Exec:         api.ExecSpec{Argv: []string{"/bin/true"}},
			PublishNSRef: "/run/kons/test",
		}

		Convey("marshaling and reloading it from disk preserves its shape", func() {
			b, err := job.Marshal()
			So(err, ShouldBeNil)

			dir := t.TempDir()
			path := filepath.Join(dir, "job.json")
			So(os.WriteFile(path, b, 0600), ShouldBeNil)

			loaded, err := LoadJob(path)
			So(err, ShouldBeNil)
			So(loaded.PublishNSRef, ShouldEqual, job.PublishNSRef)
			So(loaded.Exec.Argv, ShouldResemble, job.Exec.Argv)
			So(loaded.Recipe.Steps, ShouldHaveLength, 1)
			So(loaded.Recipe.Steps[0].Bind.Target, ShouldEqual, "/dst")
		})

		Convey("loading a nonexistent path fails as a resource error", func() {
			_, err := LoadJob(filepath.Join(t.TempDir(), "missing.json"))
			So(err, testutil.ShouldBeErrorClass, nserr.Resource)
		})

		Convey("loading malformed JSON fails as a parse error", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "bad.json")
			So(os.WriteFile(path, []byte("not json"), 0600), ShouldBeNil)

			_, err := LoadJob(path)
			So(err, testutil.ShouldBeErrorClass, nserr.Parse)
		})
	})
}

func TestExitCodeFor(t *testing.T) {
	Convey("Given errors of each category", t, func() {
		Convey("a parse error maps to 33", func() {
			So(exitCodeFor(nserr.ParseErr("bad spec")), ShouldEqual, 33)
		})
		Convey("a setup error maps to 41", func() {
			So(exitCodeFor(nserr.SetupErr("step[0]:mount", os.ErrPermission)), ShouldEqual, 41)
		})
		Convey("a child error maps to 1", func() {
			So(exitCodeFor(nserr.ChildErr("exec failed")), ShouldEqual, 1)
		})
	})
}
