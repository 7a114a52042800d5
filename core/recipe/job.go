package recipe

import (
	"encoding/json"
	"os"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/nserr"
)

// RecipeJob is the payload a re-exec'd child reads to learn what to build:
// the mount recipe to execute, the program to hand off to (if any), and
// where to publish a namespace reference once setup completes. It's the
// wire format between a CLI front end and the entrypoint it registers
// with ns/clone -- JSON, since the child reads it once from a plain file
// rather than a live pipe.
type RecipeJob struct {
	Recipe api.Recipe
	Exec   api.ExecSpec
	Mode   api.MountMode

	// PublishNSRef, if set, is a path to symlink to this process's
	// /proc/<pid>/ns once the recipe has executed, so a later `-j` join
	// can find it.
	PublishNSRef string

	// Reap marks that this process is expected to hold pid 1 of a new
	// pid namespace and should fall into the reaper loop once Exec.Argv
	// is empty, rather than just exiting.
	Reap bool

	// JoinNSDir, if set, is a NamespaceRef's target directory
	// (/proc/<pid>/ns) this freshly re-exec'd child must setns(mnt)
	// into before running Recipe. The parent has already setns'd into
	// user and pid on the locked OS thread that spawned this child, so
	// only the mount namespace remains to be joined here.
	JoinNSDir string

	// GUI requests that the well-known GUI-support paths (X11, dbus,
	// pulse, wayland, ...) be bound into Mode.NewRoot before Recipe
	// runs. Consumed by cmd/steamns's own entrypoint; ignored by the
	// generic one.
	GUI bool
}

func (j *RecipeJob) Marshal() ([]byte, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, nserr.ResourceErr(err)
	}
	return b, nil
}

// LoadJob reads and unmarshals a RecipeJob from the path an entrypoint
// Context hands it.
func LoadJob(path string) (*RecipeJob, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nserr.ResourceErr(err)
	}
	var job RecipeJob
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, nserr.ParseErr("malformed recipe job at %s: %v", path, err)
	}
	return &job, nil
}
