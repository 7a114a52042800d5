package recipe

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/lib/ksync"
	"go.sodimm.me/kons/ns/clone"
	"go.sodimm.me/kons/ns/mount"
	"go.sodimm.me/kons/ns/nsref"
	"go.sodimm.me/kons/nserr"
)

// EntrypointName is the ns/clone registration name a CLI front end's
// Spawn/UVCloneSingle/JoinAndSpawn calls hand off to.
const EntrypointName = "recipe-exec"

func init() {
	clone.Register(EntrypointName, runJob)
}

// runJob is the registered clone.Entrypoint for the generic front end: it
// loads the RecipeJob the parent wrote out, completes the id-map
// rendezvous and mnt-namespace join if either is pending, executes the
// recipe, then hands off via Finish.
func runJob(ctx clone.Context) int {
	job, err := LoadJob(ctx.PayloadPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kons:", err)
		return exitCodeFor(err)
	}

	if code, ok := Rendezvous(ctx, job); !ok {
		return code
	}

	temps := &TempDirs{}
	if result := Execute(job.Recipe, temps); !result.OK() {
		fmt.Fprintf(os.Stderr, "kons: %s: %v\n", result.Label, result.Err)
		return exitCodeFor(result.Err)
	}

	return Finish(job)
}

// Rendezvous completes the two handshakes a freshly re-exec'd child may
// need before its recipe can run: the id-map yield/post protocol (if the
// parent passed sync descriptors) and the mnt-namespace setns a join
// path defers to the child (if JoinNSDir is set). Returns ok=false with
// the exit code to return if either step fails.
func Rendezvous(ctx clone.Context, job *RecipeJob) (exitCode int, ok bool) {
	if ctx.HasSyncFiles {
		postW := os.NewFile(uintptr(ctx.SyncPostFd), "sync-post")
		waitR := os.NewFile(uintptr(ctx.SyncWaitFd), "sync-wait")
		ep := ksync.FromFiles(postW, waitR)
		if err := ep.Yield(); err != nil {
			fmt.Fprintln(os.Stderr, "kons: id-map rendezvous failed:", err)
			return exitCodeFor(nserr.ProtocolErr("rendezvous: %v", err)), false
		}
		ep.Close()
	}

	if job.JoinNSDir != "" {
		if err := mount.SetNS(job.JoinNSDir, "mnt", unix.CLONE_NEWNS); err != nil {
			err = nserr.SetupErr("join-setns-mnt", err)
			fmt.Fprintln(os.Stderr, "kons:", err)
			return exitCodeFor(err), false
		}
	}
	return 0, true
}

// Finish publishes the namespace reference if requested, then either
// enters the pid-1 reaper, exits cleanly, or execs the target program --
// whichever ExecSpec/Reap call for. It never returns if it execs.
func Finish(job *RecipeJob) int {
	if job.PublishNSRef != "" {
		if _, err := nsref.Publish(job.PublishNSRef, os.Getpid()); err != nil {
			fmt.Fprintln(os.Stderr, "kons:", err)
			return exitCodeFor(err)
		}
	}

	if len(job.Exec.Argv) == 0 {
		if job.Reap {
			return PID1Reaper(nil)
		}
		return 0
	}

	if err := dropToTarget(job.Exec); err != nil {
		fmt.Fprintln(os.Stderr, "kons:", err)
		return exitCodeFor(nserr.SetupErr("drop-privileges", err))
	}

	// TMPDIR is forced to /tmp unless the caller overrides it. Inherited
	// entries for overridden keys are dropped so the override is the only
	// value the program sees.
	overrides := map[string]string{"TMPDIR": "/tmp"}
	for k, v := range job.Exec.EnvOverrides {
		overrides[k] = v
	}
	var env []string
	for _, kv := range os.Environ() {
		k, _, _ := strings.Cut(kv, "=")
		if _, set := overrides[k]; !set {
			env = append(env, kv)
		}
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	if job.Exec.Cwd != "" {
		if err := os.Chdir(job.Exec.Cwd); err != nil {
			if job.Exec.PreserveCwd {
				fmt.Fprintln(os.Stderr, "kons: preserve-cwd failed:", err)
				return 50
			}
			fmt.Fprintln(os.Stderr, "kons:", err)
			return exitCodeFor(nserr.SetupErr("exec-chdir", err))
		}
	}

	argv0, err := resolveArgv0(job.Exec.Argv[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "kons:", err)
		return 22
	}

	if err := syscall.Exec(argv0, job.Exec.Argv, env); err != nil {
		fmt.Fprintln(os.Stderr, "kons: exec:", err)
		return exitCodeFor(nserr.ChildErr("exec %s: %v", argv0, err))
	}
	panic("unreachable")
}

// dropToTarget sets the process's uid/gid to the identity ExecSpec names,
// once the recipe's mounts and pivot are already in place. A zero
// TargetUID/TargetGID means "stay as whatever the id-map handshake left
// us" (typically root inside the namespace).
func dropToTarget(spec api.ExecSpec) error {
	if spec.TargetGID != 0 {
		if err := syscall.Setresgid(spec.TargetGID, spec.TargetGID, spec.TargetGID); err != nil {
			return err
		}
	}
	if spec.TargetUID != 0 {
		if err := syscall.Setresuid(spec.TargetUID, spec.TargetUID, spec.TargetUID); err != nil {
			return err
		}
	}
	return nil
}

func resolveArgv0(name string) (string, error) {
	if name == "" {
		return "", nserr.ParseErr("missing child argv")
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return name, nil
}

// ExitCodeFor maps an engine error to the exit code convention: a
// negated errno for raw syscall failures, otherwise a fixed code per
// nserr category. Exported so other front-end entrypoints (cmd/steamns)
// share the same mapping.
func ExitCodeFor(err error) int { return exitCodeFor(err) }

func exitCodeFor(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	switch nserr.Categorize(err) {
	case nserr.Parse:
		return 33
	case nserr.Setup:
		return 41
	case nserr.Resource, nserr.Protocol, nserr.Child:
		return 1
	default:
		return 1
	}
}
