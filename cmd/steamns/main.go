/*
	steamns is the steam-style pivot-root isolator front end: a fixed
	mount_core/GUI/fakeroot preamble against a new root, ending in a
	PivotRoot step, plus -H to skip the preamble and run directly against
	the host root, and -D to stand up a long-lived namespace that idles
	in the pid-1 reaper for later -j joiners rather than running one
	program and exiting.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/inconshreveable/log15"
	"go.polydawn.net/meep"
	"golang.org/x/sys/unix"
	"gopkg.in/alecthomas/kingpin.v2"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/core/recipe"
	"go.sodimm.me/kons/lib/mountspec"
	"go.sodimm.me/kons/ns/clone"
	"go.sodimm.me/kons/ns/nsref"
	"go.sodimm.me/kons/nserr"
)

func main() {
	if clone.Init() {
		return // unreachable: Init calls os.Exit itself once dispatched
	}

	log := log15.New()
	log.SetHandler(log15.StreamHandler(os.Stderr, log15.TerminalFormat()))

	exitCode := 2
	meep.Try(func() {
		exitCode = run(log, os.Args[1:])
	}, meep.TryPlan{
		{CatchAny: true, Handler: func(e error) {
			fmt.Fprintln(os.Stderr, "steamns: internal error:", e)
			exitCode = 5
		}},
	})
	os.Exit(exitCode)
}

func run(log log15.Logger, args []string) int {
	app := kingpin.New("steamns", "Pivot into an isolated root with a steam-style default recipe.")
	app.HelpFlag.Short('h')
	app.UsageWriter(os.Stderr)
	app.ErrorWriter(os.Stderr)
	app.Interspersed(false)

	newRoot := app.Flag("root", "New root directory to pivot into. Defaults to a fresh tempdir.").String()
	hostRoot := app.Flag("host-root", "Skip the mount preamble and PivotRoot; run the recipe against the host root.").Short('H').Bool()
	daemon := app.Flag("daemon", "Stand up the namespace and idle in the pid-1 reaper for later joiners instead of running argv.").Short('D').Bool()
	gui := app.Flag("gui", "Bind the well-known GUI-support paths (X11, ...) into the new root.").Bool()
	uid := app.Flag("uid", "Uid to occupy inside the new user namespace.").Int()
	gid := app.Flag("gid", "Gid to occupy inside the new user namespace.").Int()
	joinRef := app.Flag("join", "Join an existing namespace reference instead of creating one.").Short('j').String()
	publish := app.Flag("publish", "Publish a namespace reference at this path once setup completes.").String()
	mountSpecs := app.Flag("mount", "Extra mount spec on top of the default recipe: fstype,device,mountpoint[,option...]. Repeatable.").Strings()
	cwd := app.Flag("cwd", "Chdir to this path before exec, inside the new root.").String()
	preserveCwd := app.Flag("preserve-cwd", "Fail (exit 50) instead of falling back if cwd can't be entered.").Bool()
	envPairs := app.Flag("env", "K=V to set in the child's environment. Repeatable.").Strings()
	argv := app.Arg("argv", "Program to exec once the namespace is built.").Strings()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "steamns:", err)
		return 1
	}
	log.Debug("parsed args", "hostRoot", *hostRoot, "daemon", *daemon, "join", *joinRef != "")

	if len(*argv) == 0 && *joinRef == "" && !*daemon {
		fmt.Fprintln(os.Stderr, "steamns: missing child argv")
		return 22
	}

	root := *newRoot
	if root == "" && !*hostRoot {
		var err error
		root, err = os.MkdirTemp("", "steamns-root-")
		if err != nil {
			fmt.Fprintln(os.Stderr, "steamns:", err)
			return 1
		}
	}

	var r api.Recipe
	for _, spec := range *mountSpecs {
		step, err := mountspec.ParseMount(spec)
		if err != nil {
			fmt.Fprintln(os.Stderr, "steamns:", err)
			return 33
		}
		r.Append(step)
	}
	if !*hostRoot {
		r.Append(api.Step{PivotRoot: &api.PivotRootStep{NewRoot: root}})
	}

	env := map[string]string{}
	for _, kv := range *envPairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "steamns: malformed --env %q, want K=V\n", kv)
			return 1
		}
		env[k] = v
	}

	job := &recipe.RecipeJob{
		Recipe: r,
		Exec: api.ExecSpec{
			Argv:         *argv,
			Cwd:          *cwd,
			EnvOverrides: env,
			TargetUID:    *uid,
			TargetGID:    *gid,
			PreserveCwd:  *preserveCwd,
		},
		Mode: api.MountMode{
			HostRoot: *hostRoot,
			NewRoot:  root,
		},
		GUI:          *gui,
		Reap:         *daemon,
		PublishNSRef: *publish,
	}

	var nsDir string
	if *joinRef != "" {
		nsRef, err := nsref.Resolve(*joinRef)
		if err != nil {
			fmt.Fprintln(os.Stderr, "steamns:", err)
			return exitFor(err)
		}
		nsDir = nsRef.TargetDir
		job.JoinNSDir = nsDir
	}

	payload, err := job.Marshal()
	if err != nil {
		fmt.Fprintln(os.Stderr, "steamns:", err)
		return 1
	}
	payloadFile, err := os.CreateTemp("", "steamns-job-")
	if err != nil {
		fmt.Fprintln(os.Stderr, "steamns:", err)
		return 1
	}
	defer os.Remove(payloadFile.Name())
	if _, err := payloadFile.Write(payload); err != nil {
		fmt.Fprintln(os.Stderr, "steamns:", err)
		return 1
	}
	payloadFile.Close()

	var ref *clone.ChildRef
	if *joinRef != "" {
		ref, err = clone.JoinAndSpawn(nsDir, clone.SpawnOpts{
			Entrypoint:  entrypointName,
			PayloadPath: payloadFile.Name(),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "steamns:", err)
			return exitFor(err)
		}
	} else {
		cloneFlags := uintptr(unix.CLONE_NEWNS)
		if job.Reap {
			cloneFlags |= unix.CLONE_NEWPID
		}
		ref, err = clone.UVCloneSingle(*uid, *gid, entrypointName, payload, cloneFlags)
		if err != nil {
			fmt.Fprintln(os.Stderr, "steamns:", err)
			if ref != nil {
				ref.Kill()
				ref.Wait()
			}
			return exitFor(err)
		}
	}

	// Daemon mode detaches: once the id-map/setup handshake that
	// UVCloneSingle/JoinAndSpawn already performed has returned
	// successfully, the child is left to publish its own ref and idle
	// in the reaper on its own; we don't block on its exit. This is
	// where the original's publish-before-fully-ready race lives --
	// a joiner racing this process's own return can observe the
	// symlink slightly before the child has finished settling into
	// the reaper loop, and that's left as-is rather than fixed.
	if *daemon {
		go ref.Wait()
		return 0
	}

	code, err := ref.Wait()
	if err != nil {
		fmt.Fprintln(os.Stderr, "steamns:", err)
		return 1
	}
	return code
}

func exitFor(err error) int {
	switch nserr.Categorize(err) {
	case nserr.Parse:
		return 33
	case nserr.Setup:
		return 41
	default:
		return 1
	}
}
