/*
	overlayns is the generic front end onto the namespace construction
	engine: it turns a series of --mount/--overlay spec strings into a
	Recipe, an --uid/--gid/--cwd/--env set into an ExecSpec, and hands
	both to the engine either as a fresh user+mount namespace or as a
	join against an existing NamespaceRef.
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
			fmt.Fprintln(os.Stderr, "overlayns: internal error:", e)
			exitCode = 5
		}},
	})
	os.Exit(exitCode)
}

func run(log log15.Logger, args []string) int {
	app := kingpin.New("overlayns", "Build a namespace from a recipe of mount specs.")
	app.HelpFlag.Short('h')
	app.UsageWriter(os.Stderr)
	app.ErrorWriter(os.Stderr)
	app.Interspersed(false)

	mountSpecs := app.Flag("mount", "Mount spec: fstype,device,mountpoint[,option...]. Repeatable.").Strings()
	overlaySpecs := app.Flag("overlay", "Overlay spec: mountpoint[,option...]. Repeatable.").Strings()
	uid := app.Flag("uid", "Uid to occupy inside the new user namespace.").Int()
	gid := app.Flag("gid", "Gid to occupy inside the new user namespace.").Int()
	joinRef := app.Flag("join", "Join an existing namespace reference instead of creating one.").String()
	publish := app.Flag("publish", "Publish a namespace reference at this path once setup completes.").String()
	cwd := app.Flag("cwd", "Chdir to this path before exec, inside the new root.").String()
	preserveCwd := app.Flag("preserve-cwd", "Fail (exit 50) instead of falling back if cwd can't be entered.").Bool()
	envPairs := app.Flag("env", "K=V to set in the child's environment. Repeatable.").Strings()
	reap := app.Flag("reap", "With no argv, hold pid 1 of a fresh pid namespace and reap until only it remains.").Bool()
	argv := app.Arg("argv", "Program to exec once the namespace is built.").Strings()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "overlayns:", err)
		return 1
	}
	log.Debug("parsed args", "mounts", len(*mountSpecs), "overlays", len(*overlaySpecs), "join", *joinRef != "")

	var r api.Recipe
	for _, spec := range *mountSpecs {
		step, err := mountspec.ParseMount(spec)
		if err != nil {
			fmt.Fprintln(os.Stderr, "overlayns:", err)
			return 33
		}
		r.Append(step)
	}
	for _, spec := range *overlaySpecs {
		step, err := mountspec.ParseOverlay(spec)
		if err != nil {
			fmt.Fprintln(os.Stderr, "overlayns:", err)
			return 33
		}
		r.Append(step)
	}

	env := map[string]string{}
	for _, kv := range *envPairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "overlayns: malformed --env %q, want K=V\n", kv)
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
		PublishNSRef: *publish,
		Reap:         *reap,
	}
	if len(job.Exec.Argv) == 0 && *joinRef == "" && !*reap {
		fmt.Fprintln(os.Stderr, "overlayns: missing child argv")
		return 22
	}

	var nsDir string
	if *joinRef != "" {
		nsRef, err := nsref.Resolve(*joinRef)
		if err != nil {
			fmt.Fprintln(os.Stderr, "overlayns:", err)
			return exitFor(err)
		}
		nsDir = nsRef.TargetDir
		job.JoinNSDir = nsDir
	}

	payload, err := job.Marshal()
	if err != nil {
		fmt.Fprintln(os.Stderr, "overlayns:", err)
		return 1
	}
	payloadFile, err := os.CreateTemp("", "overlayns-job-")
	if err != nil {
		fmt.Fprintln(os.Stderr, "overlayns:", err)
		return 1
	}
	defer os.Remove(payloadFile.Name())
	if _, err := payloadFile.Write(payload); err != nil {
		fmt.Fprintln(os.Stderr, "overlayns:", err)
		return 1
	}
	payloadFile.Close()

	var ref *clone.ChildRef
	if *joinRef != "" {
		ref, err = clone.JoinAndSpawn(nsDir, clone.SpawnOpts{
			Entrypoint:  recipe.EntrypointName,
			PayloadPath: payloadFile.Name(),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "overlayns:", err)
			return exitFor(err)
		}
	} else {
		cloneFlags := uintptr(unix.CLONE_NEWNS)
		if job.Reap {
			cloneFlags |= unix.CLONE_NEWPID
		}
		ref, err = clone.UVCloneSingle(*uid, *gid, recipe.EntrypointName, payload, cloneFlags)
		if err != nil {
			fmt.Fprintln(os.Stderr, "overlayns:", err)
			if ref != nil {
				ref.Kill()
				ref.Wait()
			}
			return exitFor(err)
		}
	}

	code, err := ref.Wait()
	if err != nil {
		fmt.Fprintln(os.Stderr, "overlayns:", err)
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
