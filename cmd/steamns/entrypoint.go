package main

import (
	"fmt"
	"os"

	"go.sodimm.me/kons/core/recipe"
	"go.sodimm.me/kons/ns/clone"
	"go.sodimm.me/kons/ns/mount"
	"go.sodimm.me/kons/ns/nsref"
)

// entrypointName is steamns's own registration name, distinct from the
// generic front end's -- unlike overlayns, steamns has a fixed
// mount_core/GUI/fakeroot preamble to run against Mode.NewRoot before the
// caller's recipe (which itself ends in a PivotRoot step) executes.
const entrypointName = "steamns-exec"

func init() {
	clone.Register(entrypointName, runSteamnsJob)
}

func runSteamnsJob(ctx clone.Context) int {
	job, err := recipe.LoadJob(ctx.PayloadPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "steamns:", err)
		return recipe.ExitCodeFor(err)
	}

	if code, ok := recipe.Rendezvous(ctx, job); !ok {
		return code
	}

	if !job.Mode.HostRoot {
		if result := mount.MountCore(job.Mode.NewRoot); !result.OK() {
			fmt.Fprintf(os.Stderr, "steamns: %s: %v\n", result.Label, result.Err)
			return recipe.ExitCodeFor(result.Err)
		}
		if result := bindRunMediaDefaults(job.Mode.NewRoot, job.Exec.TargetUID); !result.OK() {
			fmt.Fprintf(os.Stderr, "steamns: %s: %v\n", result.Label, result.Err)
			return recipe.ExitCodeFor(result.Err)
		}
		if job.GUI {
			if result := mount.MountGUI(job.Mode.NewRoot, bindX11All()); !result.OK() {
				fmt.Fprintf(os.Stderr, "steamns: %s: %v\n", result.Label, result.Err)
				return recipe.ExitCodeFor(result.Err)
			}
		}
		if job.Exec.TargetUID != 0 || job.Exec.TargetGID != 0 {
			if err := writeFakeroot(job.Mode.NewRoot, job.Exec.TargetUID, job.Exec.TargetGID); err != nil {
				fmt.Fprintln(os.Stderr, "steamns:", err)
				return recipe.ExitCodeFor(err)
			}
		}
	}

	temps := &recipe.TempDirs{}
	if result := recipe.Execute(job.Recipe, temps); !result.OK() {
		fmt.Fprintf(os.Stderr, "steamns: %s: %v\n", result.Label, result.Err)
		return recipe.ExitCodeFor(result.Err)
	}

	if job.Reap {
		// Daemon mode: publish, then idle as pid 1 until every joiner
		// has exited, then remove our own reference. The publish here
		// happens before the reaper loop settles, reproducing the
		// original's known publish-before-fully-ready race rather than
		// fixing it (see DESIGN.md's open question on -D).
		if job.PublishNSRef != "" {
			if _, err := nsref.Publish(job.PublishNSRef, os.Getpid()); err != nil {
				fmt.Fprintln(os.Stderr, "steamns:", err)
				return recipe.ExitCodeFor(err)
			}
		}
		code := recipe.PID1Reaper(nil)
		if job.PublishNSRef != "" {
			os.Remove(job.PublishNSRef)
		}
		return code
	}

	return recipe.Finish(job)
}
