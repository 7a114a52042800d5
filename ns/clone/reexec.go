/*
	Package clone is the child spawner: it re-execs the running binary to
	create a process with fresh namespace flags, using a registered
	entrypoint in place of the "boxed closure passed to a clone()
	trampoline" the original engine uses. Go's runtime can't safely clone a
	user-managed stack into the goroutine scheduler's view of the world, so
	the substitution is self re-exec -- the same mechanism container
	runtimes use to run setup code inside a freshly unshared process
	without reimplementing clone()'s threading contract in userspace.
*/
package clone

import (
	"fmt"
	"os"
)

// reexecEnvVar names the environment variable a re-exec'd child looks for
// at startup to decide which registered Entrypoint to run instead of its
// normal main().
const reexecEnvVar = "KONS_REEXEC_ENTRYPOINT"

// payloadEnvVar names the environment variable carrying the path to the
// JSON payload file the entrypoint should read.
const payloadEnvVar = "KONS_REEXEC_PAYLOAD"

// syncFilesEnvVar names the environment variable carrying the descriptor
// numbers (as inherited via ExtraFiles) of the child's rendezvous
// endpoint, "postW,waitR".
const syncFilesEnvVar = "KONS_REEXEC_SYNC_FDS"

// Entrypoint is a function a re-exec'd child can jump straight into. It
// receives the payload path and sync-fd numbers via Context, and returns
// the process exit code.
type Entrypoint func(ctx Context) int

// Context is what Init hands a registered Entrypoint.
type Context struct {
	PayloadPath  string
	SyncPostFd   int
	SyncWaitFd   int
	HasSyncFiles bool
}

var registry = map[string]Entrypoint{}

// Register names fn so a re-exec'd child can be dispatched to it. Must be
// called from an init() or from main() before Init() runs.
func Register(name string, fn Entrypoint) {
	registry[name] = fn
}

// Init must be the first thing main() does. If this process was re-exec'd
// to run a registered entrypoint, Init runs it and calls os.Exit with its
// return value, never returning. Otherwise it returns false immediately
// so normal CLI startup can proceed.
func Init() bool {
	name := os.Getenv(reexecEnvVar)
	if name == "" {
		return false
	}
	fn, ok := registry[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "kons: unknown reexec entrypoint %q\n", name)
		os.Exit(127)
	}

	ctx := Context{PayloadPath: os.Getenv(payloadEnvVar)}
	if raw := os.Getenv(syncFilesEnvVar); raw != "" {
		var postFd, waitFd int
		if _, err := fmt.Sscanf(raw, "%d,%d", &postFd, &waitFd); err == nil {
			ctx.SyncPostFd, ctx.SyncWaitFd, ctx.HasSyncFiles = postFd, waitFd, true
		}
	}

	os.Exit(fn(ctx))
	panic("unreachable")
}
