package clone

import (
	"io"
	"os"
	"os/exec"
	"syscall"

	"go.sodimm.me/kons/nserr"
)

// SpawnOpts configures a re-exec clone.
type SpawnOpts struct {
	// Entrypoint is the registered name the child should jump to.
	Entrypoint string
	// PayloadPath, if set, is passed to the child via KONS_REEXEC_PAYLOAD.
	PayloadPath string
	// Cloneflags are OR'd into the child's unshare/clone flags (CLONE_NEWUSER,
	// CLONE_NEWNS, CLONE_NEWPID, ...).
	Cloneflags uintptr
	// SyncEndpoint, if set, is the child's rendezvous endpoint; its
	// descriptors are passed via ExtraFiles and named via env var.
	SyncEndpoint interface{ Files() []*os.File }
	// Cleanup runs once, from ChildRef.Wait/Poll.
	Cleanup func()

	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Spawn re-execs the running binary with opts.Entrypoint selected, under
// the given clone flags.
func Spawn(opts SpawnOpts) (*ChildRef, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, nserr.ResourceErr(err)
	}

	cmd := exec.Command(self)
	env := append(os.Environ(), reexecEnvVar+"="+opts.Entrypoint)
	if opts.PayloadPath != "" {
		env = append(env, payloadEnvVar+"="+opts.PayloadPath)
	}
	if opts.SyncEndpoint != nil {
		files := opts.SyncEndpoint.Files()
		cmd.ExtraFiles = files
		// ExtraFiles start at fd 3 in the child, in order.
		env = append(env, syncFilesEnvVar+"=3,4")
	}
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Cloneflags: opts.Cloneflags}

	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, nserr.SetupErr("spawn-reexec", err)
	}
	return newChildRef(cmd, opts.Cleanup), nil
}

// Popen starts argv[0] with its stdin/stdout wired to pipes, closing each
// side's opposite end automatically -- os/exec's StdinPipe/StdoutPipe
// already implement exactly the contract a hand-rolled pipe2+dup2+vfork
// dance exists to provide.
func Popen(argv []string) (ref *ChildRef, stdin io.WriteCloser, stdout io.ReadCloser, err error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	stdin, err = cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, nserr.ResourceErr(err)
	}
	stdout, err = cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, nserr.ResourceErr(err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, nserr.SetupErr("popen", err)
	}
	return newChildRef(cmd, nil), stdin, stdout, nil
}
