/*
	Package recipe executes an api.Recipe inside a process that has already
	entered a fresh mount namespace: it walks the ordered Steps, resolving
	each one (creating mount-target directories per policy, deriving
	overlay upper/work dirs, running copies) and performing the
	corresponding syscall via ns/mount.
*/
package recipe

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/lib/cvshort"
	"go.sodimm.me/kons/lib/fd"
	"go.sodimm.me/kons/ns/mount"
	"go.sodimm.me/kons/nserr"
)

// TempDirs collects the temp directories overlay Tmp steps allocate, so
// the caller can clean them up after the child exits.
type TempDirs struct {
	Dirs []string
}

func (t *TempDirs) RemoveAll() {
	for _, d := range t.Dirs {
		os.RemoveAll(d)
	}
}

// Execute runs recipe.Steps in order, stopping at the first failure and
// reporting which step (by index and label) failed.
func Execute(r api.Recipe, temps *TempDirs) cvshort.Result {
	c := cvshort.Chain{}
	for i, step := range r.Steps {
		i, step := i, step
		c = c.ThenChain(func() cvshort.Result {
			return executeStep(i, step, temps)
		})
		if !c.OK() {
			return c.Result()
		}
	}
	return c.Result()
}

func executeStep(index int, step api.Step, temps *TempDirs) cvshort.Result {
	label := func(name string) string { return fmt.Sprintf("step[%d]:%s", index, name) }

	switch {
	case step.Mount != nil:
		return execMount(label("mount"), step.Mount)
	case step.Bind != nil:
		return execBind(label("bind"), step.Bind)
	case step.Overlay != nil:
		return execOverlay(label("overlay"), step.Overlay, temps)
	case step.Copy != nil:
		return execCopy(label("copy"), step.Copy)
	case step.PivotRoot != nil:
		r := mount.PivotRoot(step.PivotRoot.NewRoot, step.PivotRoot.OldRootRelpath, step.PivotRoot.KeepOld)
		if !r.OK() {
			r.Label = label(r.Label)
		}
		return r
	case step.Protect != nil:
		r := mount.ProtectPath(step.Protect.Path)
		if !r.OK() {
			r.Label = label(r.Label)
		}
		return r
	default:
		return cvshort.Result{Err: nserr.SetupErr(label("empty"), fmt.Errorf("recipe step has no operation set")), Label: label("empty")}
	}
}

func execMount(label string, m *api.MountStep) cvshort.Result {
	c := cvshort.Chain{}.ThenChain(func() cvshort.Result {
		return ensureMountTarget(label, m.Target, m.MkdirPolicy)
	})
	return c.Then(label, func() error {
		return mount.Mount(m.Source, m.Target, m.Fstype, m.Flags, m.Data)
	}).Result()
}

func execBind(label string, b *api.BindStep) cvshort.Result {
	flags := uintptr(0)
	if b.Recursive {
		flags |= unix.MS_REC
	}
	c := cvshort.Chain{}.
		Then(label+":bind", func() error { return mount.Bind(b.Source, b.Target, flags) })
	if b.ReadOnly {
		c = c.Then(label+":remount-ro", func() error {
			return mount.Mount("", b.Target, "", unix.MS_BIND|flags|unix.MS_REMOUNT|unix.MS_RDONLY, "")
		})
	}
	return c.Result()
}

// ensureMountTarget creates target per policy: never (must already
// exist), maybe_this/require_this (a single directory), maybe_all/
// require_all (recursively). require_* refuses if the target already
// exists; the maybe_* variants tolerate either state.
func ensureMountTarget(label, target string, policy api.MkdirPolicy) cvshort.Result {
	_, statErr := os.Stat(target)
	exists := statErr == nil

	switch policy {
	case api.MkdirNever, "":
		if !exists {
			return cvshort.Result{Err: nserr.SetupErr(label, fmt.Errorf("mountpoint doesn't exist: %s", target)), Label: label}
		}
		return cvshort.Result{}
	case api.MkdirRequireThis, api.MkdirRequireAll:
		if exists {
			return cvshort.Result{Err: nserr.SetupErr(label, fmt.Errorf("mount target already exists: %s", target)), Label: label}
		}
	case api.MkdirMaybeThis, api.MkdirMaybeAll:
		if exists {
			return cvshort.Result{}
		}
	}

	var err error
	if policy == api.MkdirMaybeAll || policy == api.MkdirRequireAll {
		_, err = fd.MkdirAllCounting(target, 0755)
	} else {
		err = os.Mkdir(target, 0755)
	}
	if err != nil {
		return cvshort.Result{Err: nserr.SetupErr(label, err), Label: label}
	}
	return cvshort.Result{}
}

func execCopy(label string, cp *api.CopyStep) cvshort.Result {
	var err error
	if cp.Recursive {
		err = copyTree(cp.Source, cp.Target)
	} else {
		err = fd.Copy(cp.Source, cp.Target)
	}
	if err != nil {
		return cvshort.Result{Err: nserr.SetupErr(label, err), Label: label}
	}
	return cvshort.Result{}
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if d.Type()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		}
		return fd.Copy(path, target)
	})
}
