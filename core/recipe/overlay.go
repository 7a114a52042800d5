package recipe

import (
	"fmt"
	"path/filepath"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/lib/cvshort"
	"go.sodimm.me/kons/lib/fd"
	"go.sodimm.me/kons/ns/mount"
	"go.sodimm.me/kons/nserr"
)

// execOverlay resolves an OverlayStep's declarative options (shadow, tmp,
// copy_from) into a concrete overlay mount, per SPEC_FULL.md §4.F.
func execOverlay(label string, o *api.OverlayStep, temps *TempDirs) cvshort.Result {
	lowerdir := o.Lowerdir
	if o.Shadow {
		if lowerdir == "" {
			lowerdir = o.Target
		} else {
			lowerdir = o.Target + ":" + lowerdir
		}
	}

	upperdir, workdir := o.Upperdir, o.Workdir
	if o.Tmp {
		tmp, err := fd.MkTempDir("kons-overlay-")
		if err != nil {
			return cvshort.Result{Err: nserr.ResourceErr(err), Label: label + ":tmp"}
		}
		temps.Dirs = append(temps.Dirs, tmp)
		upperdir = filepath.Join(tmp, "upper")
		workdir = filepath.Join(tmp, "work")
	}

	if lowerdir == "" {
		return cvshort.Result{Err: nserr.SetupErr(label, fmt.Errorf("overlay requires lowerdir (or shadow)")), Label: label}
	}
	if (upperdir == "") != (workdir == "") {
		return cvshort.Result{Err: nserr.SetupErr(label, fmt.Errorf("overlay upperdir and workdir must be set together or both empty")), Label: label}
	}

	c := cvshort.Chain{}
	if upperdir != "" {
		c = c.Then(label+":mkdir-upper", func() error { return ensureDir(upperdir) }).
			Then(label+":mkdir-work", func() error { return ensureDir(workdir) })
	}

	if o.CopyFrom != "" {
		c = c.Then(label+":copy-from", func() error {
			return copyTree(o.CopyFrom, upperdir)
		})
	}

	data := "lowerdir=" + lowerdir
	if upperdir != "" {
		data += ",upperdir=" + upperdir + ",workdir=" + workdir
	}
	if o.ExtraData != "" {
		data += "," + o.ExtraData
	}

	return c.Then(label, func() error {
		return mount.Mount("overlay", o.Target, "overlay", 0, data)
	}).Result()
}

func ensureDir(path string) error {
	_, err := fd.MkdirAllCounting(path, 0755)
	return err
}
