package fd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

func Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }

func Mkdir(path string, mode os.FileMode) error { return os.Mkdir(path, mode) }

func Touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

func Unlink(path string) error { return os.Remove(path) }

func Rmdir(path string) error { return os.Remove(path) }

// Readlink returns the target of the symlink at path. os.Readlink already
// handles targets longer than any fixed-size buffer by growing its buffer
// and retrying, so no stat-then-retry dance is needed here.
func Readlink(path string) (string, error) { return os.Readlink(path) }

// ReadlinkOrSelf returns path unchanged if it isn't a symlink, the link
// target if it is, and "" if some other error occurs (e.g. ENOENT).
func ReadlinkOrSelf(path string) string {
	target, err := os.Readlink(path)
	if err == nil {
		return target
	}
	if errors.Is(err, syscall.EINVAL) {
		return path // exists, just isn't a symlink
	}
	return ""
}

// MkdirAllCounting behaves like os.MkdirAll but reports how many directory
// components it actually created (as opposed to found already present).
func MkdirAllCounting(path string, mode os.FileMode) (created int, err error) {
	path = filepath.Clean(path)
	fi, statErr := os.Stat(path)
	if statErr == nil {
		if !fi.IsDir() {
			return 0, fmt.Errorf("mkdir -p %s: %s exists and is not a directory", path, path)
		}
		return 0, nil
	}
	if !os.IsNotExist(statErr) {
		return 0, statErr
	}

	parent := filepath.Dir(path)
	if parent != path {
		parentCreated, err := MkdirAllCounting(parent, mode)
		if err != nil {
			return parentCreated, err
		}
		created += parentCreated
	}

	if err := os.Mkdir(path, mode); err != nil {
		if os.IsExist(err) {
			return created, nil
		}
		return created, err
	}
	return created + 1, nil
}
