/*
	nsref manages NamespaceRef symlinks: publishing one once an owning
	process's setup completes, resolving one to join it, and detecting
	and pruning stale references whose target pid is gone.
*/
package nsref

import (
	"fmt"
	"os"
	"syscall"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/nserr"
)

// Publish creates linkPath as a symlink to /proc/<pid>/ns.
func Publish(linkPath string, pid int) (*api.NamespaceRef, error) {
	target := fmt.Sprintf("/proc/%d/ns", pid)
	if err := os.Symlink(target, linkPath); err != nil {
		return nil, nserr.SetupErr("publish-nsref", err)
	}
	return &api.NamespaceRef{LinkPath: linkPath, TargetDir: target}, nil
}

// Remove deletes the ref's symlink. It's not an error if it's already gone.
func Remove(ref *api.NamespaceRef) error {
	err := os.Remove(ref.LinkPath)
	if err != nil && !os.IsNotExist(err) {
		return nserr.SetupErr("remove-nsref", err)
	}
	return nil
}

// Resolve opens linkPath and reports whether it's stale (its /proc/<pid>/ns
// target no longer exists). A stale ref is unlinked as a side effect, and
// the error returned is syscall.ENOENT so callers can match it directly
// with errors.Is rather than going through an nserr category.
func Resolve(linkPath string) (*api.NamespaceRef, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		return nil, nserr.SetupErr("resolve-nsref", err)
	}

	if _, statErr := os.Stat(target); statErr != nil {
		if os.IsNotExist(statErr) {
			os.Remove(linkPath)
			return nil, fmt.Errorf("stale namespace reference %s: %w", linkPath, syscall.ENOENT)
		}
		return nil, nserr.SetupErr("stat-nsref-target", statErr)
	}

	return &api.NamespaceRef{LinkPath: linkPath, TargetDir: target}, nil
}
