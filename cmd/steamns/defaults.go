package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/config"
	"go.sodimm.me/kons/lib/cvshort"
	"go.sodimm.me/kons/ns/mount"
)

// bindRunMediaDefaults applies steamns's additional default bindings
// beyond mount_core's proc/sys/dev/tmp/run: the caller's XDG run
// directory (if present) and read-only views of /media and /mnt (if
// present), matching the original isolator's broader default recipe.
func bindRunMediaDefaults(newRoot string, uid int) cvshort.Result {
	c := cvshort.Chain{}

	runUser := fmt.Sprintf("/run/user/%d", uid)
	if _, err := os.Stat(runUser); err == nil {
		target := filepath.Join(newRoot, runUser)
		c = c.Then("mkdir-run-user", func() error {
			return os.MkdirAll(target, 0755)
		}).Then("bind-run-user", func() error {
			return mount.Bind(runUser, target, unix.MS_REC)
		})
	}

	for _, ro := range []string{"/media", "/mnt"} {
		ro := ro
		if _, err := os.Stat(ro); err != nil {
			continue
		}
		target := filepath.Join(newRoot, ro)
		c = c.Then("mkdir"+ro, func() error {
			return os.MkdirAll(target, 0755)
		}).Then("bind"+ro, func() error {
			return mount.Bind(ro, target, unix.MS_REC)
		}).Then("remount-ro"+ro, func() error {
			return mount.Mount("", target, "", unix.MS_BIND|unix.MS_REC|unix.MS_REMOUNT|unix.MS_RDONLY, "")
		})
	}

	return c.Result()
}

func bindX11All() bool {
	return config.BindX11ByDefault()
}
