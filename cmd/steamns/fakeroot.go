package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.sodimm.me/kons/nserr"
)

// writeFakeroot writes a minimal /etc/passwd and /etc/group entry for
// uid/gid into newRoot, so getpwuid-calling programs inside the
// container don't see a nameless uid when it isn't 0. Existing entries
// under newRoot/etc are left alone if present; this only appends a
// single-user file when none exists yet.
func writeFakeroot(newRoot string, uid, gid int) error {
	etc := filepath.Join(newRoot, "etc")
	if err := os.MkdirAll(etc, 0755); err != nil {
		return nserr.SetupErr("fakeroot-mkdir-etc", err)
	}

	passwd := filepath.Join(etc, "passwd")
	if _, err := os.Stat(passwd); os.IsNotExist(err) {
		line := fmt.Sprintf("user:x:%d:%d:steamns user:/home/user:/bin/sh\n", uid, gid)
		if err := os.WriteFile(passwd, []byte(line), 0644); err != nil {
			return nserr.SetupErr("fakeroot-write-passwd", err)
		}
	}

	group := filepath.Join(etc, "group")
	if _, err := os.Stat(group); os.IsNotExist(err) {
		line := fmt.Sprintf("user:x:%d:\n", gid)
		if err := os.WriteFile(group, []byte(line), 0644); err != nil {
			return nserr.SetupErr("fakeroot-write-group", err)
		}
	}
	return nil
}
