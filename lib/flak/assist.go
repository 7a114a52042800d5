package flak

import (
	"fmt"
	"os"
	"path/filepath"

	"go.sodimm.me/kons/nserr"
)

// GetTempDir allocates a fresh temp directory under os.TempDir()/kons/<dirs...>,
// creating all necessary parent folders.
//
// For example, GetTempDir("overlayns") -> /tmp/kons/overlayns/989443394
func GetTempDir(dirs ...string) string {
	if len(dirs) < 1 {
		panic(fmt.Errorf("flak: GetTempDir needs at least one sub-folder name"))
	}

	parts := append([]string{os.TempDir(), "kons"}, dirs...)
	tempPath := filepath.Join(parts...)

	if err := os.MkdirAll(tempPath, 0700); err != nil {
		panic(nserr.ResourceErr(err))
	}

	folder, err := os.MkdirTemp(tempPath, "")
	if err != nil {
		panic(nserr.ResourceErr(err))
	}
	return folder
}

// WithTempDir runs f with the directory filepath.Join(dirs...), creating it
// if it is missing, and removes it on return regardless of whether f panics.
func WithTempDir(f func(string), dirs ...string) {
	if len(dirs) < 1 {
		panic(fmt.Errorf("flak: WithTempDir needs at least one sub-folder name"))
	}

	tempPath := filepath.Join(dirs...)
	if err := os.MkdirAll(tempPath, 0700); err != nil {
		panic(nserr.ResourceErr(err))
	}
	defer os.RemoveAll(tempPath)

	f(tempPath)
}
