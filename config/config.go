/*
	Package config centralizes the engine's environment-variable knobs,
	the way the teacher's own
	config package does for its memoization path -- one accessor per
	setting, each documenting its variable and default inline.
*/
package config

import (
	"os"
	"path/filepath"
)

// GetMemoPath returns the absolute form of the KONS_MEMO_PATH environment
// variable, or nil when it is unset. No front end reads it: namespace
// references are published at the path given to --publish.
func GetMemoPath() *string {
	pth := os.Getenv("KONS_MEMO_PATH")
	if pth == "" {
		return nil
	}
	abs, err := filepath.Abs(pth)
	if err != nil {
		panic(err)
	}
	return &abs
}

// GetTempBase returns the base directory scratch overlay/copy machinery
// should allocate temp dirs under. Defaults to os.TempDir(); overridable
// via TMPDIR since that's the variable os.TempDir() itself already reads.
func GetTempBase() string {
	return os.TempDir()
}

// BindX11ByDefault reports whether GUI-mount steps should bind the whole
// /tmp/.X11-unix directory rather than narrowing to the caller's display
// socket. Set by KONS_BIND_X11=all.
func BindX11ByDefault() bool {
	return os.Getenv("KONS_BIND_X11") == "all"
}
