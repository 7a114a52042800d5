package fd

import "os"

// MkTempDir creates a fresh directory under os.TempDir() named with the
// given prefix, readable/writable/searchable only by the creator. The
// caller owns the returned path and is responsible for removing it.
func MkTempDir(prefix string) (string, error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return "", err
	}
	if err := os.Chmod(dir, 0700); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}
