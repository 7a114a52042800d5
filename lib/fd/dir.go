package fd

import (
	"io"
	"os"
)

// Dir is a lazy, non-restartable directory iterator. Skipping "." and ".."
// (neither of which os.File.ReadDir ever yields on Linux) is not needed;
// skipping any other caller-unwanted entries is the caller's job.
type Dir struct {
	f *os.File
}

func OpenDir(path string) (*Dir, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Dir{f}, nil
}

func OpenDirFd(raw int) (*Dir, error) {
	f := os.NewFile(uintptr(raw), "")
	return &Dir{f}, nil
}

// Next returns the next entry, or io.EOF once the directory is exhausted.
func (d *Dir) Next() (os.DirEntry, error) {
	entries, err := d.f.ReadDir(1)
	if err != nil {
		return nil, err // ReadDir(1) itself returns io.EOF at exhaustion
	}
	if len(entries) == 0 {
		return nil, io.EOF
	}
	return entries[0], nil
}

func (d *Dir) Close() error { return d.f.Close() }
