package fd

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Copy copies src to dst, trying (in order) a reflink (FICLONE), then
// copy_file_range, then sendfile, then a plain buffered loop -- the same
// fallback chain the original engine uses, since not every filesystem pair
// supports the faster paths.
func Copy(src, dst string) error {
	srcF, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcF.Close()

	fi, err := srcF.Stat()
	if err != nil {
		return err
	}

	dstF, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	defer dstF.Close()

	srcFd, dstFd := int(srcF.Fd()), int(dstF.Fd())

	if err := unix.IoctlFileClone(dstFd, srcFd); err == nil {
		return nil
	}

	size := fi.Size()
	reset := func() {
		srcF.Seek(0, io.SeekStart)
		dstF.Seek(0, io.SeekStart)
		dstF.Truncate(0)
	}

	if size > 0 {
		if n, err := unix.CopyFileRange(srcFd, nil, dstFd, nil, int(size), 0); err == nil && int64(n) == size {
			return nil
		}
		reset()

		var off int64
		if n, err := unix.Sendfile(dstFd, srcFd, &off, int(size)); err == nil && int64(n) == size {
			return nil
		}
		reset()
	}

	_, err = io.Copy(dstF, srcF)
	return err
}
