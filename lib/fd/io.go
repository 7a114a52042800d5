package fd

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"go.sodimm.me/kons/nserr"
)

// ReadFull retries a read until buf is full, EOF, or a real error -- the
// contract io.ReadFull already implements, so it's used directly rather
// than reimplemented.
func ReadFull(r io.Reader, buf []byte) (int, error) { return io.ReadFull(r, buf) }

// TimedRead behaves like ReadFull but reports a distinct timeout error if
// budget elapses before the read completes.
func TimedRead(f *os.File, buf []byte, budget time.Duration) (int, error) {
	if err := f.SetReadDeadline(time.Now().Add(budget)); err != nil {
		return 0, nserr.ResourceErr(err)
	}
	defer f.SetReadDeadline(time.Time{})

	n, err := io.ReadFull(f, buf)
	if err != nil && os.IsTimeout(err) {
		return n, nserr.ResourceErr(fmt.Errorf("timed read exceeded %s: %w", budget, err))
	}
	return n, err
}

// WriteBinary and ReadBinary write/read a fixed-size value in the host's
// native byte order.
func WriteBinary(w io.Writer, v interface{}) error {
	return binary.Write(w, binary.NativeEndian, v)
}

func ReadBinary(r io.Reader, v interface{}) error {
	return binary.Read(r, binary.NativeEndian, v)
}
