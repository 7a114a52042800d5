/*
	fd provides an owned, move-only file descriptor wrapper and the handful
	of descriptor-level primitives the namespace engine needs directly
	(rather than through *os.File): short-read-safe transfer, timed reads,
	native-endian binary values, directory iteration, path helpers, and a
	copy-with-fallback-chain.
*/
package fd

import "syscall"

// FD is an exclusive owner of a raw descriptor. Use Empty for an FD that
// holds nothing: the zero value holds descriptor 0 and reports Valid.
type FD struct {
	raw int
}

// New wraps an already-open descriptor.
func New(raw int) FD { return FD{raw} }

// Empty returns an FD holding no descriptor.
func Empty() FD { return FD{-1} }

func (f FD) Valid() bool { return f.raw >= 0 }

// Int peeks at the raw descriptor without transferring ownership.
func (f FD) Int() int { return f.raw }

// Release disowns the descriptor, returning it to the caller uncollected.
func (f *FD) Release() int {
	raw := f.raw
	f.raw = -1
	return raw
}

// Close closes the descriptor if one is held, and marks this FD empty.
func (f *FD) Close() error {
	if !f.Valid() {
		return nil
	}
	raw := f.raw
	f.raw = -1
	return syscall.Close(raw)
}
