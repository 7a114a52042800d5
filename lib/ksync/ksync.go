/*
	ksync is a pair of rendezvous endpoints: A's Post wakes B's Wait and
	vice versa. Two backings are provided -- NewPrivatePair for two
	goroutines in one process (the join path's locked-OS-thread dance),
	and NewSharedPair for a parent and a re-exec'd child that need to
	rendezvous across the exec boundary.
*/
package ksync

import "os"

// Endpoint is one side of a rendezvous pair.
type Endpoint interface {
	// Post wakes the peer's Wait.
	Post() error
	// Wait blocks until the peer calls Post.
	Wait() error
	// Yield posts the peer, then waits on self -- the handshake primitive:
	// "I'm ready; let me know when you are."
	Yield() error
	// Close releases this side's resources. Safe to call more than once.
	Close() error
}

// --- private (in-process) backing ---

type chanEndpoint struct {
	post chan struct{}
	wait chan struct{}
}

// NewPrivatePair returns two endpoints backed by buffered channels, for
// rendezvous between goroutines in the same process.
func NewPrivatePair() (a, b Endpoint) {
	c1 := make(chan struct{}, 1)
	c2 := make(chan struct{}, 1)
	return &chanEndpoint{post: c1, wait: c2}, &chanEndpoint{post: c2, wait: c1}
}

func (e *chanEndpoint) Post() error { e.post <- struct{}{}; return nil }
func (e *chanEndpoint) Wait() error { <-e.wait; return nil }
func (e *chanEndpoint) Yield() error {
	if err := e.Post(); err != nil {
		return err
	}
	return e.Wait()
}
func (e *chanEndpoint) Close() error { return nil }

// --- shared (cross-exec) backing ---

// PipeEndpoint is a rendezvous endpoint backed by a pair of inherited
// pipe descriptors, able to survive an exec boundary via ExtraFiles.
type PipeEndpoint struct {
	postW *os.File
	waitR *os.File
}

// NewSharedPair returns two endpoints backed by two os.Pipe()s -- one
// pipe per direction -- so each side has a strictly-owned read end and
// write end, suitable for handing one side's files to a child process
// across exec via cmd.ExtraFiles.
func NewSharedPair() (a, b *PipeEndpoint, err error) {
	r1, w1, err := os.Pipe() // a -> b
	if err != nil {
		return nil, nil, err
	}
	r2, w2, err := os.Pipe() // b -> a
	if err != nil {
		r1.Close()
		w1.Close()
		return nil, nil, err
	}
	a = &PipeEndpoint{postW: w1, waitR: r2}
	b = &PipeEndpoint{postW: w2, waitR: r1}
	return a, b, nil
}

// Files returns the two descriptors this endpoint needs on the other side
// of an exec, in (postW, waitR) order -- the order nsclone passes them via
// ExtraFiles and the order the re-exec'd child reconstructs them in.
func (e *PipeEndpoint) Files() []*os.File { return []*os.File{e.postW, e.waitR} }

// FromFiles reconstructs a PipeEndpoint from inherited descriptors, in the
// same (postW, waitR) order Files() produced them.
func FromFiles(postW, waitR *os.File) *PipeEndpoint {
	return &PipeEndpoint{postW: postW, waitR: waitR}
}

func (e *PipeEndpoint) Post() error {
	_, err := e.postW.Write([]byte{0})
	return err
}

func (e *PipeEndpoint) Wait() error {
	var b [1]byte
	_, err := e.waitR.Read(b[:])
	return err
}

func (e *PipeEndpoint) Yield() error {
	if err := e.Post(); err != nil {
		return err
	}
	return e.Wait()
}

func (e *PipeEndpoint) Close() error {
	err1 := e.postW.Close()
	err2 := e.waitR.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
