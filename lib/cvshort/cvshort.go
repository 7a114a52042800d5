/*
	cvshort is a fluent accumulator for ordered fallible steps.

	The namespace setup protocol runs on the order of a dozen syscalls per
	build, and the dominant error idiom is "stop at the first failure, but
	report which step failed." A Chain applies a sequence of callables while
	it's still "ok"; once one fails it captures a label naming the failed
	step and short-circuits everything after it.
*/
package cvshort

// Result is the terminal state of a Chain: nil Err means every step so far
// succeeded; a non-nil Err pairs with Label naming the step that failed.
type Result struct {
	Err   error
	Label string
}

func (r Result) OK() bool { return r.Err == nil }

// Chain threads a Result through a sequence of Then/IfThen calls. The zero
// Chain is "ok" and ready to use.
type Chain Result

func (c Chain) Result() Result { return Result(c) }

func (c Chain) OK() bool { return c.Err == nil }

// Then runs fn if the chain is still ok. If fn returns an error, the chain
// stops and remembers label.
func (c Chain) Then(label string, fn func() error) Chain {
	if !c.OK() {
		return c
	}
	if err := fn(); err != nil {
		return Chain{Err: err, Label: label}
	}
	return c
}

// IfThen runs fn like Then, but only if cond is true; a false cond leaves
// the chain unchanged (not a failure).
func (c Chain) IfThen(label string, cond bool, fn func() error) Chain {
	if !c.OK() || !cond {
		return c
	}
	if err := fn(); err != nil {
		return Chain{Err: err, Label: label}
	}
	return c
}

// ThenChain runs fn, a step that produces its own labelled Result (for
// composing a sub-chain into a larger one), if the chain is still ok.
func (c Chain) ThenChain(fn func() Result) Chain {
	if !c.OK() {
		return c
	}
	return Chain(fn())
}

// IfThenChain is ThenChain guarded by cond.
func (c Chain) IfThenChain(cond bool, fn func() Result) Chain {
	if !c.OK() || !cond {
		return c
	}
	return Chain(fn())
}
