/*
	nserr categorizes the errors produced by the namespace construction
	engine so callers can switch on a stable category rather than parsing
	messages. It's a thin set of constructors over errcat, one per category
	named in the engine's error handling design: parse, setup, resource,
	protocol, and child errors.

	A SetupError additionally carries the failing step's label, since the
	dominant failure mode in this engine is "the k-th syscall in an ordered
	chain failed" and the label is what makes that greppable. It also keeps
	the underlying syscall error reachable via Unwrap, so errors.As can
	still pull out a syscall.Errno once one of these wraps it.
*/
package nserr

import (
	"fmt"

	"go.sodimm.me/kons/lib/errcat"
)

type Category string

const (
	// Parse is a spec-syntax error: a mount-spec or overlay-spec string
	// the caller handed us doesn't parse.
	Parse Category = "kons-parse-error"
	// Setup is a syscall failure during recipe execution.
	Setup Category = "kons-setup-error"
	// Resource is a pipe, temp-file, or other local-allocation failure.
	Resource Category = "kons-resource-error"
	// Protocol is an id-map or rendezvous ordering violation.
	Protocol Category = "kons-protocol-error"
	// Child is a failure to exec (or a failure surfaced by) the target program.
	Child Category = "kons-child-error"
)

// Label reports the step label attached to a Setup error, or "" if err
// isn't one of ours or carries no label.
func Label(err error) string {
	e, ok := err.(*errcat.Error)
	if !ok {
		return ""
	}
	return e.Label
}

// Categorize reports the nserr Category of err, or "" if err isn't one of ours.
func Categorize(err error) Category {
	e, ok := err.(*errcat.Error)
	if !ok {
		return ""
	}
	cat, _ := e.Category.(Category)
	return cat
}

func SetupErr(label string, err error) error {
	if err == nil {
		return nil
	}
	return &errcat.Error{Category: Setup, Msg: fmt.Sprintf("%s: %s", label, err), Cause: err, Label: label}
}

func ParseErr(format string, args ...interface{}) error {
	return errcat.Errorf(Parse, format, args...)
}

func ResourceErr(err error) error {
	return errcat.Errorw(Resource, err)
}

func ProtocolErr(format string, args ...interface{}) error {
	return errcat.Errorf(Protocol, format, args...)
}

func ChildErr(format string, args ...interface{}) error {
	return errcat.Errorf(Child, format, args...)
}
