package analysis

import (
	"errors"
	"fmt"
)

// Kind categorizes analysis failures.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindCanceled     Kind = "canceled"
	KindCalibration  Kind = "calibration"
	KindInternal     Kind = "internal"
)

// ErrInvalidInput matches, via errors.Is, any *Error of KindInvalidInput.
var ErrInvalidInput = errors.New("invalid input")

// Error is a failed analysis step.
type Error struct {
	Kind Kind
	Op   string // pipeline stage, e.g. "preprocess"
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidInput && e.Kind == KindInvalidInput
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
