// Package errors provides error handling for the gridalign scheduling simulator.
//
// Errors carry a Kind so callers can distinguish bad input data (malformed CSV,
// too few samples for an interpolation method) from contract violations
// (evaluating outside an interpolant's domain, mismatched vector lengths in the
// accumulator) without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error according to the simulator's error taxonomy.
type Kind int

const (
	// KindUnknown is the zero Kind for wrapped errors with no classification.
	KindUnknown Kind = iota
	// KindInvalidInput marks input-data errors: empty or malformed files,
	// periodic endpoint mismatches, too few samples for a method. Fatal to the
	// component that loads the data, never retried.
	KindInvalidInput
	// KindOutOfDomain marks evaluation of an interpolant outside its valid
	// abscissa range.
	KindOutOfDomain
	// KindNotInitialized marks use of an empty placeholder interpolant.
	KindNotInitialized
	// KindInvariant marks programming-contract violations such as mismatched
	// vector lengths inside the accumulator. These indicate a bug, not bad
	// input, and terminate the run.
	KindInvariant
	// KindResource marks startup resource failures (file not found).
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindOutOfDomain:
		return "out of domain"
	case KindNotInitialized:
		return "not initialized"
	case KindInvariant:
		return "invariant violation"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Error is an error with a kind and optional component/operation context.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// New creates a new error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a new error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a kind and message. If err is nil, Wrap
// returns nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Wrapf wraps an existing error with a kind and formatted message. If err is
// nil, Wrapf returns nil.
func Wrapf(err error, kind Kind, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err or any error in its chain is an *Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		err = errors.Unwrap(err)
	}
	return KindUnknown
}
