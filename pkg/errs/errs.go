package errs

import (
	"fmt"

	"github.com/emberforge/ember/pkg/log"
)

// Code names one of the error kinds from the error-handling design. It is a
// classification, not a distinct Go type per error site.
type Code int

const (
	// InvalidArgument marks a caller-supplied constraint violation: nulls,
	// out-of-range values, bad enum members.
	InvalidArgument Code = iota
	// NullPointerData marks an expected non-null blob pointer that was nil.
	NullPointerData
	// WrongValueType marks a config reader typed-access mismatch.
	WrongValueType
	// ResourceNotFound marks a lookup miss on a key, path, or URI.
	ResourceNotFound
	// IoError marks a device error on a submitted I/O request.
	IoError
	// FeatureNotAvailable marks a platform capability the host doesn't have.
	FeatureNotAvailable
	// ProviderFailure marks a resource provider that could not enumerate or load.
	ProviderFailure
	// Assertion marks a broken invariant. Fatal after logging.
	Assertion
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "InvalidArgument"
	case NullPointerData:
		return "NullPointerData"
	case WrongValueType:
		return "WrongValueType"
	case ResourceNotFound:
		return "ResourceNotFound"
	case IoError:
		return "IoError"
	case FeatureNotAvailable:
		return "FeatureNotAvailable"
	case ProviderFailure:
		return "ProviderFailure"
	case Assertion:
		return "Assertion"
	default:
		return "Unknown"
	}
}

// Error wraps a Code with a message and, where applicable, an underlying
// cause — low-level subsystems return this (or nil) rather than panicking.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err carries the given Code, walking wrapped causes.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if as, ok := err.(*Error); ok {
			e = as
			break
		}
		err = unwrap(err)
	}
	return e != nil && e.Code == code
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

// New constructs an *Error, optionally wrapping cause (pass nil if none).
func New(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Assert is the last-resort check for invariants the design calls
// terminal: it logs at Critical through the log collaborator and panics.
// It must never be used for anything a caller could have avoided by
// passing valid arguments — that belongs to InvalidArgument instead.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	log.With("assert").Critical(msg, nil)
	panic(&Error{Code: Assertion, Msg: msg})
}
