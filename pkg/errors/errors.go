// Package errors provides structured error handling for nodeward.
//
// Errors carry an operation name and an [ErrorKind]. Runtime conditions that
// must never crash the page (a detached target, a panicking listener) are
// sent to the global [Handler] via [Report] instead of being returned.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfiguration indicates invalid options supplied at construction.
	KindConfiguration
	// KindInvalidTarget indicates a target that is unbound or never attaches.
	KindInvalidTarget
	// KindValidation indicates rejected user input.
	KindValidation
	// KindStorage indicates a persistence failure.
	KindStorage
	// KindTransport indicates a network or stream failure.
	KindTransport
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidTarget:
		return "invalid-target"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	case KindTransport:
		return "transport"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error is a structured error with an operation and kind.
type Error struct {
	// Op is the operation that failed (e.g., "visibility.Observe").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given kind.
func New(op string, kind ErrorKind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Configuration wraps err as a configuration error.
func Configuration(op string, err error) *Error {
	return New(op, KindConfiguration, err)
}

// InvalidTarget wraps err as an invalid-target error.
func InvalidTarget(op string, err error) *Error {
	return New(op, KindInvalidTarget, err)
}

// Validation wraps err as a validation error.
func Validation(op string, err error) *Error {
	return New(op, KindValidation, err)
}

// IsKind reports whether any Error in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.Counter.tick").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Handler receives errors reported by nodeward components.
type Handler interface {
	// HandleError is called when an error is reported.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
