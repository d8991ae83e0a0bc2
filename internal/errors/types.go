// Package errors defines the error taxonomy surfaced by the CINCO client.
// Every failed call yields exactly one *Error whose Kind callers can switch on.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is the variant tag of an *Error.
type Kind int

const (
	// KindTransport is a network, DNS or timeout failure. Never retried.
	KindTransport Kind = iota + 1

	// KindHTTP is a response the calling operation did not expect.
	KindHTTP

	// KindAsyncJob is a job that reached the terminal ERROR state.
	KindAsyncJob

	// KindJobNotFound is a poll location that answered 404.
	KindJobNotFound

	// KindPollTimeout is a job that did not reach a terminal state within the
	// configured poll budget.
	KindPollTimeout

	// KindInvalidArgument is a malformed key or request rejected before any I/O.
	KindInvalidArgument
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "Transport"
	case KindHTTP:
		return "HTTP"
	case KindAsyncJob:
		return "AsyncJob"
	case KindJobNotFound:
		return "JobNotFound"
	case KindPollTimeout:
		return "PollTimeout"
	case KindInvalidArgument:
		return "InvalidArgument"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Error is the classified error returned by the client.
type Error struct {
	Kind       Kind
	StatusCode int    // HTTP status code (0 when no response was received)
	Message    string // context-carrying, human-readable message
	Body       string // response body excerpt for diagnostics
	Location   string // poll location for async job errors
	Cause      error  // underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error with the same Kind and, when target carries one,
// the same StatusCode. This lets the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// Sentinels for errors.Is matching by kind.
var (
	ErrTransport       = &Error{Kind: KindTransport}
	ErrHTTP            = &Error{Kind: KindHTTP}
	ErrAsyncJob        = &Error{Kind: KindAsyncJob}
	ErrJobNotFound     = &Error{Kind: KindJobNotFound}
	ErrPollTimeout     = &Error{Kind: KindPollTimeout}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
)

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or 0 when err is not a classified error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return 0
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := As(err); ok {
		return e.StatusCode
	}
	return 0
}

// InvalidArgument builds a KindInvalidArgument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Transport wraps a network-level failure without classifying it further.
func Transport(operation string, err error) *Error {
	return &Error{Kind: KindTransport, Message: operation, Cause: err}
}
