package client

import (
	"errors"

	"github.com/communitybridge/cinco-client/internal/api"
	cerrors "github.com/communitybridge/cinco-client/internal/errors"
)

// Error is the classified failure every call returns. Switch on Kind.
type Error = cerrors.Error

// Kind is the variant tag of an *Error.
type Kind = cerrors.Kind

// Error kinds.
const (
	KindTransport       = cerrors.KindTransport
	KindHTTP            = cerrors.KindHTTP
	KindAsyncJob        = cerrors.KindAsyncJob
	KindJobNotFound     = cerrors.KindJobNotFound
	KindPollTimeout     = cerrors.KindPollTimeout
	KindInvalidArgument = cerrors.KindInvalidArgument
)

// Sentinels matched by kind, e.g. errors.Is(err, client.ErrJobNotFound).
var (
	ErrTransport       = cerrors.ErrTransport
	ErrHTTP            = cerrors.ErrHTTP
	ErrAsyncJob        = cerrors.ErrAsyncJob
	ErrJobNotFound     = cerrors.ErrJobNotFound
	ErrPollTimeout     = cerrors.ErrPollTimeout
	ErrInvalidArgument = cerrors.ErrInvalidArgument
)

// ErrUserExists is returned by CreateUser on 409.
var ErrUserExists = api.ErrUserExists

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// ErrClosed is returned by Enqueue and Flush after Close.
var ErrClosed = errors.New("client closed")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// FromResponse classifies a response the caller did not expect.
func FromResponse(resp *Response, contextMessage string) *Error {
	return cerrors.FromResponse(resp.StatusCode, resp.Body, contextMessage)
}

// Classification helpers.
var (
	KindOf         = cerrors.KindOf
	StatusCode     = cerrors.StatusCode
	IsNotFound     = cerrors.IsNotFound
	IsUnauthorized = cerrors.IsUnauthorized
	IsConflict     = cerrors.IsConflict
	IsTransport    = cerrors.IsTransport
	IsAsyncJob     = cerrors.IsAsyncJob
	IsJobNotFound  = cerrors.IsJobNotFound
	IsPollTimeout  = cerrors.IsPollTimeout
)
