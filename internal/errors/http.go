package errors

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxBodyExcerpt bounds how much of a response body ends up in a message.
const maxBodyExcerpt = 512

// FromResponse maps a response the caller did not expect into a KindHTTP error.
// The message carries contextMessage, the status code and a body excerpt.
// It performs no I/O and is never retried.
func FromResponse(statusCode int, body []byte, contextMessage string) *Error {
	excerpt := excerpt(body)
	msg := fmt.Sprintf("%s: HTTP %d", contextMessage, statusCode)
	if excerpt != "" {
		msg += ": " + excerpt
	}
	return &Error{
		Kind:       KindHTTP,
		StatusCode: statusCode,
		Message:    msg,
		Body:       excerpt,
	}
}

// JobFailed builds the error for a job that reported status ERROR.
func JobFailed(location, serverMessage string) *Error {
	if serverMessage == "" {
		serverMessage = "job failed without an error message"
	}
	return &Error{
		Kind:     KindAsyncJob,
		Message:  serverMessage,
		Location: location,
	}
}

// JobNotFound builds the error for a poll location that answered 404.
func JobNotFound(location string) *Error {
	return &Error{
		Kind:       KindJobNotFound,
		StatusCode: http.StatusNotFound,
		Message:    "job not found: " + location,
		Location:   location,
	}
}

// PollTimeout builds the error for a job that exhausted the poll budget.
func PollTimeout(location string, polls int, cause error) *Error {
	return &Error{
		Kind:     KindPollTimeout,
		Message:  fmt.Sprintf("job %s not finished after %d polls", location, polls),
		Location: location,
		Cause:    cause,
	}
}

// IsNotFound reports whether err carries a 404, either from a resource call
// or from a stale poll location.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err carries a 401 or 403.
func IsUnauthorized(err error) bool {
	s := StatusCode(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsConflict reports whether err carries a 409.
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// IsAsyncJob reports whether err is a job that reached the ERROR state.
func IsAsyncJob(err error) bool { return KindOf(err) == KindAsyncJob }

// IsJobNotFound reports whether err is a 404 on a poll location.
func IsJobNotFound(err error) bool { return KindOf(err) == KindJobNotFound }

// IsPollTimeout reports whether err is an exhausted poll budget.
func IsPollTimeout(err error) bool { return KindOf(err) == KindPollTimeout }

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyExcerpt {
		cut := maxBodyExcerpt
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
