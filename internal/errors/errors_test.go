package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromResponse_MessageCarriesContextStatusAndBody(t *testing.T) {
	e := FromResponse(http.StatusConflict, []byte(` {"message":"user exists"} `), "create user")
	require.NotNil(t, e)
	assert.Equal(t, KindHTTP, e.Kind)
	assert.Equal(t, http.StatusConflict, e.StatusCode)
	assert.Equal(t, `create user: HTTP 409: {"message":"user exists"}`, e.Message)
	assert.True(t, IsConflict(e))
	assert.False(t, IsNotFound(e))
}

func TestFromResponse_EmptyBody(t *testing.T) {
	e := FromResponse(http.StatusInternalServerError, nil, "get project")
	assert.Equal(t, "get project: HTTP 500", e.Message)
}

func TestFromResponse_TruncatesLongBody(t *testing.T) {
	body := strings.Repeat("x", 2*maxBodyExcerpt)
	e := FromResponse(http.StatusBadGateway, []byte(body), "ctx")
	assert.Len(t, e.Body, maxBodyExcerpt+3)
	assert.True(t, strings.HasSuffix(e.Body, "..."))
}

func TestFromResponse_TruncatesOnRuneBoundary(t *testing.T) {
	// "x" shifts every two-byte rune so the byte limit lands mid-rune.
	body := "x" + strings.Repeat("é", maxBodyExcerpt)
	e := FromResponse(http.StatusBadGateway, []byte(body), "ctx")
	assert.True(t, utf8.ValidString(e.Body))
	assert.Len(t, e.Body, maxBodyExcerpt-1+3)
	assert.True(t, utf8.ValidString(e.Message))
}

func TestStatusHelpers(t *testing.T) {
	cases := []struct {
		status       int
		notFound     bool
		unauthorized bool
		conflict     bool
	}{
		{http.StatusNotFound, true, false, false},
		{http.StatusUnauthorized, false, true, false},
		{http.StatusForbidden, false, true, false},
		{http.StatusConflict, false, false, true},
		{http.StatusBadRequest, false, false, false},
		{http.StatusServiceUnavailable, false, false, false},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", FromResponse(tc.status, nil, "op"))
			assert.Equal(t, tc.notFound, IsNotFound(err))
			assert.Equal(t, tc.unauthorized, IsUnauthorized(err))
			assert.Equal(t, tc.conflict, IsConflict(err))
			assert.Equal(t, tc.status, StatusCode(err))
		})
	}
}

func TestSentinelsMatchByKind(t *testing.T) {
	require.ErrorIs(t, JobNotFound("/jobs/1"), ErrJobNotFound)
	require.ErrorIs(t, JobFailed("/jobs/1", "disk full"), ErrAsyncJob)
	require.ErrorIs(t, PollTimeout("/jobs/1", 3, nil), ErrPollTimeout)
	require.ErrorIs(t, InvalidArgument("bad %s", "key"), ErrInvalidArgument)
	require.ErrorIs(t, FromResponse(500, nil, "x"), ErrHTTP)
	assert.NotErrorIs(t, FromResponse(500, nil, "x"), ErrAsyncJob)
	assert.ErrorIs(t, FromResponse(404, nil, "x"), &Error{Kind: KindHTTP, StatusCode: 404})
	assert.NotErrorIs(t, FromResponse(500, nil, "x"), &Error{Kind: KindHTTP, StatusCode: 404})
}

func TestTransport_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Transport("GET /users", cause)
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "[Transport]")
}

func TestJobErrors(t *testing.T) {
	e := JobFailed("/jobs/9", "disk full")
	assert.Contains(t, e.Error(), "disk full")
	assert.Equal(t, "/jobs/9", e.Location)

	nf := JobNotFound("/jobs/9")
	assert.True(t, IsJobNotFound(nf))
	assert.True(t, IsNotFound(nf))

	assert.Contains(t, JobFailed("/jobs/9", "").Error(), "without an error message")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "PollTimeout", KindPollTimeout.String())
	assert.Equal(t, "Unknown(42)", Kind(42).String())
	assert.Equal(t, Kind(0), KindOf(stderrors.New("plain")))
}
