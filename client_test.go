package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitybridge/cinco-client/internal/config"
	"github.com/communitybridge/cinco-client/internal/devauth"
	"github.com/communitybridge/cinco-client/internal/fakeapi"
)

type harness struct {
	fake   *fakeapi.Server
	srv    *httptest.Server
	client *Client
	keyed  KeyedClient
}

// newHarness serves a fake backend signed with the dev key. routes take
// precedence over the fake for exact path matches.
func newHarness(t *testing.T, fcfg fakeapi.Config, routes map[string]http.HandlerFunc, opts ...Option) *harness {
	t.Helper()
	fcfg.Keys = append(fcfg.Keys, devauth.Key())
	fcfg.Log = zerolog.Nop()
	fake := fakeapi.New(fcfg)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		fake.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(*config.NewForTesting(srv.URL), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return &harness{fake: fake, srv: srv, client: c, keyed: c.WithKey(devauth.Key())}
}

// acceptAt answers 202 pointing at the location stored in loc.
func acceptAt(loc *atomic.Value) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", loc.Load().(string))
		w.WriteHeader(http.StatusAccepted)
	}
}

func TestAcceptedCallPollsUntilResolved(t *testing.T) {
	var loc atomic.Value
	h := newHarness(t, fakeapi.Config{}, map[string]http.HandlerFunc{"/widgets": acceptAt(&loc)})
	loc.Store(h.fake.StartJob(fakeapi.Running(), fakeapi.Done(map[string]int{"id": 1})))

	resp, err := h.keyed.Post(context.Background(), "widgets", map[string]string{"name": "w"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(resp.Body))
	assert.Equal(t, 2, h.fake.Polls(loc.Load().(string)), "exactly two polls")
}

func TestAcceptedCallJobErrorStopsPolling(t *testing.T) {
	var loc atomic.Value
	h := newHarness(t, fakeapi.Config{}, map[string]http.HandlerFunc{"/widgets": acceptAt(&loc)})
	loc.Store(h.fake.StartJob(fakeapi.Failed("disk full")))

	_, err := h.keyed.Post(context.Background(), "widgets", nil)
	require.ErrorIs(t, err, ErrAsyncJob)
	assert.Contains(t, err.Error(), "disk full")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, h.fake.Polls(loc.Load().(string)))
}

func TestAcceptedCallUnknownJob(t *testing.T) {
	var loc atomic.Value
	loc.Store("/jobs/gone")
	h := newHarness(t, fakeapi.Config{}, map[string]http.HandlerFunc{"/widgets": acceptAt(&loc)})

	_, err := h.keyed.Get(context.Background(), "widgets")
	require.Error(t, err)
	assert.True(t, IsJobNotFound(err))
	assert.True(t, IsNotFound(err))
}

func TestAcceptedCallBoundedByPolicy(t *testing.T) {
	var loc atomic.Value
	h := newHarness(t, fakeapi.Config{}, map[string]http.HandlerFunc{"/widgets": acceptAt(&loc)},
		WithPollPolicy(PollPolicy{Interval: time.Millisecond, Multiplier: 1, MaxAttempts: 3}))
	loc.Store(h.fake.StartJob(fakeapi.Running()))

	_, err := h.keyed.Get(context.Background(), "widgets")
	require.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, 3, h.fake.Polls(loc.Load().(string)))
}

func TestDirectResponsePassesThrough(t *testing.T) {
	h := newHarness(t, fakeapi.Config{}, nil)

	resp, err := h.keyed.Get(context.Background(), "projects")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Location"), "poller not involved")

	resp, err = h.keyed.Get(context.Background(), "projects/missing")
	require.NoError(t, err, "unexpected statuses are the caller's to classify")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, IsNotFound(FromResponse(resp, "get project missing")))
}

func TestGetURIShorthand(t *testing.T) {
	h := newHarness(t, fakeapi.Config{}, nil)
	resp, err := h.keyed.Do(context.Background(), GetURI(h.srv.URL+"/projects"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestCallback(t *testing.T) {
	h := newHarness(t, fakeapi.Config{}, nil)

	type outcome struct {
		err  error
		resp *Response
	}
	done := make(chan outcome, 1)
	h.keyed.Request(context.Background(), Descriptor{Path: "projects"}, func(err error, resp *Response) {
		done <- outcome{err, resp}
	})
	select {
	case o := <-done:
		require.NoError(t, o.err)
		assert.Equal(t, http.StatusOK, o.resp.StatusCode)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestWrongClockIsRejectedByBackend(t *testing.T) {
	h := newHarness(t, fakeapi.Config{MaxSkew: time.Minute}, nil,
		WithClock(func() time.Time { return time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC) }))

	resp, err := h.keyed.Get(context.Background(), "projects")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNew_RejectsBadInput(t *testing.T) {
	good := *config.NewForTesting("http://example.invalid")

	bad := good
	bad.APIURL = "not-a-url"
	_, err := New(bad)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(good, WithPollPolicy(PollPolicy{Interval: time.Millisecond, Multiplier: 1}))
	assert.ErrorIs(t, err, ErrInvalidArgument, "unbounded policy")

	_, err = New(good, WithHTTPTimeout(0))
	assert.Error(t, err)

	_, err = New(good, WithQueue(0, 1))
	assert.Error(t, err)

	_, err = New(good, WithHTTPClient(nil))
	assert.Error(t, err)
}

func TestNew_CopiesConfig(t *testing.T) {
	cfg := *config.NewForTesting("http://example.invalid/api")
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	cfg.APIURL = "http://elsewhere.invalid/"
	assert.Equal(t, "http://example.invalid/api/", c.Config().APIURL)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("CINCO_API_URL", "http://example.invalid/v1")
	t.Setenv("CINCO_POLL_MAX_ATTEMPTS", "7")

	c, err := NewFromEnv()
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "http://example.invalid/v1/", c.Config().APIURL)
	assert.Equal(t, 7, c.policy.MaxAttempts)
}

func TestDebugLoggingFromEnv(t *testing.T) {
	t.Setenv("CINCO_DEBUG", "true")
	var buf strings.Builder
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	h := newHarness(t, fakeapi.Config{}, nil, WithLogger(l))

	_, err := h.keyed.Get(context.Background(), "projects")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "HTTP request")
	assert.Contains(t, buf.String(), "HTTP response")
}

func TestWithHTTPClientDoesNotMutateCaller(t *testing.T) {
	hc := &http.Client{}
	c, err := New(*config.NewForTesting("http://example.invalid"), WithHTTPClient(hc), WithDebugLogging(true))
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, hc.Transport)
	assert.IsType(t, &debugTransport{}, c.http.Transport)
}
