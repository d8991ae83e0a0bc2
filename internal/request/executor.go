// Package request issues signed CINCO requests and hands accepted-async
// responses (202 + Location) to the poller.
package request

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/poller"
	"github.com/communitybridge/cinco-client/internal/signature"
)

// RequestIDKey carries a per-request correlation id. It is not signed.
const RequestIDKey = "X-Request-Id"

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config wires an Executor.
type Config struct {
	HTTP   HTTPClient       // defaults to http.DefaultClient
	Root   string           // API root URL; a trailing / is added if missing
	Signer signature.Signer // zero value signs with the wall clock
	Poll   poller.Policy
	Log    zerolog.Logger
}

// Executor is stateless between calls and safe for concurrent use. Keys are
// supplied per call.
type Executor struct {
	http   HTTPClient
	root   *url.URL
	signer signature.Signer
	poller *poller.Poller
	log    zerolog.Logger
}

// New validates cfg and returns an Executor.
func New(cfg Config) (*Executor, error) {
	root, err := ParseRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	e := &Executor{
		http:   cfg.HTTP,
		root:   root,
		signer: cfg.Signer,
		log:    cfg.Log,
	}
	if e.http == nil {
		e.http = http.DefaultClient
	}
	p, err := poller.New(e, cfg.Poll, cfg.Log)
	if err != nil {
		return nil, err
	}
	e.poller = p
	return e, nil
}

// ParseRoot parses an absolute API root and normalizes it to end with /.
func ParseRoot(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, cerrors.InvalidArgument("api root %q: %v", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, cerrors.InvalidArgument("api root %q must be an absolute URL", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u, nil
}

// Root returns a copy of the normalized API root.
func (e *Executor) Root() *url.URL {
	u := *e.root
	return &u
}

// Resolve returns the absolute URL d targets.
func (e *Executor) Resolve(d Descriptor) (*url.URL, error) {
	switch {
	case d.Path != "" && d.URI != "":
		return nil, cerrors.InvalidArgument("request: both path and uri set")
	case d.Path != "":
		ref, err := url.Parse(strings.TrimPrefix(d.Path, "/"))
		if err != nil {
			return nil, cerrors.InvalidArgument("request path %q: %v", d.Path, err)
		}
		return e.root.ResolveReference(ref), nil
	case d.URI != "":
		ref, err := url.Parse(d.URI)
		if err != nil {
			return nil, cerrors.InvalidArgument("request uri %q: %v", d.URI, err)
		}
		if ref.IsAbs() {
			return ref, nil
		}
		return e.root.ResolveReference(ref), nil
	default:
		return nil, cerrors.InvalidArgument("request: path or uri required")
	}
}

// Execute signs and sends d. A 202 carrying a Location is resolved by polling
// and returned as a 200 whose body is the job result. Every other response is
// returned as-is; deciding whether it is a success is up to the caller.
func (e *Executor) Execute(ctx context.Context, key signature.Key, d Descriptor) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := e.Resolve(d)
	if err != nil {
		return nil, err
	}

	resp, err := e.send(ctx, key, d.method(), target, d.Body, d.Headers)
	if err != nil {
		return nil, err
	}

	loc := resp.Header.Get("Location")
	if resp.StatusCode != http.StatusAccepted || loc == "" {
		return resp, nil
	}

	jobURL, err := target.Parse(loc)
	if err != nil {
		return nil, &cerrors.Error{
			Kind:       cerrors.KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    "unparseable job location " + loc,
			Cause:      err,
		}
	}
	asyncJobsTotal.Inc()
	e.log.Debug().Str("method", d.method()).Str("url", target.String()).Str("location", jobURL.String()).Msg("request accepted, polling job")

	result, err := e.poller.Poll(ctx, key, jobURL.String())
	if err != nil {
		return nil, err
	}
	hdr := make(http.Header)
	hdr.Set("Content-Type", "application/json")
	hdr.Set("Content-Location", jobURL.String())
	return &Response{StatusCode: http.StatusOK, Header: hdr, Body: result}, nil
}

// Fetch implements poller.Fetcher with a single signed GET.
func (e *Executor) Fetch(ctx context.Context, key signature.Key, location string) (int, []byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return 0, nil, cerrors.InvalidArgument("job location %q: %v", location, err)
	}
	if !u.IsAbs() {
		u = e.root.ResolveReference(u)
	}
	resp, err := e.send(ctx, key, http.MethodGet, u, nil, nil)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, resp.Body, nil
}

func (e *Executor) send(ctx context.Context, key signature.Key, method string, u *url.URL, body []byte, extra http.Header) (*Response, error) {
	sig, err := e.signer.Sign(key, method, u.RequestURI(), body)
	if err != nil {
		return nil, err
	}

	var rdr io.Reader
	if len(body) > 0 {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, cerrors.InvalidArgument("build request: %v", err)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := req.Header.Get(RequestIDKey)
	if reqID == "" {
		reqID = uuid.NewString()
		req.Header.Set(RequestIDKey, reqID)
	}
	sig.Apply(req.Header)

	log := e.log.With().Str("method", method).Str("url", u.String()).Str("request_id", reqID).Logger()
	start := time.Now()
	httpResp, err := e.http.Do(req)
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug().Err(ctxErr).Msg("request canceled")
			return nil, ctxErr
		}
		transportErrorsTotal.WithLabelValues(method).Inc()
		log.Debug().Err(err).Msg("request failed")
		return nil, cerrors.Transport(method+" "+u.String(), err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		transportErrorsTotal.WithLabelValues(method).Inc()
		return nil, cerrors.Transport("read "+method+" "+u.String(), err)
	}
	requestsTotal.WithLabelValues(method, codeClass(httpResp.StatusCode)).Inc()
	log.Debug().Int("status_code", httpResp.StatusCode).Dur("elapsed", time.Since(start)).Msg("response received")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}
