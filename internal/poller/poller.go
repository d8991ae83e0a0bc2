// Package poller resolves asynchronous CINCO operations. A backend that
// accepts work with 202 + Location exposes a job resource at that location;
// the poller re-reads it until the job reaches a terminal state.
//
// States: POLLING → POLLING | RESOLVED | FAILED | TRANSPORT_ERROR. Each Poll
// call owns its own timer and shares no mutable state with other calls.
package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/signature"
)

// Job status values reported by the backend. Any other value is a terminal
// success.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusRunning    = "RUNNING"
	StatusError      = "ERROR"
)

// Job is the resource served at a poll location.
type Job struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Fetcher issues one signed GET against location and returns the raw
// response. A non-nil error is a transport failure and ends polling.
type Fetcher interface {
	Fetch(ctx context.Context, key signature.Key, location string) (status int, body []byte, err error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc func(ctx context.Context, key signature.Key, location string) (int, []byte, error)

// Fetch implements Fetcher for FetcherFunc.
func (f FetcherFunc) Fetch(ctx context.Context, key signature.Key, location string) (int, []byte, error) {
	return f(ctx, key, location)
}

// Poller polls job locations according to a Policy.
type Poller struct {
	fetch  Fetcher
	policy Policy
	log    zerolog.Logger
}

// New validates policy and returns a Poller.
func New(fetch Fetcher, policy Policy, log zerolog.Logger) (*Poller, error) {
	if fetch == nil {
		return nil, cerrors.InvalidArgument("poller: nil fetcher")
	}
	if err := policy.Validate(); err != nil {
		return nil, cerrors.InvalidArgument("poller: %v", err)
	}
	return &Poller{fetch: fetch, policy: policy, log: log}, nil
}

// Policy returns the policy the poller was built with.
func (p *Poller) Policy() Policy { return p.policy }

// Poll reads location until the job resolves and returns the job's result.
// It returns ctx.Err() when ctx ends first; no further poll is scheduled.
func (p *Poller) Poll(ctx context.Context, key signature.Key, location string) (json.RawMessage, error) {
	log := p.log.With().Str("location", location).Logger()
	b := p.policy.newBackOff()
	started := time.Now()

	for polls := 1; ; polls++ {
		pollsTotal.Inc()
		status, body, err := p.fetch.Fetch(ctx, key, location)
		if err != nil {
			if ctx.Err() != nil {
				jobsTotal.WithLabelValues(outcomeCanceled).Inc()
				return nil, ctx.Err()
			}
			jobsTotal.WithLabelValues(outcomeTransport).Inc()
			log.Error().Err(err).Int("polls", polls).Msg("job poll failed")
			return nil, err
		}

		switch status {
		case http.StatusOK:
		case http.StatusNotFound:
			jobsTotal.WithLabelValues(outcomeNotFound).Inc()
			log.Info().Int("polls", polls).Msg("job not found")
			return nil, cerrors.JobNotFound(location)
		default:
			jobsTotal.WithLabelValues(outcomeFailed).Inc()
			return nil, cerrors.FromResponse(status, body, "poll job "+location)
		}

		var job Job
		if err := json.Unmarshal(body, &job); err != nil {
			jobsTotal.WithLabelValues(outcomeFailed).Inc()
			return nil, &cerrors.Error{
				Kind:     cerrors.KindAsyncJob,
				Message:  "malformed job resource",
				Location: location,
				Body:     string(body),
				Cause:    err,
			}
		}

		switch job.Status {
		case StatusNotStarted, StatusRunning:
			log.Debug().Str("status", job.Status).Int("polls", polls).Msg("job pending")
		case StatusError:
			jobsTotal.WithLabelValues(outcomeFailed).Inc()
			log.Info().Int("polls", polls).Str("error", job.Error).Msg("job failed")
			return nil, cerrors.JobFailed(location, job.Error)
		default:
			jobsTotal.WithLabelValues(outcomeResolved).Inc()
			log.Info().Str("status", job.Status).Int("polls", polls).Dur("elapsed", time.Since(started)).Msg("job resolved")
			return job.Result, nil
		}

		if p.policy.MaxAttempts > 0 && polls >= p.policy.MaxAttempts {
			jobsTotal.WithLabelValues(outcomeTimeout).Inc()
			return nil, cerrors.PollTimeout(location, polls, nil)
		}
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			jobsTotal.WithLabelValues(outcomeTimeout).Inc()
			return nil, cerrors.PollTimeout(location, polls, nil)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			jobsTotal.WithLabelValues(outcomeCanceled).Inc()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
