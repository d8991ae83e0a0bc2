package poller

import (
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// Policy bounds and paces polling of one job. At least one of MaxAttempts or
// Timeout must be positive; an unbounded policy is rejected by Validate.
type Policy struct {
	Interval    time.Duration // delay before the second poll
	Multiplier  float64       // growth per poll; 1 keeps the delay fixed
	MaxInterval time.Duration // cap on the grown delay
	Jitter      float64       // randomization factor in [0, 1)
	MaxAttempts int           // polls issued before giving up; 0 means no cap
	Timeout     time.Duration // elapsed budget before giving up; 0 means no cap
}

// DefaultPolicy polls every 500ms for at most two minutes.
func DefaultPolicy() Policy {
	return Policy{
		Interval:    500 * time.Millisecond,
		Multiplier:  1,
		MaxInterval: 5 * time.Second,
		MaxAttempts: 240,
		Timeout:     2 * time.Minute,
	}
}

// Validate reports a policy that cannot be used.
func (p Policy) Validate() error {
	switch {
	case p.Interval <= 0:
		return fmt.Errorf("poll interval must be > 0")
	case p.Multiplier < 1:
		return fmt.Errorf("poll multiplier must be >= 1, got %v", p.Multiplier)
	case p.MaxInterval < 0:
		return fmt.Errorf("poll max interval must be >= 0")
	case p.Jitter < 0 || p.Jitter >= 1:
		return fmt.Errorf("poll jitter must be in [0,1), got %v", p.Jitter)
	case p.MaxAttempts < 0 || p.Timeout < 0:
		return fmt.Errorf("poll bounds must be >= 0")
	case p.MaxAttempts == 0 && p.Timeout == 0:
		return fmt.Errorf("unbounded poll policy: set max attempts or timeout")
	}
	return nil
}

func (p Policy) newBackOff() *backoff.ExponentialBackOff {
	maxInterval := p.MaxInterval
	if maxInterval < p.Interval {
		maxInterval = p.Interval
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Interval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxInterval = maxInterval
	b.MaxElapsedTime = p.Timeout
	b.Reset()
	return b
}
