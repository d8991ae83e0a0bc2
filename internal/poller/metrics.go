package poller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Terminal outcomes recorded per job.
const (
	outcomeResolved  = "resolved"
	outcomeFailed    = "failed"
	outcomeNotFound  = "not_found"
	outcomeTransport = "transport_error"
	outcomeTimeout   = "timeout"
	outcomeCanceled  = "canceled"
)

var (
	pollsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cinco_client",
			Subsystem: "poller",
			Name:      "polls_total",
			Help:      "Signed GET requests issued against job locations.",
		},
	)

	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinco_client",
			Subsystem: "poller",
			Name:      "jobs_total",
			Help:      "Async jobs by terminal outcome.",
		},
		[]string{"outcome"},
	)
)
