package client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cinco_client",
			Name:      "requests_enqueued_total",
			Help:      "Requests accepted into the shard queue.",
		},
	)

	enqueueFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinco_client",
			Name:      "enqueue_failures_total",
			Help:      "Requests the shard queue refused, by reason.",
		},
		[]string{"reason"},
	)
)

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrBackPressure):
		return "back_pressure"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "other"
	}
}
