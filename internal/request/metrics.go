package request

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinco_client",
			Name:      "requests_total",
			Help:      "Signed requests that received a response, by method and status class.",
		},
		[]string{"method", "code"},
	)

	transportErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinco_client",
			Name:      "transport_errors_total",
			Help:      "Signed requests that failed before a response arrived.",
		},
		[]string{"method"},
	)

	asyncJobsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cinco_client",
			Name:      "async_jobs_started_total",
			Help:      "Responses that answered 202 with a Location to poll.",
		},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinco_client",
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency of a single signed request.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func codeClass(status int) string { return strconv.Itoa(status/100) + "xx" }
