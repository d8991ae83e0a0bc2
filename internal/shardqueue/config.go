package shardqueue

import (
	"time"

	"github.com/rs/zerolog"
)

// Config groups all tunables. The client fills it from the CINCO_QUEUE_SHARDS,
// CINCO_QUEUE_SIZE and CINCO_ENQUEUE_TIMEOUT settings of internal/config.
type Config struct {
	Shards         int
	QueueSize      int
	EnqueueTimeout time.Duration

	// ErrorHandler is called synchronously after a Job returns a non‑nil error.
	// Leave nil if you do not care.
	ErrorHandler func(error)

	Logger *zerolog.Logger
}
