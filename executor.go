package client

import (
	"context"

	"github.com/communitybridge/cinco-client/internal/shardqueue"
)

// queue abstracts the keyed FIFO runner behind Enqueue and Flush.
type queue interface {
	Submit(context.Context, string, shardqueue.Job) error
	Barrier(context.Context, string) error
	Stop()
}
