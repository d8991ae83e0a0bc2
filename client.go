// Package client is the Go SDK for the CINCO platform API. Every call is
// signed with Signature Version 1 and calls the backend accepts as jobs
// (202 + Location) are polled to completion before returning.
package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/communitybridge/cinco-client/internal/config"
	"github.com/communitybridge/cinco-client/internal/poller"
	"github.com/communitybridge/cinco-client/internal/request"
	"github.com/communitybridge/cinco-client/internal/shardqueue"
	"github.com/communitybridge/cinco-client/internal/signature"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client holds the configuration and the stateless executor shared by every
// KeyedClient derived from it. It is safe for concurrent use.
type Client struct {
	cfg    config.Config
	http   *http.Client
	exec   *request.Executor
	queue  queue
	log    zerolog.Logger
	policy poller.Policy
	now    func() time.Time
	debug  bool

	queueCfg shardqueue.Config

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client from cfg. cfg is copied; later changes to the
// caller's value have no effect.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		log:    zerolog.Nop(),
		policy: cfg.PollPolicy(),
		debug:  cfg.Debug || debugLoggingRequested(),
		queueCfg: shardqueue.Config{
			Shards:         cfg.QueueShards,
			QueueSize:      cfg.QueueSize,
			EnqueueTimeout: cfg.EnqueueTimeout,
		},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.debug {
		c.http.Transport = newDebugTransport(c.http.Transport, c.log)
	}

	exec, err := request.New(request.Config{
		HTTP:   c.http,
		Root:   cfg.APIURL,
		Signer: signature.Signer{Now: c.now},
		Poll:   c.policy,
		Log:    c.log,
	})
	if err != nil {
		return nil, err
	}
	c.exec = exec

	log := c.log
	c.queueCfg.Logger = &log
	c.queueCfg.ErrorHandler = func(err error) {
		log.Debug().Err(err).Msg("queued request failed")
	}
	c.queue = shardqueue.NewShardExecutor(c.queueCfg)
	return c, nil
}

// NewFromEnv loads the configuration from CINCO_* environment variables.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	return New(*cfg, opts...)
}

// Config returns a copy of the resolved configuration.
func (c *Client) Config() config.Config { return c.cfg }

// WithKey binds key to the shared executor. The returned value is cheap to
// copy and safe for concurrent use.
func (c *Client) WithKey(key Key) KeyedClient {
	return KeyedClient{key: key, c: c}
}

// Flush blocks until every call enqueued for path before Flush has run.
func (c *Client) Flush(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := c.shardKey(request.Descriptor{Path: path})
	if err != nil {
		return err
	}
	return c.mapQueueErr(c.queue.Barrier(ctx, key))
}

// Close stops the request queue after draining it. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.queue.Stop()
	return nil
}

// shardKey is the resolved escaped path of d, so calls on one resource share
// a shard whichever way they were addressed.
func (c *Client) shardKey(d request.Descriptor) (string, error) {
	u, err := c.exec.Resolve(d)
	if err != nil {
		return "", err
	}
	return u.EscapedPath(), nil
}
