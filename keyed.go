package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/communitybridge/cinco-client/internal/api"
	"github.com/communitybridge/cinco-client/internal/request"
	"github.com/communitybridge/cinco-client/internal/shardqueue"
)

// KeyedClient signs every call with one key. The zero value is not usable;
// obtain one from Client.WithKey.
type KeyedClient struct {
	key Key
	c   *Client
}

// Result is the outcome of an enqueued call.
type Result struct {
	Response *Response
	Err      error
}

// Key returns the signing key.
func (k KeyedClient) Key() Key { return k.key }

// Do signs and sends d. Jobs are polled to completion. Any other response is
// returned unchanged whatever its status; use FromResponse to classify one
// the caller did not expect.
func (k KeyedClient) Do(ctx context.Context, d Descriptor) (*Response, error) {
	return k.c.exec.Execute(ctx, k.key, d)
}

// Get issues a signed GET for path.
func (k KeyedClient) Get(ctx context.Context, path string) (*Response, error) {
	return k.Do(ctx, Descriptor{Method: http.MethodGet, Path: path})
}

// Post sends body encoded as JSON. A nil body sends no payload.
func (k KeyedClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	return k.send(ctx, http.MethodPost, path, body)
}

// Put sends body encoded as JSON.
func (k KeyedClient) Put(ctx context.Context, path string, body any) (*Response, error) {
	return k.send(ctx, http.MethodPut, path, body)
}

// Delete issues a signed DELETE, with body when non-nil.
func (k KeyedClient) Delete(ctx context.Context, path string, body any) (*Response, error) {
	return k.send(ctx, http.MethodDelete, path, body)
}

func (k KeyedClient) send(ctx context.Context, method, path string, body any) (*Response, error) {
	d, err := request.JSON(method, path, body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return k.Do(ctx, d)
}

// Request runs d in the background and invokes done exactly once with the
// outcome.
func (k KeyedClient) Request(ctx context.Context, d Descriptor, done func(error, *Response)) {
	go func() {
		resp, err := k.Do(ctx, d)
		done(err, resp)
	}()
}

// Enqueue queues d behind earlier enqueued calls to the same resource path.
// The channel receives exactly one Result. ErrBackPressure is returned when
// the shard stays full for the configured enqueue timeout.
func (k KeyedClient) Enqueue(ctx context.Context, d Descriptor) (<-chan Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shard, err := k.c.shardKey(d)
	if err != nil {
		return nil, err
	}

	out := make(chan Result, 1)
	job := shardqueue.JobFunc(func(context.Context) error {
		resp, err := k.Do(ctx, d)
		out <- Result{Response: resp, Err: err}
		return err
	})
	// The queue must not drop the job on cancellation, or out would never be
	// fed; Do observes ctx itself.
	if err := k.c.queue.Submit(context.WithoutCancel(ctx), shard, job); err != nil {
		err = k.c.mapQueueErr(err)
		enqueueFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	requestsEnqueuedTotal.Inc()
	return out, nil
}

func (c *Client) mapQueueErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shardqueue.ErrQueueFull):
		return fmt.Errorf("%w: %w", ErrBackPressure, err)
	case errors.Is(err, shardqueue.ErrExecutorClosed):
		return ErrClosed
	}
	return err
}

// --------------------------------------------------------------------
// Users - delegated to internal/api
// --------------------------------------------------------------------

// GetUser retrieves a user by ID.
func (k KeyedClient) GetUser(ctx context.Context, userID string) (*User, error) {
	return api.GetUser(ctx, k, userID)
}

// CreateUser registers a user. ErrUserExists reports a duplicate lfId.
func (k KeyedClient) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	return api.CreateUser(ctx, k, req)
}

// UpdateUser replaces the mutable fields of a user.
func (k KeyedClient) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*User, error) {
	return api.UpdateUser(ctx, k, userID, req)
}

// DeleteUser removes a user. The backend answers 204 No Content on success.
func (k KeyedClient) DeleteUser(ctx context.Context, userID string) error {
	return api.DeleteUser(ctx, k, userID)
}

// GetUserProjects lists the projects a user manages.
func (k KeyedClient) GetUserProjects(ctx context.Context, userID string) ([]Project, error) {
	return api.GetUserProjects(ctx, k, userID)
}

// --------------------------------------------------------------------
// Projects - delegated to internal/api
// --------------------------------------------------------------------

// GetProject retrieves a project by ID.
func (k KeyedClient) GetProject(ctx context.Context, projectID string) (*Project, error) {
	return api.GetProject(ctx, k, projectID)
}

// ListProjects returns all projects.
func (k KeyedClient) ListProjects(ctx context.Context) ([]Project, error) {
	return api.ListProjects(ctx, k)
}

// CreateProject creates a project, waiting for the job when the backend
// accepts the call asynchronously.
func (k KeyedClient) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	return api.CreateProject(ctx, k, req)
}

// DeleteProject removes a project.
func (k KeyedClient) DeleteProject(ctx context.Context, projectID string) error {
	return api.DeleteProject(ctx, k, projectID)
}

// --------------------------------------------------------------------
// Organizations - delegated to internal/api
// --------------------------------------------------------------------

// GetOrganization retrieves an organization by ID.
func (k KeyedClient) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	return api.GetOrganization(ctx, k, orgID)
}

// SearchOrganizations finds organizations by name.
func (k KeyedClient) SearchOrganizations(ctx context.Context, name string) ([]Organization, error) {
	return api.SearchOrganizations(ctx, k, name)
}
