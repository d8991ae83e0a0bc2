package client

import (
	"github.com/communitybridge/cinco-client/internal/config"
	"github.com/communitybridge/cinco-client/internal/poller"
	"github.com/communitybridge/cinco-client/internal/request"
	"github.com/communitybridge/cinco-client/internal/signature"
	"github.com/communitybridge/cinco-client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	Config     = config.Config
	Key        = signature.Key
	Descriptor = request.Descriptor
	Response   = request.Response
	PollPolicy = poller.Policy

	// Requests
	CreateUserRequest    = types.CreateUserRequest
	UpdateUserRequest    = types.UpdateUserRequest
	CreateProjectRequest = types.CreateProjectRequest

	// Domain entities
	User         = types.User
	Project      = types.Project
	Organization = types.Organization
)

// GetURI is the bare-URI shorthand for a GET descriptor.
func GetURI(uri string) Descriptor { return request.Get(uri) }

// DefaultPollPolicy polls every 500ms for at most two minutes.
func DefaultPollPolicy() PollPolicy { return poller.DefaultPolicy() }
