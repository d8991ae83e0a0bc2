package types

import (
	"context"
	"strings"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/request"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// Doer issues one signed call. The keyed client satisfies it.
type Doer interface {
	Do(ctx context.Context, d request.Descriptor) (*request.Response, error)
}

// ------------------------------
// Validation
// ------------------------------

// ValidateID rejects ids that would change the shape of a resource path.
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return cerrors.InvalidArgument("%s id is required", kind)
	}
	if strings.ContainsAny(id, "/?#") {
		return cerrors.InvalidArgument("%s id %q contains a path separator", kind, id)
	}
	return nil
}

// Validate checks the fields the backend requires.
func (r CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.LfID) == "" {
		return cerrors.InvalidArgument("lfId is required")
	}
	if !strings.Contains(r.Email, "@") {
		return cerrors.InvalidArgument("email %q is not an address", r.Email)
	}
	return nil
}

// Validate checks the fields the backend requires.
func (r CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return cerrors.InvalidArgument("project name is required")
	}
	return nil
}
