package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/types"
)

// ErrUserExists is returned by CreateUser when the backend answers 409.
// The classified error stays reachable through errors.As.
var ErrUserExists = errors.New("user already exists")

func userPath(id string) string { return "users/" + url.PathEscape(id) }

// GetUser retrieves a user by ID.
func GetUser(ctx context.Context, do types.Doer, userID string) (*types.User, error) {
	if err := types.ValidateID("user", userID); err != nil {
		return nil, err
	}
	resp, err := call(ctx, do, get(userPath(userID)), "get user "+userID, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.User](resp, "get user "+userID)
}

// CreateUser registers a new user.
func CreateUser(ctx context.Context, do types.Doer, req types.CreateUserRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d, err := jsonDescriptor(http.MethodPost, "users", req)
	if err != nil {
		return nil, err
	}
	resp, err := call(ctx, do, d, "create user "+req.LfID, http.StatusCreated)
	if err != nil {
		if cerrors.IsConflict(err) {
			return nil, fmt.Errorf("%w: %w", ErrUserExists, err)
		}
		return nil, err
	}
	return decode[types.User](resp, "create user "+req.LfID)
}

// UpdateUser replaces the mutable fields of a user.
func UpdateUser(ctx context.Context, do types.Doer, userID string, req types.UpdateUserRequest) (*types.User, error) {
	if err := types.ValidateID("user", userID); err != nil {
		return nil, err
	}
	d, err := jsonDescriptor(http.MethodPut, userPath(userID), req)
	if err != nil {
		return nil, err
	}
	resp, err := call(ctx, do, d, "update user "+userID, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.User](resp, "update user "+userID)
}

// DeleteUser removes a user by ID.
func DeleteUser(ctx context.Context, do types.Doer, userID string) error {
	if err := types.ValidateID("user", userID); err != nil {
		return err
	}
	d := get(userPath(userID))
	d.Method = http.MethodDelete
	_, err := call(ctx, do, d, "delete user "+userID, http.StatusNoContent)
	return err
}

// GetUserProjects lists the projects a user manages.
func GetUserProjects(ctx context.Context, do types.Doer, userID string) ([]types.Project, error) {
	if err := types.ValidateID("user", userID); err != nil {
		return nil, err
	}
	op := "get projects of user " + userID
	resp, err := call(ctx, do, get(userPath(userID)+"/projects"), op, http.StatusOK)
	if err != nil {
		return nil, err
	}
	lr, err := decode[types.ListProjectsResponse](resp, op)
	if err != nil {
		return nil, err
	}
	return lr.Projects, nil
}
