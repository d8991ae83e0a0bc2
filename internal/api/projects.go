package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/communitybridge/cinco-client/internal/types"
)

func projectPath(id string) string { return "projects/" + url.PathEscape(id) }

// GetProject retrieves a project by ID.
func GetProject(ctx context.Context, do types.Doer, projectID string) (*types.Project, error) {
	if err := types.ValidateID("project", projectID); err != nil {
		return nil, err
	}
	resp, err := call(ctx, do, get(projectPath(projectID)), "get project "+projectID, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.Project](resp, "get project "+projectID)
}

// ListProjects returns all projects visible to the key.
func ListProjects(ctx context.Context, do types.Doer) ([]types.Project, error) {
	resp, err := call(ctx, do, get("projects"), "list projects", http.StatusOK)
	if err != nil {
		return nil, err
	}
	lr, err := decode[types.ListProjectsResponse](resp, "list projects")
	if err != nil {
		return nil, err
	}
	return lr.Projects, nil
}

// CreateProject creates a project. The backend may answer 201 directly or
// accept the call as a job; a polled job result arrives here as a 200.
func CreateProject(ctx context.Context, do types.Doer, req types.CreateProjectRequest) (*types.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d, err := jsonDescriptor(http.MethodPost, "projects", req)
	if err != nil {
		return nil, err
	}
	resp, err := call(ctx, do, d, "create project "+req.Name, http.StatusCreated, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.Project](resp, "create project "+req.Name)
}

// DeleteProject removes a project by ID.
func DeleteProject(ctx context.Context, do types.Doer, projectID string) error {
	if err := types.ValidateID("project", projectID); err != nil {
		return err
	}
	d := get(projectPath(projectID))
	d.Method = http.MethodDelete
	_, err := call(ctx, do, d, "delete project "+projectID, http.StatusNoContent)
	return err
}
