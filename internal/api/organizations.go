package api

import (
	"context"
	"net/http"
	"net/url"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/types"
)

// GetOrganization retrieves an organization by ID.
func GetOrganization(ctx context.Context, do types.Doer, orgID string) (*types.Organization, error) {
	if err := types.ValidateID("organization", orgID); err != nil {
		return nil, err
	}
	op := "get organization " + orgID
	resp, err := call(ctx, do, get("organizations/"+url.PathEscape(orgID)), op, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.Organization](resp, op)
}

// SearchOrganizations finds organizations whose name matches name.
func SearchOrganizations(ctx context.Context, do types.Doer, name string) ([]types.Organization, error) {
	if name == "" {
		return nil, cerrors.InvalidArgument("organization name is required")
	}
	q := url.Values{"name": []string{name}}
	op := "search organizations " + name
	resp, err := call(ctx, do, get("organizations?"+q.Encode()), op, http.StatusOK)
	if err != nil {
		return nil, err
	}
	sr, err := decode[types.SearchOrganizationsResponse](resp, op)
	if err != nil {
		return nil, err
	}
	return sr.Organizations, nil
}
