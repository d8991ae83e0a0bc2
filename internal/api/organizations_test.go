package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/types"
)

func TestGetOrganization(t *testing.T) {
	t.Parallel()
	do := reply(http.StatusOK, types.Organization{ID: "o1", Name: "Acme"})
	o, err := GetOrganization(context.Background(), do, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", o.Name)
	assert.Equal(t, "organizations/o1", do.last().Path)
}

func TestSearchOrganizations(t *testing.T) {
	t.Parallel()
	do := reply(http.StatusOK, types.SearchOrganizationsResponse{Organizations: []types.Organization{{ID: "o1"}}, Count: 1})
	orgs, err := SearchOrganizations(context.Background(), do, "Acme Corp")
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
	assert.Equal(t, "organizations?name=Acme+Corp", do.last().Path)

	_, err = SearchOrganizations(context.Background(), do, "")
	assert.ErrorIs(t, err, cerrors.ErrInvalidArgument)
}
