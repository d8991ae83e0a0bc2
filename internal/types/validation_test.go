package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"u-1", false},
		{"", true},
		{"   ", true},
		{"a/b", true},
		{"a?b", true},
		{"a#b", true},
	}
	for _, tt := range tests {
		err := ValidateID("user", tt.id)
		if tt.wantErr {
			assert.True(t, cerrors.KindOf(err) == cerrors.KindInvalidArgument, "id %q: %v", tt.id, err)
		} else {
			assert.NoError(t, err, "id %q", tt.id)
		}
	}
}

func TestCreateUserRequestValidate(t *testing.T) {
	assert.NoError(t, CreateUserRequest{LfID: "jdoe", Email: "j@example.org"}.Validate())
	assert.Error(t, CreateUserRequest{Email: "j@example.org"}.Validate())
	assert.Error(t, CreateUserRequest{LfID: "jdoe", Email: "nope"}.Validate())
}

func TestCreateProjectRequestValidate(t *testing.T) {
	assert.NoError(t, CreateProjectRequest{Name: "Zephyr"}.Validate())
	assert.ErrorIs(t, CreateProjectRequest{}.Validate(), cerrors.ErrInvalidArgument)
}
