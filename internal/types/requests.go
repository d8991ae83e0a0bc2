package types

// ------------------------------
// Request Types
// ------------------------------

// CreateUserRequest holds parameters for a new user.
type CreateUserRequest struct {
	LfID  string   `json:"lfId"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// UpdateUserRequest replaces the mutable fields of a user. Empty fields are
// left untouched by the backend.
type UpdateUserRequest struct {
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Calendar string   `json:"calendar,omitempty"`
}

// CreateProjectRequest holds parameters for a new project.
type CreateProjectRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Type           string   `json:"type,omitempty"`
	URL            string   `json:"url,omitempty"`
	Managers       []string `json:"managers,omitempty"`
	OrganizationID string   `json:"organizationId,omitempty"`
}
