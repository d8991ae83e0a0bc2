package types

// ------------------------------
// Response Types
// ------------------------------

// ListProjectsResponse wraps the project listing.
type ListProjectsResponse struct {
	Projects []Project `json:"projects"`
	Count    int       `json:"count"`
}

// SearchOrganizationsResponse wraps an organization name search.
type SearchOrganizationsResponse struct {
	Organizations []Organization `json:"organizations"`
	Count         int            `json:"count"`
}

// TrustedKey is the body of the trusted credential endpoint.
type TrustedKey struct {
	KeyID  string `json:"keyId"`
	Secret string `json:"secret"`
}
