package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// User is a platform principal identified by its Linux Foundation id.
type User struct {
	ID        string    `json:"id"`
	LfID      string    `json:"lfId"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	Calendar  string    `json:"calendar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project is a member project managed through the console.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Type           string    `json:"type,omitempty"`
	Status         string    `json:"status,omitempty"`
	URL            string    `json:"url,omitempty"`
	Managers       []string  `json:"managers,omitempty"`
	OrganizationID string    `json:"organizationId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Organization is a member company.
type Organization struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Domain  string `json:"domain,omitempty"`
	Country string `json:"country,omitempty"`
	LogoRef string `json:"logoRef,omitempty"`
}
