package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization owns resources and users. Name is unique.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateOrganizationInput is the validated input for creating an organization.
type CreateOrganizationInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// OrganizationPatch holds the fields a partial update may change.
type OrganizationPatch struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

// Apply copies supplied fields onto org.
func (p OrganizationPatch) Apply(org *Organization) {
	if p.Name != nil {
		org.Name = *p.Name
	}
}
