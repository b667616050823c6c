package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a bookable asset (room, table, equipment) owned by one organization.
type Resource struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Type           *string   `json:"type"`
	Capacity       *int      `json:"capacity"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateResourceInput is the validated input for creating a resource.
type CreateResourceInput struct {
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	Name           string    `json:"name" validate:"required,max=255"`
	Type           *string   `json:"type" validate:"omitempty,max=100"`
	Capacity       *int      `json:"capacity" validate:"omitempty,min=1"`
}

// ResourcePatch holds the fields a partial update may change. Type and
// capacity may be cleared with an explicit null.
type ResourcePatch struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Type     Nullable[string] `json:"type" validate:"omitempty,max=100"`
	Capacity Nullable[int]    `json:"capacity" validate:"omitempty,min=1"`
}

// Apply copies supplied fields onto res.
func (p ResourcePatch) Apply(res *Resource) {
	if p.Name != nil {
		res.Name = *p.Name
	}
	p.Type.applyTo(&res.Type)
	p.Capacity.applyTo(&res.Capacity)
}

// ResourceFilter narrows ListResources. A nil field means no constraint.
type ResourceFilter struct {
	OrganizationID *uuid.UUID
}

// Match reports whether res satisfies every set constraint.
func (f ResourceFilter) Match(res Resource) bool {
	return f.OrganizationID == nil || res.OrganizationID == *f.OrganizationID
}
