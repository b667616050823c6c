package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's platform role. Authorization semantics live outside this service.
type Role string

const (
	RoleUser     Role = "user"
	RoleOrgAdmin Role = "org_admin"
	RoleAdmin    Role = "admin"
)

// User is an optional registered identity; reservations may carry guest fields instead.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FullName       *string    `json:"full_name"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	OrganizationID *uuid.UUID `json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateUserInput is the validated input for registering a user.
type CreateUserInput struct {
	Email          string     `json:"email" validate:"required,email,max=255"`
	Password       string     `json:"password" validate:"required,min=6,max=72"`
	FullName       *string    `json:"full_name" validate:"omitempty,max=255"`
	OrganizationID *uuid.UUID `json:"organization_id"`
	Role           *Role      `json:"role" validate:"omitempty,oneof=user org_admin admin"`
}

// UserPatch holds the fields a partial update may change. Password is
// plain text here; the service hashes it before Apply.
type UserPatch struct {
	FullName Nullable[string] `json:"full_name" validate:"omitempty,max=255"`
	Password *string          `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *Role            `json:"role" validate:"omitempty,oneof=user org_admin admin"`
}

// Apply copies supplied non-credential fields onto u.
func (p UserPatch) Apply(u *User) {
	p.FullName.applyTo(&u.FullName)
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	OrganizationID *uuid.UUID
}

// Match reports whether u satisfies every set constraint.
func (f UserFilter) Match(u User) bool {
	return f.OrganizationID == nil || (u.OrganizationID != nil && *u.OrganizationID == *f.OrganizationID)
}
