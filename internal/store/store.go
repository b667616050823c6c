// Package store declares the persistence contracts the services depend on.
// PostgreSQL implementations live next to each feature (repository.go);
// memstore provides an in-process implementation for tests and local runs.
//
// Every method returns an error wrapping models.ErrNotFound when the target
// id does not exist and models.ErrIntegrityViolation for key violations.
// Deletes enforce the cascade rules: organization -> resources and users,
// resource -> reservations, user -> reservations.user_id cleared.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/aura-reserve/backend/internal/models"
)

// Organizations persists organizations.
type Organizations interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	List(ctx context.Context) ([]models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Resources persists resources.
type Resources interface {
	Create(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
	Update(ctx context.Context, res *models.Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Users persists users.
type Users interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Reservations persists reservations. Writes that depend on the conflict
// check go through WithResourceLock so the check and the write observe the
// same state.
type Reservations interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// WithResourceLock runs fn in one unit of work holding an exclusive lock on
	// the resource row. It returns ErrNotFound when the resource does not exist.
	// The unit commits if fn returns nil and rolls back otherwise.
	WithResourceLock(ctx context.Context, resourceID uuid.UUID, fn func(ctx context.Context, tx ReservationTx) error) error
}

// ReservationTx is the view of the reservation table inside WithResourceLock.
type ReservationTx interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	HasConflict(ctx context.Context, q models.ConflictQuery) (bool, error)
	Insert(ctx context.Context, r *models.Reservation) error
	Update(ctx context.Context, r *models.Reservation) error
}

// Store bundles the repositories handed to services at startup.
type Store struct {
	Organizations Organizations
	Resources     Resources
	Users         Users
	Reservations  Reservations
}
