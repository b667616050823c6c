package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ store.Users = (*Repository)(nil)

const userColumns = `id, email, full_name, password_hash, role, organization_id, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.OrganizationID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (email, full_name, password_hash, role, organization_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, u.Email, u.FullName, u.PasswordHash, u.Role, u.OrganizationID).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return store.MapPgError(err, "user")
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, store.MapPgError(err, "user "+id.String())
	}
	return u, nil
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, store.MapPgError(err, "user")
	}
	return u, nil
}

// List returns users, optionally restricted to one organization.
func (r *Repository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users
		WHERE ($1::uuid IS NULL OR organization_id = $1)
		ORDER BY email`
	rows, err := r.pool.Query(ctx, q, filter.OrganizationID)
	if err != nil {
		return nil, store.MapPgError(err, "list users")
	}
	defer rows.Close()
	list := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

// Update writes the mutable fields.
func (r *Repository) Update(ctx context.Context, u *models.User) error {
	const q = `UPDATE users SET full_name = $2, password_hash = $3, role = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, u.ID, u.FullName, u.PasswordHash, u.Role).Scan(&u.UpdatedAt)
	return store.MapPgError(err, "user "+u.ID.String())
}

// Delete removes a user; reservations keep their row with user_id set to NULL.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return store.MapPgError(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return store.NotFound("user " + id.String())
	}
	return nil
}
