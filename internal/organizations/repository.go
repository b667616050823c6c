package organizations

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
)

// Repository handles organization persistence. Cascades to resources, users
// and reservations are enforced by foreign keys.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ store.Organizations = (*Repository)(nil)

// Create creates an organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, org.Name).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	return store.MapPgError(err, "organization")
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, created_at, updated_at FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, store.MapPgError(err, "organization "+id.String())
	}
	return &org, nil
}

// List returns all organizations ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM organizations ORDER BY name`)
	if err != nil {
		return nil, store.MapPgError(err, "list organizations")
	}
	defer rows.Close()
	list := []models.Organization{}
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Update writes the mutable fields.
func (r *Repository) Update(ctx context.Context, org *models.Organization) error {
	const q = `UPDATE organizations SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, org.ID, org.Name).Scan(&org.UpdatedAt)
	return store.MapPgError(err, "organization "+org.ID.String())
}

// Delete removes an organization.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return store.MapPgError(err, "delete organization")
	}
	if tag.RowsAffected() == 0 {
		return store.NotFound("organization " + id.String())
	}
	return nil
}
