package resources

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
)

// Repository handles resource persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a resources repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ store.Resources = (*Repository)(nil)

const resourceColumns = `id, organization_id, name, type, capacity, created_at, updated_at`

func scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	err := row.Scan(&res.ID, &res.OrganizationID, &res.Name, &res.Type, &res.Capacity, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create inserts a resource.
func (r *Repository) Create(ctx context.Context, res *models.Resource) error {
	const q = `INSERT INTO resources (organization_id, name, type, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, res.OrganizationID, res.Name, res.Type, res.Capacity).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	return store.MapPgError(err, "resource")
}

// GetByID returns a resource by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	res, err := scanResource(r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id))
	if err != nil {
		return nil, store.MapPgError(err, "resource "+id.String())
	}
	return res, nil
}

// List returns resources, optionally restricted to one organization.
func (r *Repository) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	const q = `SELECT ` + resourceColumns + ` FROM resources
		WHERE ($1::uuid IS NULL OR organization_id = $1)
		ORDER BY name, id`
	rows, err := r.pool.Query(ctx, q, filter.OrganizationID)
	if err != nil {
		return nil, store.MapPgError(err, "list resources")
	}
	defer rows.Close()
	list := []models.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

// Update writes the mutable fields.
func (r *Repository) Update(ctx context.Context, res *models.Resource) error {
	const q = `UPDATE resources SET name = $2, type = $3, capacity = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, res.ID, res.Name, res.Type, res.Capacity).Scan(&res.UpdatedAt)
	return store.MapPgError(err, "resource "+res.ID.String())
}

// Delete removes a resource; reservations follow via ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return store.MapPgError(err, "delete resource")
	}
	if tag.RowsAffected() == 0 {
		return store.NotFound("resource " + id.String())
	}
	return nil
}
