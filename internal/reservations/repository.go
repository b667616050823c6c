package reservations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
	"github.com/aura-reserve/backend/pkg/database"
)

// Repository handles reservation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reservations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ store.Reservations = (*Repository)(nil)

const reservationColumns = `id, resource_id, user_id, start_time, end_time, status, notes,
	guest_last_name, guest_first_name, guest_contact, created_at, updated_at`

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(&r.ID, &r.ResourceID, &r.UserID, &r.StartTime, &r.EndTime, &r.Status, &r.Notes,
		&r.GuestLastName, &r.GuestFirstName, &r.GuestContact, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.StartTime, r.EndTime = r.StartTime.UTC(), r.EndTime.UTC()
	return &r, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getReservation(ctx context.Context, q querier, id uuid.UUID) (*models.Reservation, error) {
	r, err := scanReservation(q.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		return nil, store.MapPgError(err, "reservation "+id.String())
	}
	return r, nil
}

// GetByID returns a reservation by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return getReservation(ctx, r.pool, id)
}

// List returns reservations matching every non-nil filter field, ordered by start time.
func (r *Repository) List(ctx context.Context, f models.ReservationFilter) ([]models.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
		WHERE ($1::uuid IS NULL OR resource_id = $1)
		  AND ($2::uuid IS NULL OR user_id = $2)
		  AND ($3::timestamptz IS NULL OR end_time > $3)
		  AND ($4::timestamptz IS NULL OR start_time < $4)
		  AND ($5::text IS NULL OR guest_last_name = $5)
		ORDER BY start_time, id`
	rows, err := r.pool.Query(ctx, q, f.ResourceID, f.UserID, f.Start, f.End, f.GuestLastName)
	if err != nil {
		return nil, store.MapPgError(err, "list reservations")
	}
	defer rows.Close()
	list := []models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

// SetStatus changes only the status column.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Reservation, error) {
	const q = `UPDATE reservations SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reservationColumns
	res, err := scanReservation(r.pool.QueryRow(ctx, q, id, status))
	if err != nil {
		return nil, store.MapPgError(err, "reservation "+id.String())
	}
	return res, nil
}

// Delete removes a reservation.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return store.MapPgError(err, "delete reservation")
	}
	if tag.RowsAffected() == 0 {
		return store.NotFound("reservation " + id.String())
	}
	return nil
}

// WithResourceLock opens a transaction, takes a row lock on the resource and
// runs fn. Concurrent writers for the same resource queue on that lock, so a
// conflict check inside fn stays valid until commit.
func (r *Repository) WithResourceLock(ctx context.Context, resourceID uuid.UUID, fn func(ctx context.Context, tx store.ReservationTx) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM resources WHERE id = $1 FOR UPDATE`, resourceID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.NotFound("resource " + resourceID.String())
			}
			return store.MapPgError(err, "lock resource")
		}
		return fn(ctx, &reservationTx{tx: tx})
	})
}

type reservationTx struct {
	tx pgx.Tx
}

func (t *reservationTx) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return getReservation(ctx, t.tx, id)
}

// HasConflict implements the half-open overlap test: existing.start < end AND existing.end > start.
func (t *reservationTx) HasConflict(ctx context.Context, q models.ConflictQuery) (bool, error) {
	const sql = `SELECT EXISTS (
		SELECT 1 FROM reservations
		WHERE resource_id = $1
		  AND status <> 'cancelled'
		  AND start_time < $3
		  AND end_time > $2
		  AND ($4::uuid IS NULL OR id <> $4)
	)`
	var exists bool
	err := t.tx.QueryRow(ctx, sql, q.ResourceID, q.Interval.Start, q.Interval.End, q.ExcludeID).Scan(&exists)
	if err != nil {
		return false, store.MapPgError(err, "conflict scan")
	}
	return exists, nil
}

func (t *reservationTx) Insert(ctx context.Context, r *models.Reservation) error {
	const q = `INSERT INTO reservations (resource_id, user_id, start_time, end_time, status, notes,
			guest_last_name, guest_first_name, guest_contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := t.tx.QueryRow(ctx, q, r.ResourceID, r.UserID, r.StartTime, r.EndTime, r.Status, r.Notes,
		r.GuestLastName, r.GuestFirstName, r.GuestContact).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	return store.MapPgError(err, "reservation")
}

func (t *reservationTx) Update(ctx context.Context, r *models.Reservation) error {
	const q = `UPDATE reservations SET start_time = $2, end_time = $3, status = $4, notes = $5,
			guest_last_name = $6, guest_first_name = $7, guest_contact = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := t.tx.QueryRow(ctx, q, r.ID, r.StartTime, r.EndTime, r.Status, r.Notes,
		r.GuestLastName, r.GuestFirstName, r.GuestContact).Scan(&r.UpdatedAt)
	return store.MapPgError(err, "reservation "+r.ID.String())
}
