// Package history keeps the append-only log of reservation changes.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
)

// Store persists reservation events.
type Store interface {
	Append(ctx context.Context, ev models.ReservationEvent) error
	ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]models.ReservationEvent, error)
}

// Repository is the PostgreSQL event log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// Append inserts an event. Replays of the same event id are ignored so
// retried jobs do not duplicate history.
func (r *Repository) Append(ctx context.Context, ev models.ReservationEvent) error {
	snapshot, err := json.Marshal(ev.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	const q = `INSERT INTO reservation_events (id, event_type, reservation_id, resource_id, snapshot, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`
	_, err = r.pool.Exec(ctx, q, ev.ID, ev.Type, ev.ReservationID, ev.ResourceID, snapshot, ev.OccurredAt)
	return store.MapPgError(err, "append reservation event")
}

// ListByReservation returns a reservation's events, oldest first.
func (r *Repository) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]models.ReservationEvent, error) {
	const q = `SELECT id, event_type, reservation_id, resource_id, snapshot, occurred_at
		FROM reservation_events
		WHERE reservation_id = $1
		ORDER BY occurred_at, id`
	rows, err := r.pool.Query(ctx, q, reservationID)
	if err != nil {
		return nil, store.MapPgError(err, "list reservation events")
	}
	defer rows.Close()
	list := []models.ReservationEvent{}
	for rows.Next() {
		var ev models.ReservationEvent
		var snapshot []byte
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.ReservationID, &ev.ResourceID, &snapshot, &ev.OccurredAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &ev.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", ev.ID, err)
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}
