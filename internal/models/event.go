package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a reservation lifecycle change.
type EventType string

const (
	EventReservationCreated   EventType = "reservation.created"
	EventReservationUpdated   EventType = "reservation.updated"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationDeleted   EventType = "reservation.deleted"
)

// ReservationEvent records one change to a reservation. Snapshot holds the
// reservation as it was after the change (before it, for deletes).
type ReservationEvent struct {
	ID            uuid.UUID   `json:"id"`
	Type          EventType   `json:"type"`
	ReservationID uuid.UUID   `json:"reservation_id"`
	ResourceID    uuid.UUID   `json:"resource_id"`
	Snapshot      Reservation `json:"snapshot"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// NewReservationEvent builds an event for r stamped with the current time.
func NewReservationEvent(t EventType, r Reservation) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.New(),
		Type:          t,
		ReservationID: r.ID,
		ResourceID:    r.ResourceID,
		Snapshot:      r,
		OccurredAt:    time.Now().UTC(),
	}
}
