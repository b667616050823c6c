package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the reservation lifecycle state.
type Status string

const (
	// StatusPending is declared for future approval flows; no current operation produces it.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// BlocksBooking reports whether a reservation in this state occupies its interval.
// Cancelled reservations never block.
func (s Status) BlocksBooking() bool {
	return s != StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Nothing leaves cancelled except cancelled itself.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}
	return s != StatusCancelled || next == StatusCancelled
}

// Reservation is a time-bounded claim on a resource by a user or an anonymous guest.
type Reservation struct {
	ID             uuid.UUID  `json:"id"`
	ResourceID     uuid.UUID  `json:"resource_id"`
	UserID         *uuid.UUID `json:"user_id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Status         Status     `json:"status"`
	Notes          *string    `json:"notes"`
	GuestLastName  *string    `json:"guest_last_name"`
	GuestFirstName *string    `json:"guest_first_name"`
	GuestContact   *string    `json:"guest_contact"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Interval returns the reservation's [start, end) range.
func (r Reservation) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// CreateReservationInput is the validated input for booking a resource.
type CreateReservationInput struct {
	ResourceID     uuid.UUID  `json:"resource_id" validate:"required"`
	UserID         *uuid.UUID `json:"user_id"`
	StartTime      time.Time  `json:"start_time" validate:"required"`
	EndTime        time.Time  `json:"end_time" validate:"required"`
	Notes          *string    `json:"notes" validate:"omitempty,max=500"`
	GuestLastName  *string    `json:"guest_last_name" validate:"omitempty,max=100"`
	GuestFirstName *string    `json:"guest_first_name" validate:"omitempty,max=100"`
	GuestContact   *string    `json:"guest_contact" validate:"omitempty,max=255"`
}

// ReservationPatch holds the fields a partial update may change. Interval
// and status are never null; the free-text fields may be cleared.
type ReservationPatch struct {
	StartTime      *time.Time       `json:"start_time"`
	EndTime        *time.Time       `json:"end_time"`
	Status         *Status          `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes          Nullable[string] `json:"notes" validate:"omitempty,max=500"`
	GuestLastName  Nullable[string] `json:"guest_last_name" validate:"omitempty,max=100"`
	GuestFirstName Nullable[string] `json:"guest_first_name" validate:"omitempty,max=100"`
	GuestContact   Nullable[string] `json:"guest_contact" validate:"omitempty,max=255"`
}

// TouchesInterval reports whether the patch supplies start_time or end_time.
func (p ReservationPatch) TouchesInterval() bool {
	return p.StartTime != nil || p.EndTime != nil
}

// EffectiveInterval returns the interval r would have after the patch.
func (p ReservationPatch) EffectiveInterval(r Reservation) Interval {
	iv := r.Interval()
	if p.StartTime != nil {
		iv.Start = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		iv.End = p.EndTime.UTC()
	}
	return iv
}

// Apply copies supplied fields onto r.
func (p ReservationPatch) Apply(r *Reservation) {
	iv := p.EffectiveInterval(*r)
	r.StartTime, r.EndTime = iv.Start, iv.End
	if p.Status != nil {
		r.Status = *p.Status
	}
	p.Notes.applyTo(&r.Notes)
	p.GuestLastName.applyTo(&r.GuestLastName)
	p.GuestFirstName.applyTo(&r.GuestFirstName)
	p.GuestContact.applyTo(&r.GuestContact)
}

// ReservationFilter narrows ListReservations. Set fields combine with AND.
type ReservationFilter struct {
	ResourceID    *uuid.UUID
	UserID        *uuid.UUID
	Start         *time.Time // keep reservations ending after Start
	End           *time.Time // keep reservations starting before End
	GuestLastName *string
}

// Match reports whether r satisfies every set constraint.
func (f ReservationFilter) Match(r Reservation) bool {
	if f.ResourceID != nil && r.ResourceID != *f.ResourceID {
		return false
	}
	if f.UserID != nil && (r.UserID == nil || *r.UserID != *f.UserID) {
		return false
	}
	if f.Start != nil && !r.EndTime.After(*f.Start) {
		return false
	}
	if f.End != nil && !r.StartTime.Before(*f.End) {
		return false
	}
	if f.GuestLastName != nil && (r.GuestLastName == nil || *r.GuestLastName != *f.GuestLastName) {
		return false
	}
	return true
}

// ConflictQuery describes a candidate booking to test against existing reservations.
type ConflictQuery struct {
	ResourceID uuid.UUID
	Interval   Interval
	ExcludeID  *uuid.UUID
}

// Collides reports whether existing blocks the candidate: same resource,
// not the excluded row, still active, and overlapping.
func (q ConflictQuery) Collides(existing Reservation) bool {
	if existing.ResourceID != q.ResourceID {
		return false
	}
	if q.ExcludeID != nil && existing.ID == *q.ExcludeID {
		return false
	}
	return existing.Status.BlocksBooking() && existing.Interval().Overlaps(q.Interval)
}
