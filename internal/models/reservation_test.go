package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStatus_Transitions(t *testing.T) {
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusPending))
	assert.True(t, StatusCancelled.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusPending))
	assert.False(t, StatusConfirmed.CanTransitionTo(Status("archived")))
}

func TestStatus_BlocksBooking(t *testing.T) {
	assert.True(t, StatusPending.BlocksBooking())
	assert.True(t, StatusConfirmed.BlocksBooking())
	assert.False(t, StatusCancelled.BlocksBooking())
}

func TestConflictQuery_Collides(t *testing.T) {
	resource := uuid.New()
	existing := Reservation{ID: uuid.New(), ResourceID: resource, StartTime: at(60), EndTime: at(120), Status: StatusConfirmed}

	q := ConflictQuery{ResourceID: resource, Interval: Interval{Start: at(90), End: at(150)}}
	assert.True(t, q.Collides(existing))

	other := q
	other.ResourceID = uuid.New()
	assert.False(t, other.Collides(existing), "different resource")

	self := q
	self.ExcludeID = &existing.ID
	assert.False(t, self.Collides(existing), "excluded row")

	cancelled := existing
	cancelled.Status = StatusCancelled
	assert.False(t, q.Collides(cancelled), "cancelled rows never block")

	adjacent := ConflictQuery{ResourceID: resource, Interval: Interval{Start: at(120), End: at(180)}}
	assert.False(t, adjacent.Collides(existing))
}

func TestReservationPatch_UnmarshalDistinguishesNullFromAbsent(t *testing.T) {
	r := Reservation{
		StartTime:     at(0),
		EndTime:       at(60),
		Status:        StatusConfirmed,
		Notes:         strPtr("window seat"),
		GuestLastName: strPtr("Smith"),
	}

	var patch ReservationPatch
	require.NoError(t, json.Unmarshal([]byte(`{"notes": null, "guest_first_name": "Ann"}`), &patch))
	assert.False(t, patch.TouchesInterval())
	assert.True(t, patch.Notes.Set)
	assert.False(t, patch.Notes.Valid)
	assert.False(t, patch.GuestLastName.Set)

	patch.Apply(&r)
	assert.Nil(t, r.Notes)
	require.NotNil(t, r.GuestLastName)
	assert.Equal(t, "Smith", *r.GuestLastName)
	require.NotNil(t, r.GuestFirstName)
	assert.Equal(t, "Ann", *r.GuestFirstName)
	assert.Equal(t, at(0), r.StartTime)
	assert.Equal(t, StatusConfirmed, r.Status)
}

func TestReservationPatch_EffectiveInterval(t *testing.T) {
	r := Reservation{StartTime: at(0), EndTime: at(60)}
	end := at(90)
	patch := ReservationPatch{EndTime: &end}
	assert.True(t, patch.TouchesInterval())
	assert.Equal(t, Interval{Start: at(0), End: at(90)}, patch.EffectiveInterval(r))
}

func TestReservationFilter_Match(t *testing.T) {
	resource, user := uuid.New(), uuid.New()
	r := Reservation{
		ResourceID:    resource,
		UserID:        &user,
		StartTime:     at(60),
		EndTime:       at(120),
		GuestLastName: strPtr("Smith"),
	}

	assert.True(t, ReservationFilter{}.Match(r))
	assert.True(t, ReservationFilter{ResourceID: &resource, UserID: &user}.Match(r))

	other := uuid.New()
	assert.False(t, ReservationFilter{ResourceID: &other}.Match(r))
	assert.False(t, ReservationFilter{UserID: &other}.Match(r))

	start := at(120)
	assert.False(t, ReservationFilter{Start: &start}.Match(r), "ends exactly at the lower bound")
	start = at(119)
	assert.True(t, ReservationFilter{Start: &start}.Match(r))

	end := at(60)
	assert.False(t, ReservationFilter{End: &end}.Match(r), "starts exactly at the upper bound")
	end = at(61)
	assert.True(t, ReservationFilter{End: &end}.Match(r))

	assert.True(t, ReservationFilter{GuestLastName: strPtr("Smith")}.Match(r))
	assert.False(t, ReservationFilter{GuestLastName: strPtr("Jones")}.Match(r))
	assert.False(t, ReservationFilter{GuestLastName: strPtr("Smith")}.Match(Reservation{}))
}

func TestResourcePatch_ClearsOptionalFields(t *testing.T) {
	capacity := 4
	res := Resource{Name: "R1", Type: strPtr("room"), Capacity: &capacity}

	var patch ResourcePatch
	require.NoError(t, json.Unmarshal([]byte(`{"capacity": null, "name": "R2"}`), &patch))
	patch.Apply(&res)

	assert.Equal(t, "R2", res.Name)
	assert.Nil(t, res.Capacity)
	require.NotNil(t, res.Type)
	assert.Equal(t, "room", *res.Type)
}
