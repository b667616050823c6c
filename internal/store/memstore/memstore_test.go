package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
)

type fixture struct {
	st   *Store
	org  models.Organization
	res  models.Resource
	user models.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := New()

	org := models.Organization{Name: "Acme"}
	require.NoError(t, st.Organizations().Create(ctx, &org))
	res := models.Resource{OrganizationID: org.ID, Name: "Room 1"}
	require.NoError(t, st.Resources().Create(ctx, &res))
	user := models.User{Email: "ann@example.com", Role: models.RoleUser, OrganizationID: &org.ID}
	require.NoError(t, st.Users().Create(ctx, &user))

	return fixture{st: st, org: org, res: res, user: user}
}

func (f fixture) book(t *testing.T, userID *uuid.UUID, startHour, endHour int) models.Reservation {
	t.Helper()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	r := models.Reservation{
		ResourceID: f.res.ID,
		UserID:     userID,
		StartTime:  day.Add(time.Duration(startHour) * time.Hour),
		EndTime:    day.Add(time.Duration(endHour) * time.Hour),
		Status:     models.StatusConfirmed,
	}
	err := f.st.Reservations().WithResourceLock(context.Background(), f.res.ID, func(ctx context.Context, tx store.ReservationTx) error {
		return tx.Insert(ctx, &r)
	})
	require.NoError(t, err)
	return r
}

func TestOrganizations_UniqueName(t *testing.T) {
	f := newFixture(t)
	dup := models.Organization{Name: "Acme"}
	err := f.st.Organizations().Create(context.Background(), &dup)
	assert.ErrorIs(t, err, models.ErrIntegrityViolation)
}

func TestDeleteOrganization_Cascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.book(t, &f.user.ID, 10, 11)

	require.NoError(t, f.st.Organizations().Delete(ctx, f.org.ID))

	_, err := f.st.Resources().GetByID(ctx, f.res.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.st.Users().GetByID(ctx, f.user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.st.Reservations().GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteResource_RemovesItsReservations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.book(t, nil, 10, 11)

	require.NoError(t, f.st.Resources().Delete(ctx, f.res.ID))

	_, err := f.st.Reservations().GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.st.Organizations().GetByID(ctx, f.org.ID)
	assert.NoError(t, err)
}

func TestDeleteUser_DetachesReservations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.book(t, &f.user.ID, 10, 11)

	require.NoError(t, f.st.Users().Delete(ctx, f.user.ID))

	got, err := f.st.Reservations().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
}

func TestUsers_UniqueEmailAndOrgReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	dup := models.User{Email: f.user.Email, Role: models.RoleUser}
	assert.ErrorIs(t, f.st.Users().Create(ctx, &dup), models.ErrIntegrityViolation)

	missing := uuid.New()
	orphan := models.User{Email: "bob@example.com", Role: models.RoleUser, OrganizationID: &missing}
	assert.ErrorIs(t, f.st.Users().Create(ctx, &orphan), models.ErrIntegrityViolation)
}

func TestResources_RequireOrganization(t *testing.T) {
	res := models.Resource{OrganizationID: uuid.New(), Name: "Orphan"}
	err := New().Resources().Create(context.Background(), &res)
	assert.ErrorIs(t, err, models.ErrIntegrityViolation)
}

func TestWithResourceLock_DiscardsWritesOnError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("boom")

	var inserted models.Reservation
	err := f.st.Reservations().WithResourceLock(ctx, f.res.ID, func(ctx context.Context, tx store.ReservationTx) error {
		inserted = models.Reservation{
			ResourceID: f.res.ID,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(time.Hour),
			Status:     models.StatusConfirmed,
		}
		if err := tx.Insert(ctx, &inserted); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = f.st.Reservations().GetByID(ctx, inserted.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestWithResourceLock_UnknownResource(t *testing.T) {
	err := New().Reservations().WithResourceLock(context.Background(), uuid.New(), func(context.Context, store.ReservationTx) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReservationTx_HasConflictSeesStagedRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := f.book(t, nil, 10, 12)

	err := f.st.Reservations().WithResourceLock(ctx, f.res.ID, func(ctx context.Context, tx store.ReservationTx) error {
		q := models.ConflictQuery{ResourceID: f.res.ID, Interval: existing.Interval()}
		conflict, err := tx.HasConflict(ctx, q)
		require.NoError(t, err)
		assert.True(t, conflict)

		// A staged cancellation frees the slot within the same transaction.
		cancelled := existing
		cancelled.Status = models.StatusCancelled
		require.NoError(t, tx.Update(ctx, &cancelled))
		conflict, err = tx.HasConflict(ctx, q)
		require.NoError(t, err)
		assert.False(t, conflict)
		return nil
	})
	require.NoError(t, err)
}

func TestReservations_ListIsOrderedByStart(t *testing.T) {
	f := newFixture(t)
	late := f.book(t, nil, 14, 15)
	early := f.book(t, nil, 8, 9)

	list, err := f.st.Reservations().List(context.Background(), models.ReservationFilter{ResourceID: &f.res.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)
}

func TestHistory_AppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := New()
	r := models.Reservation{ID: uuid.New(), ResourceID: uuid.New(), Status: models.StatusConfirmed}

	created := models.NewReservationEvent(models.EventReservationCreated, r)
	require.NoError(t, st.History().Append(ctx, created))
	require.NoError(t, st.History().Append(ctx, created))

	cancelled := models.NewReservationEvent(models.EventReservationCancelled, r)
	cancelled.OccurredAt = created.OccurredAt.Add(time.Second)
	require.NoError(t, st.History().Append(ctx, cancelled))

	list, err := st.History().ListByReservation(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.EventReservationCreated, list[0].Type)
	assert.Equal(t, models.EventReservationCancelled, list[1].Type)
}
