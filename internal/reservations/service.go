// Package reservations owns the booking lifecycle: create, update, cancel
// and delete, each guarded by interval validation and the per-resource
// conflict check.
package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/events"
	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
	"github.com/aura-reserve/backend/internal/validate"
)

// Service is the reservation lifecycle manager.
type Service struct {
	repo     store.Reservations
	users    store.Users
	pub      events.Publisher
	validate *validate.Validator
	logger   *zap.Logger
}

// NewService creates a reservation service. pub may be nil.
func NewService(repo store.Reservations, users store.Users, pub events.Publisher, v *validate.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, users: users, pub: pub, validate: v, logger: logger}
}

// Create books a resource. It fails with ErrInvalidInterval when end is not
// after start and with ErrBookingConflict when an active reservation overlaps.
func (s *Service) Create(ctx context.Context, in models.CreateReservationInput) (*models.Reservation, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	iv := models.Interval{Start: in.StartTime.UTC(), End: in.EndTime.UTC()}
	if !iv.Valid() {
		return nil, models.ErrInvalidInterval
	}
	if in.UserID != nil {
		if _, err := s.users.GetByID(ctx, *in.UserID); err != nil {
			return nil, err
		}
	}

	r := &models.Reservation{
		ResourceID:     in.ResourceID,
		UserID:         in.UserID,
		StartTime:      iv.Start,
		EndTime:        iv.End,
		Status:         models.StatusConfirmed,
		Notes:          in.Notes,
		GuestLastName:  in.GuestLastName,
		GuestFirstName: in.GuestFirstName,
		GuestContact:   in.GuestContact,
	}
	err := s.repo.WithResourceLock(ctx, in.ResourceID, func(ctx context.Context, tx store.ReservationTx) error {
		if err := checkConflict(ctx, tx, r.ResourceID, iv, nil); err != nil {
			return err
		}
		return tx.Insert(ctx, r)
	})
	if err != nil {
		return nil, s.fail("create", in.ResourceID, err)
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", r.ID.String()),
		zap.String("resource_id", r.ResourceID.String()),
	)
	s.pub.Publish(ctx, models.NewReservationEvent(models.EventReservationCreated, *r))
	return r, nil
}

// Get returns one reservation.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns reservations matching every set filter field.
func (s *Service) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	return s.repo.List(ctx, filter)
}

// Update applies a partial update. The conflict check reruns only when the
// patch touches the interval and the resulting status still blocks booking;
// the reservation's own row never counts against it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated models.Reservation
	var previous models.Status
	err = s.repo.WithResourceLock(ctx, existing.ResourceID, func(ctx context.Context, tx store.ReservationTx) error {
		current, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous = current.Status
		if patch.Status != nil && !current.Status.CanTransitionTo(*patch.Status) {
			return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current.Status, *patch.Status)
		}
		if patch.TouchesInterval() {
			iv := patch.EffectiveInterval(*current)
			if !iv.Valid() {
				return models.ErrInvalidInterval
			}
			status := current.Status
			if patch.Status != nil {
				status = *patch.Status
			}
			if status.BlocksBooking() {
				if err := checkConflict(ctx, tx, current.ResourceID, iv, &current.ID); err != nil {
					return err
				}
			}
		}
		patch.Apply(current)
		if err := tx.Update(ctx, current); err != nil {
			return err
		}
		updated = *current
		return nil
	})
	if err != nil {
		return nil, s.fail("update", existing.ResourceID, err)
	}

	evType := models.EventReservationUpdated
	if updated.Status == models.StatusCancelled && previous != models.StatusCancelled {
		evType = models.EventReservationCancelled
	}
	s.pub.Publish(ctx, models.NewReservationEvent(evType, updated))
	return &updated, nil
}

// Cancel moves a reservation to cancelled. Cancelling twice is not an error.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.StatusCancelled {
		return existing, nil
	}
	r, err := s.repo.SetStatus(ctx, id, models.StatusCancelled)
	if err != nil {
		return nil, s.fail("cancel", existing.ResourceID, err)
	}
	s.logger.Info("reservation cancelled", zap.String("reservation_id", id.String()))
	s.pub.Publish(ctx, models.NewReservationEvent(models.EventReservationCancelled, *r))
	return r, nil
}

// Delete hard-deletes a reservation.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail("delete", existing.ResourceID, err)
	}
	s.pub.Publish(ctx, models.NewReservationEvent(models.EventReservationDeleted, *existing))
	return nil
}

// fail logs err at a level matching its kind and returns it unchanged.
func (s *Service) fail(op string, resourceID uuid.UUID, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.String("resource_id", resourceID.String()), zap.Error(err)}
	switch {
	case errors.Is(err, models.ErrBookingConflict):
		s.logger.Info("booking conflict", fields...)
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrInvalidInterval),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrIntegrityViolation):
		s.logger.Debug("reservation rejected", fields...)
	default:
		s.logger.Error("reservation store failure", fields...)
	}
	return err
}
