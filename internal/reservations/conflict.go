package reservations

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
)

// checkConflict reports whether iv collides with an active reservation on
// resourceID other than excludeID. The caller guarantees iv is valid and
// must hold the resource lock so the answer stays true until its write.
func checkConflict(ctx context.Context, tx store.ReservationTx, resourceID uuid.UUID, iv models.Interval, excludeID *uuid.UUID) error {
	conflict, err := tx.HasConflict(ctx, models.ConflictQuery{
		ResourceID: resourceID,
		Interval:   iv,
		ExcludeID:  excludeID,
	})
	if err != nil {
		return fmt.Errorf("check conflict: %w", err)
	}
	if conflict {
		return models.ErrBookingConflict
	}
	return nil
}

// HasConflict answers the conflict question outside of a write. It returns
// ErrInvalidInterval when end is not after start.
func (s *Service) HasConflict(ctx context.Context, resourceID uuid.UUID, iv models.Interval, excludeID *uuid.UUID) (bool, error) {
	if !iv.Valid() {
		return false, models.ErrInvalidInterval
	}
	var conflict bool
	err := s.repo.WithResourceLock(ctx, resourceID, func(ctx context.Context, tx store.ReservationTx) error {
		var err error
		conflict, err = tx.HasConflict(ctx, models.ConflictQuery{ResourceID: resourceID, Interval: iv, ExcludeID: excludeID})
		return err
	})
	return conflict, err
}
