package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aura-reserve/backend/internal/models"
)

// PostgreSQL error codes surfaced as integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapPgError translates driver errors into the model sentinels.
// what names the entity for the error message.
func MapPgError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%s: %s: %w", what, pgErr.ConstraintName, models.ErrIntegrityViolation)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// NotFound returns an ErrNotFound wrapped with the entity description.
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, models.ErrNotFound)
}
