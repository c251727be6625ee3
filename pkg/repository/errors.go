package repository

import (
	"database/sql"
	"errors"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/optigate/pkg/faults"
)

const pgDuplicateKeyCode = "23505"

// PostgreSQL codes raised when concurrent transactions collide:
// serialization_failure, deadlock_detected, lock_not_available.
var pgConflictCodes = []string{"40001", "40P01", "55P03"}

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr, PostgreSQL unique violation (23505)
// to duplicateErr, and transaction collisions to a faults.ErrConflict error.
// Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgDuplicateKeyCode {
			return duplicateErr
		}
		if slices.Contains(pgConflictCodes, pgErr.Code) {
			return faults.Conflict("concurrent modification, retry the request (%s)", pgErr.Code).With(pgErr.Code)
		}
	}

	return err
}
