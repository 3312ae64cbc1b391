package postgres

import (
	"errors"
	"fmt"

	"crypto-payments/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// wrapWriteErr maps a unique violation to ports.ErrDuplicate so callers can treat
// it as "already exists".
func wrapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, ports.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
