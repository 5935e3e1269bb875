package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicado is returned when an insert violates a unique constraint
// (e.g. a second apertura "abierta" for the same usuario hitting the
// partial unique index). Services map it to their own conflict errors.
var ErrDuplicado = errors.New("registro duplicado")

func esViolacionUnicidad(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
