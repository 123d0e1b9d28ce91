package errs

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by single-record lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery marks malformed filter/sort input. Seeing it at
	// runtime is a programmer error, not a user condition.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTransport marks network, auth or service failures talking to
	// the hosted table. Surfaced verbatim, never retried here.
	ErrTransport = errors.New("transport failure")
)

// Classify maps a database error onto the package taxonomy, keeping the
// cause in the chain. Nil and row-absence pass through untouched so
// callers can decide whether absence is an error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsSyntaxErrororAccessRuleViolation(pgErr.Code),
			pgerrcode.IsDataException(pgErr.Code):
			return pkgerrors.Wrap(ErrInvalidQuery, pgErr.Message)
		default:
			return pkgerrors.Wrap(ErrTransport, pgErr.Message)
		}
	}
	return pkgerrors.Wrap(ErrTransport, err.Error())
}
