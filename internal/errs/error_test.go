package errs_test

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/bookwyrm/catalog/internal/errs"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	require.NoError(t, errs.Classify(nil))
	require.ErrorIs(t, errs.Classify(sql.ErrNoRows), errs.ErrNotFound)

	// undefined column is a bug in query construction, not a transport hiccup
	undefinedColumn := &pgconn.PgError{Code: "42703", Message: `column "publisher" does not exist`}
	require.ErrorIs(t, errs.Classify(undefinedColumn), errs.ErrInvalidQuery)

	connFailure := &pgconn.PgError{Code: "08006", Message: "connection failure"}
	require.ErrorIs(t, errs.Classify(connFailure), errs.ErrTransport)

	require.ErrorIs(t, errs.Classify(errors.New("dial tcp: timeout")), errs.ErrTransport)

	// wrapped causes still classify
	require.ErrorIs(t, errs.Classify(errors.Wrap(sql.ErrNoRows, "get book")), errs.ErrNotFound)
}
