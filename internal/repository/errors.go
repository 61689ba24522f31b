package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup matches no row or cache entry.
var ErrNotFound = errors.New("not found")

// IsPermanent reports whether postgres rejected a row for its content, a data
// exception (class 22) or an integrity violation (class 23). Retrying such a
// row fails the same way.
func IsPermanent(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")
}
