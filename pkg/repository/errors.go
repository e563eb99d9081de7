package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotUpdated is returned when a guarded update matched no row: the
	// document vanished, the day key is absent, or a predicate (version,
	// duplicate guard) rejected the write. Callers disambiguate by re-reading.
	ErrNotUpdated = errors.New("no rows updated")

	// ErrDuplicate is returned when a unique constraint rejected an insert.
	ErrDuplicate = errors.New("duplicate row")
)

// isUniqueViolation reports whether err is a postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
