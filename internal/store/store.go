// Package store contains the PostgreSQL persistence layer. Each entity
// gets its own store type holding a *sql.DB; queries use plain SQL with
// positional parameters and small scan helpers.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by stores. Services translate these into
// their caller-facing taxonomy.
var (
	// ErrDuplicateSlug is returned when an insert violates the
	// (parent_id, slug) uniqueness constraint on folders.
	ErrDuplicateSlug = errors.New("duplicate folder slug")

	// ErrCorruptTree is returned when a tree walk exceeds the defensive
	// depth cap, which can only happen if the folder data is corrupted.
	ErrCorruptTree = errors.New("folder tree exceeds depth cap")
)

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// placeholders returns "$start, $start+1, ..." for n parameters, for
// building IN clauses. database/sql has no native slice expansion.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// idArgs converts a slice of UUIDs into []any for variadic query args.
func idArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
