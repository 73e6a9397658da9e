package store

import "errors"

// Sentinel errors returned by store methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrHandshakeNotFound is returned when a lookup or transition targets
	// a handshake id that does not exist in the store.
	ErrHandshakeNotFound = errors.New("handshake not found")

	// ErrNotPending is returned when a transition is attempted on a
	// handshake that is no longer in the pending state. The store never
	// overwrites a terminal state (last-writer-wins is not acceptable).
	ErrNotPending = errors.New("handshake is not pending")

	// ErrBlobNotFound is returned when a blob reference does not resolve
	// to any stored payload.
	ErrBlobNotFound = errors.New("blob not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// the SQLite-backed store when a SQL-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a result
	// row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan handshake row")
)
