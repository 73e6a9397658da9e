package identity

import "errors"

var (
	// ErrIdentityUnavailable indicates that the encrypted identity store
	// could not be read or written. Fatal to the current operation and
	// never auto-retried.
	ErrIdentityUnavailable = errors.New("identity unavailable")

	// ErrNoStoredIdentity is returned by a [Store] when no identity has
	// been persisted yet. GetOrCreateIdentity treats it as a signal to
	// generate a fresh keypair.
	ErrNoStoredIdentity = errors.New("no stored identity")
)
