package identity

import "context"

// Manager owns the local asymmetric keypair and derives the fingerprint.
// It is the sole mutator of identity state, and only during initial
// generation; from every caller's perspective the keypair is read-only
// after creation.
type Manager interface {
	// GetOrCreateIdentity returns the installation identity, generating
	// and persisting a keypair only when none is stored yet. Idempotent.
	// Fails with [ErrIdentityUnavailable] when the store cannot be read
	// or written.
	GetOrCreateIdentity(ctx context.Context) (*Identity, error)
}

// Store persists the identity private key encrypted at rest. Implementations
// must return [ErrNoStoredIdentity] when nothing has been persisted yet.
type Store interface {
	// LoadPrivateKey reads and decrypts the persisted private key.
	LoadPrivateKey(ctx context.Context) ([]byte, error)

	// SavePrivateKey encrypts and persists the private key.
	SavePrivateKey(ctx context.Context, privateKey []byte) error
}
