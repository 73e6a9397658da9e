// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/beapsec/beap-core/internal/crypto"
	"github.com/beapsec/beap-core/internal/logger"
)

// Identity is the local installation identity. The private key handle stays
// inside this type; callers interact with it only through PublicKey,
// Fingerprint and SharedSecret.
type Identity struct {
	keys        *crypto.KeyPair
	fingerprint Fingerprint
}

// PublicKey returns a copy of the raw 32-byte X25519 public key.
func (i *Identity) PublicKey() []byte {
	return i.keys.PublicKey()
}

// Fingerprint returns the content hash of the public key.
func (i *Identity) Fingerprint() Fingerprint {
	return i.fingerprint
}

// SharedSecret computes the X25519 shared secret with a peer's public key.
// This is the only way the private key participates in any computation
// outside this package.
func (i *Identity) SharedSecret(peerPublic []byte) ([]byte, error) {
	return i.keys.SharedSecret(peerPublic)
}

// manager is the private implementation of [Manager].
type manager struct {
	store  Store
	logger *logger.Logger

	mu      sync.Mutex
	current *Identity
}

// NewManager constructs a [Manager] backed by the provided encrypted store.
func NewManager(store Store, log *logger.Logger) Manager {
	log.Debug().Msg("creating identity manager")
	return &manager{store: store, logger: log}
}

// GetOrCreateIdentity implements [Manager]. The first successful call loads
// or generates the keypair; subsequent calls return the cached identity
// without touching the store.
func (m *manager) GetOrCreateIdentity(ctx context.Context) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return m.current, nil
	}

	priv, err := m.store.LoadPrivateKey(ctx)
	switch {
	case err == nil:
		keys, kerr := crypto.NewKeyPairFromPrivate(priv)
		if kerr != nil {
			return nil, fmt.Errorf("%w: restore keypair: %w", ErrIdentityUnavailable, kerr)
		}
		m.current = newIdentity(keys)
		m.logger.Debug().
			Str("fingerprint", FormatShort(m.current.fingerprint)).
			Msg("loaded persisted identity")
		return m.current, nil

	case errors.Is(err, ErrNoStoredIdentity):
		// First run: generate and persist a fresh keypair.

	default:
		return nil, fmt.Errorf("%w: read identity store: %w", ErrIdentityUnavailable, err)
	}

	keys, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("%w: generate keypair: %w", ErrIdentityUnavailable, err)
	}
	if err := m.store.SavePrivateKey(ctx, keys.PrivateBytes()); err != nil {
		return nil, fmt.Errorf("%w: persist identity: %w", ErrIdentityUnavailable, err)
	}

	m.current = newIdentity(keys)
	m.logger.Info().
		Str("fingerprint", FormatShort(m.current.fingerprint)).
		Msg("generated new identity")
	return m.current, nil
}

func newIdentity(keys *crypto.KeyPair) *Identity {
	return &Identity{
		keys:        keys,
		fingerprint: NewFingerprint(keys.PublicKey()),
	}
}
