package store

import (
	"context"

	"github.com/beapsec/beap-core/models"
)

// HandshakeStore persists handshake records and is the only writer of their
// state. Implementations must make Transition atomic with respect to
// concurrent transition attempts on the same handshake id: an attempt on a
// non-pending handshake fails with [ErrNotPending], it never silently
// overwrites.
type HandshakeStore interface {
	// Create persists a new handshake record and returns it.
	Create(ctx context.Context, hs models.Handshake) (models.Handshake, error)

	// Get returns the handshake with the given id, or [ErrHandshakeNotFound].
	Get(ctx context.Context, id string) (models.Handshake, error)

	// Transition moves a pending handshake to a terminal state, recording
	// the peer key material only when the target state is
	// [models.HandshakeAccepted]. Returns the updated record,
	// [ErrHandshakeNotFound] for an unknown id, or [ErrNotPending] when the
	// handshake already left the pending state.
	Transition(ctx context.Context, id string, change StateChange) (models.Handshake, error)

	// ListByState returns all handshakes currently in the given state.
	ListByState(ctx context.Context, state models.HandshakeState) ([]models.Handshake, error)
}

// BlobStore persists opaque encrypted payloads keyed by reference. The
// attachment pipeline writes encrypted originals here; nothing in the core
// ever stores plaintext attachment bytes.
type BlobStore interface {
	// Put stores data under ref, overwriting any previous payload.
	Put(ctx context.Context, ref string, data []byte) error

	// Get returns the payload stored under ref, or [ErrBlobNotFound].
	Get(ctx context.Context, ref string) ([]byte, error)
}

// StateChange describes one handshake transition. PeerPublicKey and
// PeerFingerprint are consulted only when To is [models.HandshakeAccepted].
type StateChange struct {
	To              models.HandshakeState
	PeerPublicKey   []byte
	PeerFingerprint string
}
