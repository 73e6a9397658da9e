package handshake

import (
	"context"

	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/models"
)

// Protocol builds, records and transitions handshakes. It owns the handshake
// store and is its only writer; delivery of the serialized request to the
// peer is the caller's responsibility.
type Protocol interface {
	// CreateRequest binds the current identity's fingerprint and public key
	// at call time. Fails with [ErrIdentityNotLoaded] when id is nil.
	CreateRequest(id *identity.Identity, displayName, email, message string) (models.HandshakeRequest, error)

	// RecordPendingOutgoing creates a pending handshake keyed by a fresh id.
	// It does not block on the network: this core never reaches the peer.
	RecordPendingOutgoing(ctx context.Context, req models.HandshakeRequest, recipientLabel, localKeyID string) (models.Handshake, error)

	// Accept moves a pending handshake to accepted, recording the peer's
	// public key and its derived fingerprint. Fails with
	// [ErrInvalidTransition] if the handshake is not pending.
	Accept(ctx context.Context, handshakeID string, peerPublicKey []byte) (models.Handshake, error)

	// Reject moves a pending handshake to rejected.
	Reject(ctx context.Context, handshakeID string) (models.Handshake, error)

	// Expire moves a pending handshake to expired.
	Expire(ctx context.Context, handshakeID string) (models.Handshake, error)

	// ListAccepted returns all accepted handshakes. It is the only source
	// the capsule builder may use to resolve a private-mode recipient.
	ListAccepted(ctx context.Context) ([]models.Handshake, error)

	// Get returns one handshake by id.
	Get(ctx context.Context, handshakeID string) (models.Handshake, error)
}
