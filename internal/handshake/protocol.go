// SPDX-License-Identifier: Apache-2.0

package handshake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/internal/store"
	"github.com/beapsec/beap-core/internal/utils"
	"github.com/beapsec/beap-core/models"
)

// protocol is the private implementation of [Protocol].
type protocol struct {
	store  store.HandshakeStore
	ids    *utils.UUIDGenerator
	logger *logger.Logger
}

// NewProtocol constructs a [Protocol] over the given handshake store.
func NewProtocol(hsStore store.HandshakeStore, log *logger.Logger) Protocol {
	log.Debug().Msg("creating handshake protocol")
	return &protocol{
		store:  hsStore,
		ids:    utils.NewUUIDGenerator(),
		logger: log,
	}
}

// CreateRequest implements [Protocol]. CreatedAt is truncated to whole
// seconds so the canonical encoding survives a decode/encode round-trip
// byte-identically.
func (p *protocol) CreateRequest(id *identity.Identity, displayName, email, message string) (models.HandshakeRequest, error) {
	if id == nil {
		return models.HandshakeRequest{}, ErrIdentityNotLoaded
	}

	return models.HandshakeRequest{
		SenderFingerprint: id.Fingerprint().Hex(),
		SenderPublicKey:   id.PublicKey(),
		SenderDisplayName: displayName,
		SenderEmail:       email,
		Message:           message,
		CreatedAt:         time.Now().UTC().Truncate(time.Second),
	}, nil
}

// RecordPendingOutgoing implements [Protocol]. The peer's fingerprint and
// public key stay empty until the counterpart response is accepted.
func (p *protocol) RecordPendingOutgoing(ctx context.Context, req models.HandshakeRequest, recipientLabel, localKeyID string) (models.Handshake, error) {
	now := time.Now().UTC()
	hs := models.Handshake{
		ID:         p.ids.Generate(),
		PeerLabel:  recipientLabel,
		State:      models.HandshakePending,
		LocalKeyID: localKeyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := p.store.Create(ctx, hs)
	if err != nil {
		return models.Handshake{}, fmt.Errorf("record pending handshake: %w", err)
	}

	logger.FromContext(ctx).Debug().
		Str("handshake_id", created.ID).
		Str("recipient", recipientLabel).
		Msg("recorded pending outgoing handshake")
	return created, nil
}

// Accept implements [Protocol].
func (p *protocol) Accept(ctx context.Context, handshakeID string, peerPublicKey []byte) (models.Handshake, error) {
	if len(peerPublicKey) != 32 {
		return models.Handshake{}, fmt.Errorf("peer public key must be 32 bytes, got %d", len(peerPublicKey))
	}

	fp := identity.NewFingerprint(peerPublicKey)
	hs, err := p.store.Transition(ctx, handshakeID, store.StateChange{
		To:              models.HandshakeAccepted,
		PeerPublicKey:   peerPublicKey,
		PeerFingerprint: fp.Hex(),
	})
	if err != nil {
		return models.Handshake{}, mapStoreError(err)
	}

	logger.FromContext(ctx).Info().
		Str("handshake_id", handshakeID).
		Str("peer_fingerprint", identity.FormatShort(fp)).
		Msg("handshake accepted")
	return hs, nil
}

// Reject implements [Protocol].
func (p *protocol) Reject(ctx context.Context, handshakeID string) (models.Handshake, error) {
	hs, err := p.store.Transition(ctx, handshakeID, store.StateChange{To: models.HandshakeRejected})
	if err != nil {
		return models.Handshake{}, mapStoreError(err)
	}
	return hs, nil
}

// Expire implements [Protocol].
func (p *protocol) Expire(ctx context.Context, handshakeID string) (models.Handshake, error) {
	hs, err := p.store.Transition(ctx, handshakeID, store.StateChange{To: models.HandshakeExpired})
	if err != nil {
		return models.Handshake{}, mapStoreError(err)
	}
	return hs, nil
}

// ListAccepted implements [Protocol].
func (p *protocol) ListAccepted(ctx context.Context) ([]models.Handshake, error) {
	return p.store.ListByState(ctx, models.HandshakeAccepted)
}

// Get implements [Protocol].
func (p *protocol) Get(ctx context.Context, handshakeID string) (models.Handshake, error) {
	hs, err := p.store.Get(ctx, handshakeID)
	if err != nil {
		return models.Handshake{}, mapStoreError(err)
	}
	return hs, nil
}

// mapStoreError translates store-level errors into protocol business errors.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrHandshakeNotFound):
		return ErrHandshakeNotFound
	case errors.Is(err, store.ErrNotPending):
		return ErrInvalidTransition
	default:
		return err
	}
}
