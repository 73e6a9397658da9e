// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"
	"time"

	"github.com/beapsec/beap-core/models"
)

// memoryHandshakeStore is the in-memory implementation of [HandshakeStore].
// It backs tests and ephemeral sessions; the SQLite store provides the
// persistent variant with identical transition semantics.
type memoryHandshakeStore struct {
	mu    sync.RWMutex
	items map[string]models.Handshake
}

// NewMemoryHandshakeStore constructs an empty in-memory [HandshakeStore].
func NewMemoryHandshakeStore() HandshakeStore {
	return &memoryHandshakeStore{items: make(map[string]models.Handshake)}
}

// Create implements [HandshakeStore].
func (s *memoryHandshakeStore) Create(_ context.Context, hs models.Handshake) (models.Handshake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[hs.ID] = hs
	return hs, nil
}

// Get implements [HandshakeStore].
func (s *memoryHandshakeStore) Get(_ context.Context, id string) (models.Handshake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hs, ok := s.items[id]
	if !ok {
		return models.Handshake{}, ErrHandshakeNotFound
	}
	return hs, nil
}

// Transition implements [HandshakeStore]. The check-and-set runs under the
// write lock, so concurrent transition attempts on the same id serialize and
// all but the first fail with [ErrNotPending].
func (s *memoryHandshakeStore) Transition(_ context.Context, id string, change StateChange) (models.Handshake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hs, ok := s.items[id]
	if !ok {
		return models.Handshake{}, ErrHandshakeNotFound
	}
	if hs.State != models.HandshakePending {
		return models.Handshake{}, ErrNotPending
	}

	hs.State = change.To
	hs.UpdatedAt = time.Now().UTC()
	if change.To == models.HandshakeAccepted {
		hs.PeerPublicKey = append([]byte(nil), change.PeerPublicKey...)
		hs.PeerFingerprint = change.PeerFingerprint
	}

	s.items[id] = hs
	return hs, nil
}

// ListByState implements [HandshakeStore].
func (s *memoryHandshakeStore) ListByState(_ context.Context, state models.HandshakeState) ([]models.Handshake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Handshake
	for _, hs := range s.items {
		if hs.State == state {
			out = append(out, hs)
		}
	}
	return out, nil
}
