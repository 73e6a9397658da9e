package handshake

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/internal/store"
	"github.com/beapsec/beap-core/models"
)

// memStore is an in-memory identity store for wiring a real identity manager
// in protocol tests.
type memStore struct{ key []byte }

func (s *memStore) LoadPrivateKey(_ context.Context) ([]byte, error) {
	if s.key == nil {
		return nil, identity.ErrNoStoredIdentity
	}
	return s.key, nil
}

func (s *memStore) SavePrivateKey(_ context.Context, key []byte) error {
	s.key = append([]byte(nil), key...)
	return nil
}

func testIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.NewManager(&memStore{}, logger.Nop()).GetOrCreateIdentity(context.Background())
	require.NoError(t, err)
	return id
}

func newTestProtocol() Protocol {
	return NewProtocol(store.NewMemoryHandshakeStore(), logger.Nop())
}

func TestCreateRequest_BindsCurrentIdentity(t *testing.T) {
	id := testIdentity(t)
	p := newTestProtocol()

	req, err := p.CreateRequest(id, "Alice", "alice@example.com", "hello")
	require.NoError(t, err)

	assert.Equal(t, id.Fingerprint().Hex(), req.SenderFingerprint)
	assert.Equal(t, id.PublicKey(), req.SenderPublicKey)
	assert.Equal(t, "Alice", req.SenderDisplayName)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Zero(t, req.CreatedAt.Nanosecond(), "createdAt must be truncated to whole seconds")
}

func TestCreateRequest_NilIdentity(t *testing.T) {
	p := newTestProtocol()

	_, err := p.CreateRequest(nil, "Alice", "", "hello")
	assert.ErrorIs(t, err, ErrIdentityNotLoaded)
}

func TestCreateRequest_RoundTripsThroughWire(t *testing.T) {
	id := testIdentity(t)
	p := newTestProtocol()

	req, err := p.CreateRequest(id, "Alice", "", "hello")
	require.NoError(t, err)

	data, err := EncodeRequest(req)
	require.NoError(t, err)

	got, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestRecordPendingOutgoing(t *testing.T) {
	id := testIdentity(t)
	p := newTestProtocol()
	ctx := context.Background()

	req, err := p.CreateRequest(id, "Alice", "", "hello")
	require.NoError(t, err)

	hs, err := p.RecordPendingOutgoing(ctx, req, "bob@example.com", "local-key-1")
	require.NoError(t, err)

	assert.NotEmpty(t, hs.ID)
	assert.Equal(t, models.HandshakePending, hs.State)
	assert.Equal(t, "bob@example.com", hs.PeerLabel)
	assert.Equal(t, "local-key-1", hs.LocalKeyID)
	assert.Empty(t, hs.PeerPublicKey, "peer key is unknown while pending")
}

func TestAccept_RecordsPeerKeyAndFingerprint(t *testing.T) {
	p := newTestProtocol()
	ctx := context.Background()

	hs, err := p.RecordPendingOutgoing(ctx, models.HandshakeRequest{}, "bob", "k1")
	require.NoError(t, err)

	peerKey := bytes.Repeat([]byte{0x99}, 32)
	accepted, err := p.Accept(ctx, hs.ID, peerKey)
	require.NoError(t, err)

	assert.Equal(t, models.HandshakeAccepted, accepted.State)
	assert.Equal(t, peerKey, accepted.PeerPublicKey)
	assert.Equal(t, identity.NewFingerprint(peerKey).Hex(), accepted.PeerFingerprint)
}

func TestAccept_RejectsBadKeyLength(t *testing.T) {
	p := newTestProtocol()
	ctx := context.Background()

	hs, err := p.RecordPendingOutgoing(ctx, models.HandshakeRequest{}, "bob", "k1")
	require.NoError(t, err)

	_, err = p.Accept(ctx, hs.ID, []byte{1, 2, 3})
	require.Error(t, err)

	// The handshake must remain pending after the failed attempt.
	got, err := p.Get(ctx, hs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HandshakePending, got.State)
}

func TestTransitions_OnlyFromPending(t *testing.T) {
	ctx := context.Background()
	peerKey := bytes.Repeat([]byte{0x77}, 32)

	type transition func(p Protocol, id string) error
	transitions := map[string]transition{
		"accept": func(p Protocol, id string) error { _, err := p.Accept(ctx, id, peerKey); return err },
		"reject": func(p Protocol, id string) error { _, err := p.Reject(ctx, id); return err },
		"expire": func(p Protocol, id string) error { _, err := p.Expire(ctx, id); return err },
	}

	for firstName, first := range transitions {
		for secondName, second := range transitions {
			p := newTestProtocol()
			hs, err := p.RecordPendingOutgoing(ctx, models.HandshakeRequest{}, "bob", "k1")
			require.NoError(t, err)

			require.NoError(t, first(p, hs.ID), "%s on pending", firstName)
			err = second(p, hs.ID)
			assert.ErrorIs(t, err, ErrInvalidTransition,
				"%s after %s must fail with ErrInvalidTransition", secondName, firstName)
		}
	}
}

func TestTransitions_UnknownHandshake(t *testing.T) {
	p := newTestProtocol()
	ctx := context.Background()

	_, err := p.Reject(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrHandshakeNotFound)
}

func TestListAccepted(t *testing.T) {
	p := newTestProtocol()
	ctx := context.Background()

	hs1, _ := p.RecordPendingOutgoing(ctx, models.HandshakeRequest{}, "bob", "k1")
	hs2, _ := p.RecordPendingOutgoing(ctx, models.HandshakeRequest{}, "carol", "k1")
	_, _ = p.RecordPendingOutgoing(ctx, models.HandshakeRequest{}, "dave", "k1")

	peerKey := bytes.Repeat([]byte{0x88}, 32)
	_, err := p.Accept(ctx, hs1.ID, peerKey)
	require.NoError(t, err)
	_, err = p.Reject(ctx, hs2.ID)
	require.NoError(t, err)

	accepted, err := p.ListAccepted(ctx)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, hs1.ID, accepted[0].ID)
}
