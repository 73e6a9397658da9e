package capsule

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beapsec/beap-core/internal/crypto"
	"github.com/beapsec/beap-core/internal/handshake"
	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/internal/store"
	"github.com/beapsec/beap-core/models"
)

type memKeyStore struct{ key []byte }

func (s *memKeyStore) LoadPrivateKey(_ context.Context) ([]byte, error) {
	if s.key == nil {
		return nil, identity.ErrNoStoredIdentity
	}
	return s.key, nil
}

func (s *memKeyStore) SavePrivateKey(_ context.Context, key []byte) error {
	s.key = append([]byte(nil), key...)
	return nil
}

// harness wires a real identity manager and handshake protocol over
// in-memory stores, plus one accepted peer handshake.
type harness struct {
	builder  Builder
	identity *identity.Identity
	peerKeys *crypto.KeyPair
	accepted models.Handshake
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	ids := identity.NewManager(&memKeyStore{}, logger.Nop())
	id, err := ids.GetOrCreateIdentity(ctx)
	require.NoError(t, err)

	protocol := handshake.NewProtocol(store.NewMemoryHandshakeStore(), logger.Nop())
	pending, err := protocol.RecordPendingOutgoing(ctx, models.HandshakeRequest{}, "bob", "local-key-1")
	require.NoError(t, err)

	peerKeys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	accepted, err := protocol.Accept(ctx, pending.ID, peerKeys.PublicKey())
	require.NoError(t, err)

	return &harness{
		builder:  NewBuilder(ids, protocol, logger.Nop()),
		identity: id,
		peerKeys: peerKeys,
		accepted: accepted,
	}
}

func (h *harness) recipient() models.SelectedRecipient {
	return models.SelectedRecipient{
		HandshakeID:     h.accepted.ID,
		PeerFingerprint: h.accepted.PeerFingerprint,
	}
}

func twoPageAttachment(t *testing.T) CompletedAttachment {
	t.Helper()
	raw := models.RawAttachment{Name: "contract.pdf", MIME: "application/pdf", Data: []byte("%PDF-1.7 contract")}
	att := models.CapsuleAttachment{
		ID:                "att-1",
		OriginalName:      raw.Name,
		OriginalSize:      int64(len(raw.Data)),
		OriginalType:      raw.MIME,
		SemanticContent:   "contract text",
		SemanticExtracted: true,
		EncryptedRef:      "att-att-1",
		EncryptedHash:     "deadbeef",
		RasterProof: &models.RasterProof{
			DPI:      150,
			Complete: true,
			Pages: []models.RasterPageData{
				{Page: 1, MIME: "image/png", SHA256: "aa", Width: 612, Height: 792, Bytes: 3, Base64: "YWFh"},
				{Page: 2, MIME: "image/png", SHA256: "bb", Width: 612, Height: 792, Bytes: 3, Base64: "YmJi"},
			},
		},
	}
	return CompletedAttachment{Attachment: att, Raw: raw}
}

func TestBuild_PrivateWithoutEncryption(t *testing.T) {
	h := newHarness(t)

	res, err := h.builder.Build(context.Background(), PrivateConfig{
		DeliveryMethod:    models.DeliveryDownload,
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		MessageBody:       "please review",
		Recipient:         h.recipient(),
		Attachments:       []CompletedAttachment{twoPageAttachment(t)},
	})
	require.NoError(t, err)

	pkg := res.Package
	assert.Equal(t, models.RecipientPrivate, pkg.RecipientMode)
	require.NotNil(t, pkg.SelectedRecipient)
	assert.Equal(t, h.accepted.ID, pkg.SelectedRecipient.HandshakeID)
	assert.Nil(t, pkg.EncryptedMessage)
	assert.Len(t, pkg.RasterArtefacts, 2)
	assert.Equal(t, "att-1", pkg.RasterArtefacts[0].AttachmentID)
	assert.Equal(t, 1, pkg.RasterArtefacts[0].Page)
	assert.Equal(t, 2, pkg.RasterArtefacts[1].Page)

	// No capsule-bound encryption was used, so the builder must warn.
	require.NotEmpty(t, res.Advisories)
	assert.Contains(t, res.Advisories[0], "transport-level plaintext")
}

func TestBuild_PrivateEncryptsForPeer(t *testing.T) {
	h := newHarness(t)

	res, err := h.builder.Build(context.Background(), PrivateConfig{
		DeliveryMethod:    models.DeliveryEmail,
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		MessageBody:       "secret note",
		Recipient:         h.recipient(),
		EncryptMessage:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Package.EncryptedMessage)

	// The peer derives the same key from its side of the exchange.
	shared, err := h.peerKeys.SharedSecret(h.identity.PublicKey())
	require.NoError(t, err)
	key, err := crypto.DeriveMessageKey(shared)
	require.NoError(t, err)
	plain, err := crypto.OpenMessage(key, res.Package.EncryptedMessage)
	require.NoError(t, err)
	assert.Equal(t, "secret note", string(plain))

	for _, adv := range res.Advisories {
		assert.NotContains(t, adv, "transport-level plaintext")
	}
}

func TestBuild_PrivateNoRecipient(t *testing.T) {
	h := newHarness(t)

	// Missing recipient wins over the empty message body: validation order.
	_, err := h.builder.Build(context.Background(), PrivateConfig{
		SenderFingerprint: h.identity.Fingerprint().Hex(),
	})
	assert.ErrorIs(t, err, ErrNoRecipientSelected)
}

func TestBuild_PrivateRecipientNotAccepted(t *testing.T) {
	h := newHarness(t)

	_, err := h.builder.Build(context.Background(), PrivateConfig{
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		MessageBody:       "hi",
		Recipient:         models.SelectedRecipient{HandshakeID: "still-pending"},
	})
	assert.ErrorIs(t, err, ErrNoRecipientSelected)
}

func TestBuild_PrivateRecipientFingerprintMismatch(t *testing.T) {
	h := newHarness(t)

	sel := h.recipient()
	sel.PeerFingerprint = "0000000000000000000000000000000000000000000000000000000000000000"
	_, err := h.builder.Build(context.Background(), PrivateConfig{
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		MessageBody:       "hi",
		Recipient:         sel,
	})
	assert.ErrorIs(t, err, ErrNoRecipientSelected)
}

func TestBuild_EmptyMessage(t *testing.T) {
	h := newHarness(t)

	_, err := h.builder.Build(context.Background(), PrivateConfig{
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		Recipient:         h.recipient(),
	})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = h.builder.Build(context.Background(), PublicConfig{
		SenderFingerprint: h.identity.Fingerprint().Hex(),
	})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestBuild_StaleIdentity(t *testing.T) {
	h := newHarness(t)

	_, err := h.builder.Build(context.Background(), PrivateConfig{
		SenderFingerprint: "deadbeef",
		MessageBody:       "hi",
		Recipient:         h.recipient(),
	})
	assert.ErrorIs(t, err, ErrStaleIdentity)
}

func TestBuild_PartialPipelineResultStillBuilds(t *testing.T) {
	h := newHarness(t)

	raw := models.RawAttachment{Name: "broken.xyz", MIME: "application/octet-stream", Data: []byte{9, 9}}
	failed := CompletedAttachment{
		Raw: raw,
		Attachment: models.CapsuleAttachment{
			ID:               "att-2",
			OriginalName:     raw.Name,
			OriginalType:     raw.MIME,
			OriginalSize:     2,
			ProcessingErrors: []string{"parse: unsupported file type", "rasterize: unsupported file type"},
		},
	}

	res, err := h.builder.Build(context.Background(), PrivateConfig{
		DeliveryMethod:    models.DeliveryDownload,
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		MessageBody:       "see attached",
		Recipient:         h.recipient(),
		Attachments:       []CompletedAttachment{failed},
	})
	require.NoError(t, err, "attachment processing failures never fail the build")

	require.Len(t, res.Package.Attachments, 1)
	assert.Empty(t, res.Package.RasterArtefacts)
	require.Len(t, res.Package.OriginalFiles, 1)
	assert.Equal(t, "att-2", res.Package.OriginalFiles[0].AttachmentID)

	// Both stage failures plus the missing raster proof surface as advisories.
	joined := ""
	for _, adv := range res.Advisories {
		joined += adv + "\n"
	}
	assert.Contains(t, joined, "parse: unsupported file type")
	assert.Contains(t, joined, "rasterize: unsupported file type")
	assert.Contains(t, joined, "no raster proof")
}

func TestBuild_PublicPackage(t *testing.T) {
	h := newHarness(t)

	res, err := h.builder.Build(context.Background(), PublicConfig{
		DeliveryMethod:    models.DeliveryMessenger,
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		MessageBody:       "open letter",
		Attachments:       []CompletedAttachment{twoPageAttachment(t)},
	})
	require.NoError(t, err)

	pkg := res.Package
	assert.Equal(t, models.RecipientPublic, pkg.RecipientMode)
	assert.Nil(t, pkg.SelectedRecipient)
	assert.Nil(t, pkg.EncryptedMessage, "public packages carry no recipient-bound secret")
	assert.Len(t, pkg.RasterArtefacts, 2)
}

func TestBuild_Deterministic(t *testing.T) {
	h := newHarness(t)
	cfg := PrivateConfig{
		DeliveryMethod:    models.DeliveryDownload,
		SenderFingerprint: h.identity.Fingerprint().Hex(),
		MessageBody:       "please review",
		Recipient:         h.recipient(),
		Attachments:       []CompletedAttachment{twoPageAttachment(t)},
	}

	first, err := h.builder.Build(context.Background(), cfg)
	require.NoError(t, err)
	second, err := h.builder.Build(context.Background(), cfg)
	require.NoError(t, err)

	a, err := EncodePackage(first.Package)
	require.NoError(t, err)
	b, err := EncodePackage(second.Package)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b), "identical config must encode to identical bytes")
}
