// SPDX-License-Identifier: Apache-2.0

package capsule

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/beapsec/beap-core/internal/crypto"
	"github.com/beapsec/beap-core/internal/handshake"
	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/models"
)

// builder is the private implementation of [Builder].
type builder struct {
	identities identity.Manager
	handshakes handshake.Protocol
	logger     *logger.Logger
}

// NewBuilder constructs a [Builder]. Private-mode recipients are resolved
// exclusively through the accepted handshakes of protocol.
func NewBuilder(ids identity.Manager, protocol handshake.Protocol, log *logger.Logger) Builder {
	log.Debug().Msg("creating capsule builder")
	return &builder{identities: ids, handshakes: protocol, logger: log}
}

func (b *builder) Build(ctx context.Context, cfg BuildConfig) (*BuildResult, error) {
	switch c := cfg.(type) {
	case PrivateConfig:
		return b.buildPrivate(ctx, c)
	case PublicConfig:
		return b.buildPublic(ctx, c)
	default:
		return nil, fmt.Errorf("unknown build config type %T", cfg)
	}
}

func (b *builder) buildPrivate(ctx context.Context, cfg PrivateConfig) (*BuildResult, error) {
	peer, err := b.resolveRecipient(ctx, cfg.Recipient)
	if err != nil {
		return nil, err
	}
	if cfg.MessageBody == "" {
		return nil, ErrEmptyMessage
	}
	id, err := b.currentIdentity(ctx, cfg.SenderFingerprint)
	if err != nil {
		return nil, err
	}

	pkg := &models.BeapPackage{
		Version:           PackageVersion,
		RecipientMode:     models.RecipientPrivate,
		DeliveryMethod:    cfg.DeliveryMethod,
		SenderFingerprint: cfg.SenderFingerprint,
		SelectedRecipient: &models.SelectedRecipient{
			HandshakeID:     peer.ID,
			PeerFingerprint: peer.PeerFingerprint,
		},
		MessageBody: cfg.MessageBody,
	}

	var advisories []string
	if cfg.EncryptMessage {
		blob, err := b.encryptMessage(id, peer.PeerPublicKey, cfg.MessageBody)
		if err != nil {
			return nil, fmt.Errorf("encrypting message for %s: %w", peer.PeerFingerprint, err)
		}
		pkg.EncryptedMessage = blob
	} else {
		advisories = append(advisories, "message travels as transport-level plaintext only; no capsule-bound encryption was used")
	}

	advisories = append(advisories, assemble(pkg, cfg.Attachments)...)
	for _, ca := range cfg.Attachments {
		att := ca.Attachment
		if !att.IsMedia && att.RasterProof == nil {
			advisories = append(advisories, fmt.Sprintf("document %q has no raster proof; the recipient cannot verify its rendered content", att.OriginalName))
		}
	}

	b.logger.Info().
		Str("handshake_id", peer.ID).
		Int("attachments", len(pkg.Attachments)).
		Bool("encrypted", pkg.EncryptedMessage != nil).
		Msg("private package built")
	return &BuildResult{Package: pkg, Advisories: advisories}, nil
}

func (b *builder) buildPublic(ctx context.Context, cfg PublicConfig) (*BuildResult, error) {
	if cfg.MessageBody == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := b.currentIdentity(ctx, cfg.SenderFingerprint); err != nil {
		return nil, err
	}

	pkg := &models.BeapPackage{
		Version:           PackageVersion,
		RecipientMode:     models.RecipientPublic,
		DeliveryMethod:    cfg.DeliveryMethod,
		SenderFingerprint: cfg.SenderFingerprint,
		MessageBody:       cfg.MessageBody,
	}
	advisories := assemble(pkg, cfg.Attachments)

	b.logger.Info().Int("attachments", len(pkg.Attachments)).Msg("public package built")
	return &BuildResult{Package: pkg, Advisories: advisories}, nil
}

// resolveRecipient maps the selected recipient onto an accepted handshake.
// Accepted handshakes are the only recipient source; anything else is
// ErrNoRecipientSelected.
func (b *builder) resolveRecipient(ctx context.Context, sel models.SelectedRecipient) (models.Handshake, error) {
	if sel.HandshakeID == "" {
		return models.Handshake{}, ErrNoRecipientSelected
	}
	accepted, err := b.handshakes.ListAccepted(ctx)
	if err != nil {
		return models.Handshake{}, fmt.Errorf("listing accepted handshakes: %w", err)
	}
	for _, hs := range accepted {
		if hs.ID != sel.HandshakeID {
			continue
		}
		if sel.PeerFingerprint != "" && sel.PeerFingerprint != hs.PeerFingerprint {
			return models.Handshake{}, fmt.Errorf("%w: fingerprint does not match handshake %s", ErrNoRecipientSelected, hs.ID)
		}
		return hs, nil
	}
	return models.Handshake{}, fmt.Errorf("%w: handshake %s is not accepted", ErrNoRecipientSelected, sel.HandshakeID)
}

// currentIdentity loads the identity and checks it still matches the
// fingerprint the config was prepared against.
func (b *builder) currentIdentity(ctx context.Context, senderFingerprint string) (*identity.Identity, error) {
	id, err := b.identities.GetOrCreateIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if id.Fingerprint().Hex() != senderFingerprint {
		return nil, fmt.Errorf("%w: config bound to %s, current identity is %s",
			ErrStaleIdentity, senderFingerprint, id.Fingerprint().Hex())
	}
	return id, nil
}

// encryptMessage seals the message body under the per-handshake key:
// X25519 shared secret, HKDF-SHA256, ChaCha20-Poly1305.
func (b *builder) encryptMessage(id *identity.Identity, peerPublicKey []byte, body string) ([]byte, error) {
	shared, err := id.SharedSecret(peerPublicKey)
	if err != nil {
		return nil, err
	}
	key, err := crypto.DeriveMessageKey(shared)
	if err != nil {
		return nil, err
	}
	return crypto.SealMessage(key, []byte(body))
}

// assemble copies the completed attachments into pkg as-is (partial pipeline
// results included), flattens every raster page into the package-level
// artefact list and archives the raw originals. Per-attachment processing
// errors come back as advisories.
func assemble(pkg *models.BeapPackage, attachments []CompletedAttachment) []string {
	var advisories []string
	pkg.Attachments = make([]models.CapsuleAttachment, 0, len(attachments))
	pkg.RasterArtefacts = []models.RasterArtefact{}
	pkg.OriginalFiles = make([]models.OriginalFile, 0, len(attachments))

	for _, ca := range attachments {
		att := ca.Attachment
		pkg.Attachments = append(pkg.Attachments, att)

		if att.RasterProof != nil {
			for _, page := range att.RasterProof.Pages {
				pkg.RasterArtefacts = append(pkg.RasterArtefacts, models.RasterArtefact{
					AttachmentID:   att.ID,
					RasterPageData: page,
				})
			}
		}

		pkg.OriginalFiles = append(pkg.OriginalFiles, models.OriginalFile{
			AttachmentID: att.ID,
			Filename:     att.OriginalName,
			MIME:         att.OriginalType,
			Base64:       base64.StdEncoding.EncodeToString(ca.Raw.Data),
		})

		for _, msg := range att.ProcessingErrors {
			advisories = append(advisories, fmt.Sprintf("attachment %q: %s", att.OriginalName, msg))
		}
	}
	return advisories
}
