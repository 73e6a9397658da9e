// SPDX-License-Identifier: Apache-2.0

package capsule

import "github.com/beapsec/beap-core/models"

// CompletedAttachment pairs a processed capsule attachment with the raw
// bytes it was built from. The raw bytes are archived into the package's
// originalFiles so the recipient can always recover exactly what was sent,
// whatever the processing outcome was.
type CompletedAttachment struct {
	Attachment models.CapsuleAttachment
	Raw        models.RawAttachment
}

// BuildConfig is the input to [Builder.Build]. It is a closed union over the
// two trust modes: [PrivateConfig] carries a recipient and may request
// message encryption, [PublicConfig] structurally cannot carry any
// recipient-bound secret.
type BuildConfig interface {
	recipientMode() models.RecipientMode
}

// PrivateConfig describes a handshake-bound (qBEAP) package.
type PrivateConfig struct {
	DeliveryMethod    models.DeliveryMethod
	SenderFingerprint string
	MessageBody       string

	// Recipient must reference an accepted handshake; the zero value means
	// no recipient was selected.
	Recipient models.SelectedRecipient

	// EncryptMessage requests capsule-bound encryption of MessageBody under
	// the per-handshake key. When false the build still succeeds, with an
	// advisory that the transport-level plaintext is the only payload.
	EncryptMessage bool

	Attachments []CompletedAttachment
}

func (PrivateConfig) recipientMode() models.RecipientMode { return models.RecipientPrivate }

// PublicConfig describes an unauthenticated (pBEAP) package.
type PublicConfig struct {
	DeliveryMethod    models.DeliveryMethod
	SenderFingerprint string
	MessageBody       string
	Attachments       []CompletedAttachment
}

func (PublicConfig) recipientMode() models.RecipientMode { return models.RecipientPublic }
