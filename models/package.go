package models

// RecipientMode distinguishes the two trust modes of a BEAP package.
type RecipientMode string

const (
	// RecipientPrivate is the handshake-bound, encryptable variant (qBEAP).
	RecipientPrivate RecipientMode = "private"
	// RecipientPublic is the unauthenticated variant (pBEAP).
	RecipientPublic RecipientMode = "public"
)

// DeliveryMethod names the external channel a package is handed to.
type DeliveryMethod string

const (
	DeliveryEmail     DeliveryMethod = "email"
	DeliveryMessenger DeliveryMethod = "messenger"
	DeliveryDownload  DeliveryMethod = "download"
)

// SelectedRecipient binds a private-mode package to an accepted handshake.
type SelectedRecipient struct {
	HandshakeID     string `json:"handshakeId"`
	PeerFingerprint string `json:"peerFingerprint"`
}

// OriginalFile archives the exact raw bytes of one attachment, independent
// of any processing outcome, so a recipient can always recover what was
// actually sent.
type OriginalFile struct {
	AttachmentID string `json:"attachmentId"`
	Filename     string `json:"filename"`
	MIME         string `json:"mime"`
	Base64       string `json:"base64"`
}

// BeapPackage is the immutable, sendable unit. It is built once by the
// capsule builder and never mutated after the delivery executor consumes it.
//
// EncryptedMessage is populated only in private mode: nonce-prefixed
// ChaCha20-Poly1305 ciphertext under the per-handshake key.
type BeapPackage struct {
	Version           int                 `json:"version"`
	RecipientMode     RecipientMode       `json:"recipientMode"`
	DeliveryMethod    DeliveryMethod      `json:"deliveryMethod"`
	SenderFingerprint string              `json:"senderFingerprint"`
	SelectedRecipient *SelectedRecipient  `json:"selectedRecipient,omitempty"`
	MessageBody       string              `json:"messageBody"`
	EncryptedMessage  []byte              `json:"encryptedMessage,omitempty"`
	Attachments       []CapsuleAttachment `json:"attachments"`
	RasterArtefacts   []RasterArtefact    `json:"rasterArtefacts"`
	OriginalFiles     []OriginalFile      `json:"originalFiles"`
}
