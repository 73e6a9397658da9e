// SPDX-License-Identifier: Apache-2.0

package handshake

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/models"
)

// WireVersion is the current handshake-request wire format version.
const WireVersion = 1

// wireRequest is the canonical serialized form of a handshake request.
// Field order is part of the wire contract: two independent implementations
// must produce byte-identical output for identical input, because requests
// round-trip through text channels (email bodies, clipboard) and recipients
// de-duplicate by content. Do not reorder fields.
type wireRequest struct {
	Version                  int    `json:"version"`
	SenderFingerprint        string `json:"senderFingerprint"`
	SenderX25519PublicKeyB64 string `json:"senderX25519PublicKeyB64"`
	SenderDisplayName        string `json:"senderDisplayName"`
	SenderEmail              string `json:"senderEmail,omitempty"`
	Message                  string `json:"message"`
	CreatedAt                string `json:"createdAt"` // ISO-8601, UTC, second precision
}

// EncodeRequest serializes a handshake request into its canonical, versioned
// wire form: stable key order, no extraneous whitespace.
func EncodeRequest(req models.HandshakeRequest) ([]byte, error) {
	wire := wireRequest{
		Version:                  WireVersion,
		SenderFingerprint:        req.SenderFingerprint,
		SenderX25519PublicKeyB64: base64.StdEncoding.EncodeToString(req.SenderPublicKey),
		SenderDisplayName:        req.SenderDisplayName,
		SenderEmail:              req.SenderEmail,
		Message:                  req.Message,
		CreatedAt:                req.CreatedAt.UTC().Format(time.RFC3339),
	}
	return json.Marshal(wire)
}

// DecodeRequest parses and validates the canonical wire form. Beyond
// structural checks it verifies that the embedded fingerprint is actually
// the content hash of the embedded public key, so a recipient can trust the
// fingerprint it displays for verification.
func DecodeRequest(data []byte) (models.HandshakeRequest, error) {
	var wire wireRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		return models.HandshakeRequest{}, &DecodeError{Reason: "malformed JSON", Err: err}
	}

	if wire.Version != WireVersion {
		return models.HandshakeRequest{}, &DecodeError{Reason: "unsupported version"}
	}

	pub, err := base64.StdEncoding.DecodeString(wire.SenderX25519PublicKeyB64)
	if err != nil {
		return models.HandshakeRequest{}, &DecodeError{Reason: "malformed public key", Err: err}
	}
	if len(pub) != 32 {
		return models.HandshakeRequest{}, &DecodeError{Reason: "public key must be 32 bytes"}
	}

	fp, err := identity.ParseFingerprint(wire.SenderFingerprint)
	if err != nil {
		return models.HandshakeRequest{}, &DecodeError{Reason: "malformed fingerprint", Err: err}
	}
	if fp != identity.NewFingerprint(pub) {
		return models.HandshakeRequest{}, &DecodeError{Reason: "fingerprint does not match public key"}
	}

	createdAt, err := time.Parse(time.RFC3339, wire.CreatedAt)
	if err != nil {
		return models.HandshakeRequest{}, &DecodeError{Reason: "malformed createdAt timestamp", Err: err}
	}

	return models.HandshakeRequest{
		SenderFingerprint: wire.SenderFingerprint,
		SenderPublicKey:   pub,
		SenderDisplayName: wire.SenderDisplayName,
		SenderEmail:       wire.SenderEmail,
		Message:           wire.Message,
		CreatedAt:         createdAt.UTC(),
	}, nil
}
