package models

import "time"

// HandshakeState is the lifecycle state of a recorded handshake.
// A handshake starts Pending and moves exactly once to one of the
// terminal states; there are no other edges.
type HandshakeState string

const (
	HandshakePending  HandshakeState = "pending"
	HandshakeAccepted HandshakeState = "accepted"
	HandshakeRejected HandshakeState = "rejected"
	HandshakeExpired  HandshakeState = "expired"
)

// Terminal reports whether the state admits no further transitions.
func (s HandshakeState) Terminal() bool {
	return s == HandshakeAccepted || s == HandshakeRejected || s == HandshakeExpired
}

// HandshakeRequest is the outgoing trust-negotiation artefact. It binds the
// sender's fingerprint and public key at creation time and is immutable once
// serialized. It travels through human-mediated channels (email body,
// clipboard paste), so its wire form must survive text round-trips.
type HandshakeRequest struct {
	SenderFingerprint string    // lowercase hex, 64 chars
	SenderPublicKey   []byte    // raw X25519 public key, 32 bytes
	SenderDisplayName string
	SenderEmail       string // optional
	Message           string
	CreatedAt         time.Time // UTC, second precision
}

// Handshake is a recorded trust negotiation with one peer. PeerPublicKey is
// populated only when the handshake reaches HandshakeAccepted.
type Handshake struct {
	ID              string
	PeerLabel       string
	PeerFingerprint string
	PeerPublicKey   []byte
	State           HandshakeState
	LocalKeyID      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
