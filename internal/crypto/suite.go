// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// KeyBytes is the size of every key used by the BEAP cipher suite: X25519
// public/private keys, HKDF outputs and ChaCha20-Poly1305 keys.
const KeyBytes = 32

// messageKeyInfo domain-separates per-handshake message keys from any other
// use of the same shared secret.
const messageKeyInfo = "beap/v1 msg"

// KeyPair is an X25519 key pair. The private half is unexported; the only
// legitimate way for it to leave this package is [KeyPair.PrivateBytes],
// which exists solely so the identity store can persist it encrypted at
// rest.
type KeyPair struct {
	public  [KeyBytes]byte
	private [KeyBytes]byte
}

// GenerateKeyPair returns a fresh Curve25519 key pair. The private key is
// clamped per RFC 7748.
func GenerateKeyPair() (*KeyPair, error) {
	var kp KeyPair
	if _, err := io.ReadFull(rand.Reader, kp.private[:]); err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	clamp(&kp.private)

	pub, err := curve25519.X25519(kp.private[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	copy(kp.public[:], pub)

	return &kp, nil
}

// NewKeyPairFromPrivate reconstructs a key pair from a persisted 32-byte
// private key, re-deriving the public half.
func NewKeyPairFromPrivate(private []byte) (*KeyPair, error) {
	if len(private) != KeyBytes {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", KeyBytes, len(private))
	}

	var kp KeyPair
	copy(kp.private[:], private)
	clamp(&kp.private)

	pub, err := curve25519.X25519(kp.private[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	copy(kp.public[:], pub)

	return &kp, nil
}

// PublicKey returns a copy of the raw 32-byte public key.
func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, KeyBytes)
	copy(out, kp.public[:])
	return out
}

// PrivateBytes returns a copy of the raw private key. Callers other than the
// encrypted identity store have no business calling this.
func (kp *KeyPair) PrivateBytes() []byte {
	out := make([]byte, KeyBytes)
	copy(out, kp.private[:])
	return out
}

// SharedSecret computes the X25519 Diffie-Hellman secret between the local
// private key and a peer's raw public key.
func (kp *KeyPair) SharedSecret(peerPublic []byte) ([]byte, error) {
	if len(peerPublic) != KeyBytes {
		return nil, fmt.Errorf("peer public key must be %d bytes, got %d", KeyBytes, len(peerPublic))
	}

	secret, err := curve25519.X25519(kp.private[:], peerPublic)
	if err != nil {
		return nil, fmt.Errorf("x25519: %w", err)
	}
	return secret, nil
}

// DeriveMessageKey derives the per-handshake message key from an X25519
// shared secret using HKDF-SHA256 with a domain-separation info string.
func DeriveMessageKey(sharedSecret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, sharedSecret, nil, []byte(messageKeyInfo))
	key := make([]byte, KeyBytes)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive message key: %w", err)
	}
	return key, nil
}

// SealMessage encrypts plaintext with ChaCha20-Poly1305 under key and
// returns the blob nonce ‖ ciphertext.
func SealMessage(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// OpenMessage reverses [SealMessage]. It fails when the blob is truncated or
// the authentication tag does not verify.
func OpenMessage(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}

	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open message: %w", err)
	}
	return plaintext, nil
}

func clamp(k *[KeyBytes]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
