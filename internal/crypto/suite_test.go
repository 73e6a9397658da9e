package crypto

import (
	"bytes"
	"testing"
)

func TestGenerateKeyPair_PublicKeyLength(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}
	if len(kp.PublicKey()) != KeyBytes {
		t.Fatalf("public key length = %d, want %d", len(kp.PublicKey()), KeyBytes)
	}
}

func TestNewKeyPairFromPrivate_RederivesPublic(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}

	restored, err := NewKeyPairFromPrivate(kp.PrivateBytes())
	if err != nil {
		t.Fatalf("NewKeyPairFromPrivate error: %v", err)
	}
	if !bytes.Equal(restored.PublicKey(), kp.PublicKey()) {
		t.Fatalf("restored public key differs from original")
	}
}

func TestNewKeyPairFromPrivate_RejectsBadLength(t *testing.T) {
	if _, err := NewKeyPairFromPrivate(make([]byte, 16)); err == nil {
		t.Fatalf("expected error for short private key")
	}
}

func TestSharedSecret_Agreement(t *testing.T) {
	alice, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}
	bob, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}

	s1, err := alice.SharedSecret(bob.PublicKey())
	if err != nil {
		t.Fatalf("SharedSecret error: %v", err)
	}
	s2, err := bob.SharedSecret(alice.PublicKey())
	if err != nil {
		t.Fatalf("SharedSecret error: %v", err)
	}

	if !bytes.Equal(s1, s2) {
		t.Fatalf("DH secrets do not agree")
	}
}

func TestSealMessage_OpenRoundTrip(t *testing.T) {
	alice, _ := GenerateKeyPair()
	bob, _ := GenerateKeyPair()

	secret, err := alice.SharedSecret(bob.PublicKey())
	if err != nil {
		t.Fatalf("SharedSecret error: %v", err)
	}
	key, err := DeriveMessageKey(secret)
	if err != nil {
		t.Fatalf("DeriveMessageKey error: %v", err)
	}

	plain := []byte("capsule-bound secret message")
	blob, err := SealMessage(key, plain)
	if err != nil {
		t.Fatalf("SealMessage error: %v", err)
	}

	// The recipient derives the same key from its side of the exchange.
	peerSecret, _ := bob.SharedSecret(alice.PublicKey())
	peerKey, _ := DeriveMessageKey(peerSecret)

	got, err := OpenMessage(peerKey, blob)
	if err != nil {
		t.Fatalf("OpenMessage error: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("round-tripped message differs")
	}
}

func TestOpenMessage_TamperFails(t *testing.T) {
	key := bytes.Repeat([]byte{0x17}, KeyBytes)

	blob, err := SealMessage(key, []byte("payload"))
	if err != nil {
		t.Fatalf("SealMessage error: %v", err)
	}

	blob[len(blob)-1] ^= 0x01
	if _, err := OpenMessage(key, blob); err == nil {
		t.Fatalf("expected tampered message to fail authentication")
	}
}

func TestDeriveMessageKey_DeterministicAndSeparated(t *testing.T) {
	secret := bytes.Repeat([]byte{0x33}, KeyBytes)

	k1, err := DeriveMessageKey(secret)
	if err != nil {
		t.Fatalf("DeriveMessageKey error: %v", err)
	}
	k2, _ := DeriveMessageKey(secret)
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected derived keys to be deterministic")
	}
	if bytes.Equal(k1, secret) {
		t.Fatalf("derived key must differ from the raw shared secret")
	}
}
