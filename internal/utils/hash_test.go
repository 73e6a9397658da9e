package utils

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestHash_Deterministic(t *testing.T) {
	data := []byte("beap content")

	h1 := Hash(data)
	h2 := Hash(data)

	if len(h1) != sha256.Size {
		t.Fatalf("digest length = %d, want %d", len(h1), sha256.Size)
	}
	if !bytes.Equal(h1, h2) {
		t.Fatalf("expected identical digests for identical input")
	}
}

func TestHash_DifferentInputs(t *testing.T) {
	h1 := Hash([]byte("a"))
	h2 := Hash([]byte("b"))

	if bytes.Equal(h1, h2) {
		t.Fatalf("expected different digests for different inputs")
	}
}

func TestHashHex_KnownVector(t *testing.T) {
	// SHA-256("") is a fixed, well-known value.
	got := HashHex(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Fatalf("HashHex(nil) = %s, want %s", got, want)
	}
}
