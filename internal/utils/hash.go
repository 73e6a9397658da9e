// Package utils provides general-purpose helper utilities used across
// different parts of the application: SHA-256 content hashing and
// identifier generation.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes the SHA-256 digest of data.
//
// Content hashes are used throughout beap-core as tamper-evidence: public-key
// fingerprints, encrypted-blob hashes and per-page raster hashes are all
// plain SHA-256 digests of the bytes they attest to.
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// HashHex computes the SHA-256 digest of data and returns it as a lowercase
// hex string, the canonical textual form used in all BEAP wire structures.
func HashHex(data []byte) string {
	return hex.EncodeToString(Hash(data))
}
