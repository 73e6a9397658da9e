// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/beapsec/beap-core/internal/utils"
)

// FingerprintSize is the length in bytes of a BEAP fingerprint
// (a SHA-256 digest of the raw X25519 public key).
const FingerprintSize = 32

// Fingerprint is the content hash of a public key, used as a
// human-verifiable identity proxy. It is a pure function of the public key
// and stable for the lifetime of the keypair.
type Fingerprint [FingerprintSize]byte

// NewFingerprint computes the fingerprint of a raw public key.
func NewFingerprint(publicKey []byte) Fingerprint {
	var fp Fingerprint
	copy(fp[:], utils.Hash(publicKey))
	return fp
}

// ParseFingerprint decodes a 64-character lowercase hex fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var fp Fingerprint
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fp, fmt.Errorf("decode fingerprint: %w", err)
	}
	if len(raw) != FingerprintSize {
		return fp, fmt.Errorf("fingerprint must be %d bytes, got %d", FingerprintSize, len(raw))
	}
	copy(fp[:], raw)
	return fp, nil
}

// Hex returns the canonical lowercase hex form used in all wire structures.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

// FormatShort returns the first 8 hex characters of the fingerprint, the
// compact form used in filenames and log lines.
func FormatShort(f Fingerprint) string {
	return f.Hex()[:8]
}

// FormatGrouped returns the full hex fingerprint split into 4-character
// groups separated by spaces, for humans verifying it by reading it aloud.
func FormatGrouped(f Fingerprint) string {
	h := f.Hex()
	groups := make([]string, 0, len(h)/4)
	for i := 0; i < len(h); i += 4 {
		groups = append(groups, h[i:i+4])
	}
	return strings.Join(groups, " ")
}
