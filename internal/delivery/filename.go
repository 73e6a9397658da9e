// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"fmt"

	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/utils"
)

// PackageFilename derives the deterministic download filename for a package
// from the sender fingerprint and the canonical serialized bytes. Identical
// packages always map to identical filenames, so recipients can de-duplicate
// by name alone.
func PackageFilename(senderFingerprint string, canonical []byte) string {
	return fmt.Sprintf("beap-package-%s-%s.beap.json", shortFP(senderFingerprint), utils.HashHex(canonical)[:8])
}

// HandshakeRequestFilename derives the download filename for a serialized
// handshake request.
func HandshakeRequestFilename(senderFingerprint string) string {
	return fmt.Sprintf("handshake-request-%s.beap-handshake.json", shortFP(senderFingerprint))
}

func shortFP(hexFingerprint string) string {
	fp, err := identity.ParseFingerprint(hexFingerprint)
	if err != nil {
		// Not a well-formed fingerprint; fall back to a raw prefix so the
		// filename is still usable.
		if len(hexFingerprint) > 8 {
			return hexFingerprint[:8]
		}
		return hexFingerprint
	}
	return identity.FormatShort(fp)
}
