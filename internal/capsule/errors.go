// SPDX-License-Identifier: Apache-2.0

package capsule

import "errors"

var (
	// ErrNoRecipientSelected rejects a private-mode build whose recipient is
	// missing or not bound to an accepted handshake.
	ErrNoRecipientSelected = errors.New("no recipient selected")

	// ErrEmptyMessage rejects a build with an empty message body.
	ErrEmptyMessage = errors.New("empty message body")

	// ErrStaleIdentity rejects a build whose config was prepared against a
	// fingerprint that no longer matches the current identity. Guards
	// against packaging under a since-rotated key.
	ErrStaleIdentity = errors.New("stale sender identity")

	// ErrUnsupportedVersion is returned when decoding a package with an
	// unknown envelope version.
	ErrUnsupportedVersion = errors.New("unsupported package version")
)
