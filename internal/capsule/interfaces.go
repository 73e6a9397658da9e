// SPDX-License-Identifier: Apache-2.0

// Package capsule assembles outgoing BEAP packages.
//
// The builder validates the build config against the current identity and
// the handshake store, optionally encrypts the message body for a private
// recipient, and produces an immutable [models.BeapPackage] together with a
// list of advisories the caller should surface to the user. Advisories never
// block a send; validation errors always do.
package capsule

import (
	"context"

	"github.com/beapsec/beap-core/models"
)

// BuildResult is a successfully assembled package plus the advisories
// collected while building it.
type BuildResult struct {
	Package    *models.BeapPackage
	Advisories []string
}

// Builder assembles packages. Implementations do not retain the package
// after returning it; ownership transfers to the caller.
type Builder interface {
	// Build validates cfg and assembles the package. Validation failures
	// are reported in a fixed order: recipient first, then message body,
	// then identity staleness. Attachment processing failures never fail
	// the build; they surface as advisories.
	Build(ctx context.Context, cfg BuildConfig) (*BuildResult, error)
}
