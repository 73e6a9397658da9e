// SPDX-License-Identifier: Apache-2.0

// Package delivery turns an assembled BEAP package into a concrete side
// effect: a saved file, a clipboard payload for a messenger paste, or an
// email-ready payload handed to an external mail composer.
//
// Every delivery is terminal: the executor reports Delivered or Failed,
// never retries, and never mutates the package. Retrying is the caller's
// decision, which is why channel failures carry the external error code.
package delivery

import (
	"context"

	"github.com/beapsec/beap-core/models"
)

// SaveFileFunc persists bytes under the given filename. Supplied by the
// platform (file picker, downloads directory).
type SaveFileFunc func(ctx context.Context, filename string, data []byte) error

// WriteClipboardFunc places text on the system clipboard.
type WriteClipboardFunc func(ctx context.Context, text string) error

// ComposeEmailFunc hands a payload to an external mail-composition service.
// This core never sends email itself.
type ComposeEmailFunc func(ctx context.Context, to, subject, body string) error

// Capabilities bundles the external channel functions the executor consumes.
// A nil function makes its channel fail with a DeliveryChannelError.
type Capabilities struct {
	SaveFile       SaveFileFunc
	WriteClipboard WriteClipboardFunc
	ComposeEmail   ComposeEmailFunc
}

// DeliveryResult is the terminal outcome of one delivery attempt.
type DeliveryResult struct {
	Success bool
	Message string
	Err     error
}

// Executor dispatches packages and handshake requests over the channel named
// in them.
type Executor interface {
	// Deliver serializes pkg canonically and hands it to the channel named
	// by pkg.DeliveryMethod. recipientAddress is required for email
	// delivery and ignored otherwise.
	Deliver(ctx context.Context, pkg *models.BeapPackage, recipientAddress string) DeliveryResult

	// DeliverHandshakeRequest dispatches a serialized handshake request over
	// the given channel so it can reach the peer through email, messenger
	// paste or a downloaded file.
	DeliverHandshakeRequest(ctx context.Context, req models.HandshakeRequest, method models.DeliveryMethod, recipientAddress string) DeliveryResult
}
