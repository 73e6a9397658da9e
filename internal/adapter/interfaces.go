// SPDX-License-Identifier: Apache-2.0

// Package adapter provides transport-layer integrations with external
// services.
//
// The primary abstraction is [MailComposer], which hands email payloads to an
// external mail-composition service over HTTP/REST ([NewHTTPMailComposer]).
// This core never sends email itself; the service owns account plumbing,
// drafts and the actual send.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401).
package adapter

import "context"

// MailComposer hands an email payload to the external mail-composition
// service. Implementations are responsible for serialisation and for mapping
// transport-level errors to the sentinel values defined in this package.
type MailComposer interface {
	// Compose submits the payload as a draft addressed to the given
	// recipient. It returns nil once the service has accepted the draft;
	// acceptance does not mean the mail was sent.
	Compose(ctx context.Context, to, subject, body string) error
}
