// SPDX-License-Identifier: Apache-2.0

// Package pipeline turns raw attachment bytes into verifiable capsule
// attachment records.
//
// For every enqueued attachment the pipeline runs two independent stages,
// parse and rasterize, as separate goroutines and merges their outcomes into
// one immutable [models.CapsuleAttachment] delivered on a channel. Both
// stages are best-effort: a stage failure is recorded as a processing error
// on the attachment, and the attachment stays sendable. The external parser
// and rasterizer are treated as untrusted services, so stage panics are
// recovered and recorded the same way.
package pipeline

import (
	"context"

	"github.com/beapsec/beap-core/models"
)

const (
	// MaxAttachmentSize is the per-file limit. Larger files are rejected
	// before any processing starts.
	MaxAttachmentSize = 10 << 20 // 10 MiB

	// MaxAttachments is the per-package limit on enqueued attachments.
	MaxAttachments = 20

	// DefaultRasterDPI is used when [Capabilities.RasterDPI] is left zero.
	DefaultRasterDPI = 150
)

// ParseResult is what the external parser capability reports for one file.
type ParseResult struct {
	// Text is the extracted semantic content, empty when the file type does
	// not support text extraction.
	Text string
	// Extracted reports whether extraction actually ran and produced Text.
	Extracted bool
	// HasTranscript reports that Text is a transcript of media content
	// rather than document text.
	HasTranscript bool
}

// RasterPage is one page rendered by the external rasterizer.
type RasterPage struct {
	MIME   string
	Width  int
	Height int
	Data   []byte
}

// RasterResult is what the external rasterizer capability reports for one
// file. TotalPages is the page count of the source document as the
// rasterizer saw it; when it is larger than len(Pages) the resulting proof
// is recorded as incomplete.
type RasterResult struct {
	TotalPages int
	Pages      []RasterPage
}

// ParseFunc extracts semantic content from raw bytes of the declared MIME
// type. It must honour ctx cancellation; the pipeline does not assume it is
// pure, synchronous or panic-free.
type ParseFunc func(ctx context.Context, data []byte, mime string) (ParseResult, error)

// RasterizeFunc renders each page of the document to an image at the given
// DPI. Same trust assumptions as [ParseFunc].
type RasterizeFunc func(ctx context.Context, data []byte, mime string, dpi int) (RasterResult, error)

// Capabilities bundles the external processing functions the pipeline
// consumes. A nil function disables its stage; the stage is then recorded as
// errored on every attachment.
type Capabilities struct {
	Parse     ParseFunc
	Rasterize RasterizeFunc
	RasterDPI int
}

// Pipeline processes the attachments of one in-flight outgoing package.
// Create a fresh Pipeline per package: the attachment count limit is scoped
// to the instance.
type Pipeline interface {
	// Enqueue validates the size and count limits, then starts processing
	// raw in the background. The returned channel delivers exactly one
	// result and is buffered, so the result is never lost if the caller is
	// slow to read it. Limit violations are reported as
	// [ErrAttachmentLimitExceeded] before any bytes are processed.
	//
	// Cancelling ctx stops the stages; the attachment is still delivered
	// with whatever the completed stages produced plus a cancellation error.
	Enqueue(ctx context.Context, raw models.RawAttachment) (<-chan models.CapsuleAttachment, error)

	// Enqueued returns how many attachments have been accepted so far.
	Enqueued() int
}
