// SPDX-License-Identifier: Apache-2.0

package pipeline

import "errors"

var (
	// ErrAttachmentLimitExceeded is returned by [Pipeline.Enqueue] when a file
	// is over the per-file size limit or the per-package attachment count is
	// already full. The file is rejected, never silently dropped.
	ErrAttachmentLimitExceeded = errors.New("attachment limit exceeded")

	// ErrNoCapability marks a stage whose external capability was not
	// configured. Recorded as a per-attachment processing error, never fatal.
	ErrNoCapability = errors.New("capability not configured")
)
