// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"errors"
	"fmt"
)

// ErrClipboardUnavailable reports that the platform denied clipboard access
// or has no clipboard at all.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// DeliveryChannelError wraps a failure of an external delivery capability,
// carrying the channel name and the external error code so the caller can
// decide whether to retry. The executor itself never retries.
type DeliveryChannelError struct {
	Channel string
	Code    string
	Err     error
}

func (e *DeliveryChannelError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s delivery failed (%s): %v", e.Channel, e.Code, e.Err)
	}
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryChannelError) Unwrap() error { return e.Err }
