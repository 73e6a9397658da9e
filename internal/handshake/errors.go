package handshake

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityNotLoaded is returned by CreateRequest when the local
	// identity has not finished initializing.
	ErrIdentityNotLoaded = errors.New("identity not loaded")

	// ErrInvalidTransition is returned when accept/reject/expire targets a
	// handshake that is no longer pending. State errors are always
	// surfaced, never silently corrected.
	ErrInvalidTransition = errors.New("invalid handshake transition")

	// ErrHandshakeNotFound is returned when a transition or lookup targets
	// an unknown handshake id.
	ErrHandshakeNotFound = errors.New("handshake not found")
)

// DecodeError reports why a serialized handshake request could not be
// decoded. Requests travel through human-mediated channels, so decode
// failures are expected operational events and carry a caller-presentable
// reason.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode handshake request: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode handshake request: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }
