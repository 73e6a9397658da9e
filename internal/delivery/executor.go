// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/beapsec/beap-core/internal/capsule"
	"github.com/beapsec/beap-core/internal/handshake"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/models"
)

// executor is the private implementation of [Executor].
type executor struct {
	caps   Capabilities
	logger *logger.Logger
}

// NewExecutor constructs an [Executor] over the given channel capabilities.
func NewExecutor(caps Capabilities, log *logger.Logger) Executor {
	log.Debug().Msg("creating delivery executor")
	return &executor{caps: caps, logger: log}
}

func (e *executor) Deliver(ctx context.Context, pkg *models.BeapPackage, recipientAddress string) DeliveryResult {
	data, err := capsule.EncodePackage(pkg)
	if err != nil {
		return e.failed(pkg.DeliveryMethod, err)
	}

	switch pkg.DeliveryMethod {
	case models.DeliveryDownload:
		filename := PackageFilename(pkg.SenderFingerprint, data)
		return e.dispatch(ctx, models.DeliveryDownload, filename, data, recipientAddress)
	case models.DeliveryMessenger:
		return e.dispatch(ctx, models.DeliveryMessenger, "", data, recipientAddress)
	case models.DeliveryEmail:
		return e.dispatch(ctx, models.DeliveryEmail, "", data, recipientAddress)
	default:
		return e.failed(pkg.DeliveryMethod, fmt.Errorf("unknown delivery method %q", pkg.DeliveryMethod))
	}
}

func (e *executor) DeliverHandshakeRequest(ctx context.Context, req models.HandshakeRequest, method models.DeliveryMethod, recipientAddress string) DeliveryResult {
	data, err := handshake.EncodeRequest(req)
	if err != nil {
		return e.failed(method, err)
	}

	filename := ""
	if method == models.DeliveryDownload {
		filename = HandshakeRequestFilename(req.SenderFingerprint)
	}
	return e.dispatch(ctx, method, filename, data, recipientAddress)
}

// dispatch hands the serialized payload to exactly one external channel and
// maps the outcome to a terminal result. No path mutates the payload or
// retries.
func (e *executor) dispatch(ctx context.Context, method models.DeliveryMethod, filename string, data []byte, recipientAddress string) DeliveryResult {
	var err error
	switch method {
	case models.DeliveryDownload:
		err = e.saveFile(ctx, filename, data)
	case models.DeliveryMessenger:
		err = e.writeClipboard(ctx, string(data))
	case models.DeliveryEmail:
		err = e.composeEmail(ctx, recipientAddress, string(data))
	default:
		err = fmt.Errorf("unknown delivery method %q", method)
	}
	if err != nil {
		return e.failed(method, err)
	}

	e.logger.Info().Str("method", string(method)).Int("bytes", len(data)).Msg("delivered")
	msg := fmt.Sprintf("delivered via %s", method)
	if filename != "" {
		msg = fmt.Sprintf("saved as %s", filename)
	}
	return DeliveryResult{Success: true, Message: msg}
}

func (e *executor) saveFile(ctx context.Context, filename string, data []byte) error {
	if e.caps.SaveFile == nil {
		return &DeliveryChannelError{Channel: "download", Code: "no_capability", Err: errors.New("no file-save capability")}
	}
	if err := e.caps.SaveFile(ctx, filename, data); err != nil {
		return &DeliveryChannelError{Channel: "download", Err: err}
	}
	return nil
}

func (e *executor) writeClipboard(ctx context.Context, text string) error {
	if e.caps.WriteClipboard == nil {
		return fmt.Errorf("%w: no clipboard capability", ErrClipboardUnavailable)
	}
	if err := e.caps.WriteClipboard(ctx, text); err != nil {
		if errors.Is(err, ErrClipboardUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrClipboardUnavailable, err)
	}
	return nil
}

func (e *executor) composeEmail(ctx context.Context, to, body string) error {
	if e.caps.ComposeEmail == nil {
		return &DeliveryChannelError{Channel: "email", Code: "no_capability", Err: errors.New("no mail-composition capability")}
	}
	if to == "" {
		return &DeliveryChannelError{Channel: "email", Code: "missing_recipient", Err: errors.New("no recipient address")}
	}
	if err := e.caps.ComposeEmail(ctx, to, "BEAP secure package", body); err != nil {
		var channelErr *DeliveryChannelError
		if errors.As(err, &channelErr) {
			return err
		}
		return &DeliveryChannelError{Channel: "email", Err: err}
	}
	return nil
}

func (e *executor) failed(method models.DeliveryMethod, err error) DeliveryResult {
	e.logger.Warn().Err(err).Str("method", string(method)).Msg("delivery failed")
	return DeliveryResult{Success: false, Message: err.Error(), Err: err}
}
