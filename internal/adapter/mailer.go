// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/beapsec/beap-core/internal/config"
	"github.com/beapsec/beap-core/internal/logger"
)

type httpMailComposer struct {
	client *resty.Client
	logger *logger.Logger
}

// composeRequest is the wire payload of the mail-composition endpoint.
type composeRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewHTTPMailComposer constructs an HTTP/REST implementation of
// [MailComposer]. It normalises and validates the base URL from cfg.Address
// and configures the underlying client with the resolved base URL and
// request timeout.
//
// Returns an error if cfg.Address is empty or cannot be parsed as a valid
// URL.
func NewHTTPMailComposer(cfg config.CoreMailer, log *logger.Logger) (MailComposer, error) {
	baseURL, err := normalizeBaseURL(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid mailer address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	return &httpMailComposer{client: client, logger: log}, nil
}

func (m *httpMailComposer) Compose(ctx context.Context, to, subject, body string) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(composeRequest{To: to, Subject: subject, Body: body}).
		Post("/api/mail/compose")
	if err != nil {
		return fmt.Errorf("compose request: %w", err)
	}

	if err = mapHTTPError(resp); err != nil {
		m.logger.Warn().Err(err).Str("to", to).Msg("mail composition rejected")
		return err
	}

	m.logger.Info().Str("to", to).Int("bytes", len(body)).Msg("mail draft composed")
	return nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return u.String(), nil
}
