// SPDX-License-Identifier: Apache-2.0

package config

import "strings"

// validate checks that the assembled [CoreConfig] satisfies all runtime
// invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or one of the sentinel errors
// from errors.go otherwise.
func (cfg *CoreConfig) validate() error {
	if cfg.Storage.DSN == "" || strings.Contains(cfg.Storage.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.BlobDir == "" || cfg.Storage.IdentityPath == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.Passphrase == "" {
		return ErrInvalidAppConfigs
	}

	// The mailer is optional, but an address without a timeout would hang
	// email delivery on a dead endpoint.
	if cfg.Mailer.Address != "" && cfg.Mailer.RequestTimeout == 0 {
		return ErrInvalidMailerConfigs
	}

	if cfg.Pipeline.RasterDPI < 0 {
		return ErrInvalidPipelineConfigs
	}

	return nil
}
