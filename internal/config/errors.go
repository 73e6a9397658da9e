package config

import "errors"

// Validation errors returned by [CoreConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings (for
	// example, empty DSN or unsupported in-memory DSN, missing blob or
	// identity paths).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, missing at-rest passphrase).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidMailerConfigs indicates invalid mailer settings (for
	// example, an address without a request timeout).
	ErrInvalidMailerConfigs = errors.New("invalid mailer configuration")
	// ErrInvalidPipelineConfigs indicates invalid attachment-pipeline
	// settings (for example, a negative raster DPI).
	ErrInvalidPipelineConfigs = errors.New("invalid pipeline configuration")
)
