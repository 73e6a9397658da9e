// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for beap-core.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the at-rest passphrase
	// and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for all persistence backends: the local
	// handshake database, the encrypted blob store, and the identity file.
	Storage Storage `envPrefix:"STORAGE_"`

	// Pipeline holds attachment-processing settings.
	Pipeline Pipeline `envPrefix:"PIPELINE_"`

	// Mailer holds the address and timeout of the external
	// mail-composition service. Optional; email delivery is disabled when
	// the address is empty.
	Mailer Mailer `envPrefix:"MAILER_"`

	// Delivery holds settings for the download delivery channel.
	Delivery Delivery `envPrefix:"DELIVERY_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Passphrase protects the identity private key and local blobs at
	// rest (Argon2id key derivation). Must be kept confidential.
	// Env: APP_PASSPHRASE
	Passphrase string `env:"PASSPHRASE"`

	// Version is the semantic version string of the running application
	// (e.g. "1.2.3").
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for all storage backends.
type Storage struct {
	// DB holds the local handshake database settings.
	DB DB `envPrefix:"DB_"`

	// Files holds the file-system storage settings.
	Files Files `envPrefix:"FILES_"`
}

// DB holds connection settings for the local handshake database.
type DB struct {
	// DSN is the SQLite database path used for handshake records
	// (e.g. "/home/user/.beap/handshakes.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Files holds file-system settings for local storage.
type Files struct {
	// BlobDir is the directory where encrypted attachment originals and
	// previews are stored.
	// Env: STORAGE_FILES_BLOB_DIR
	BlobDir string `env:"BLOB_DIR"`

	// IdentityPath is the path of the encrypted identity key file.
	// Env: STORAGE_FILES_IDENTITY_PATH
	IdentityPath string `env:"IDENTITY_PATH"`
}

// Pipeline holds attachment-processing settings.
type Pipeline struct {
	// RasterDPI is the resolution used when rendering document pages for
	// raster proofs. Zero selects the built-in default.
	// Env: PIPELINE_RASTER_DPI
	RasterDPI int `env:"RASTER_DPI"`
}

// Mailer holds settings for the external mail-composition service.
type Mailer struct {
	// Address is the TCP address of the mail-composition service, in
	// "host:port" format.
	// Env: MAILER_ADDRESS
	Address string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single
	// mail-composition request (e.g. "30s", "1m").
	// Env: MAILER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Delivery holds settings for the download delivery channel.
type Delivery struct {
	// DownloadDir is the directory packages are saved into by download
	// delivery.
	// Env: DELIVERY_DOWNLOAD_DIR
	DownloadDir string `env:"DOWNLOAD_DIR"`
}

// GetStructuredConfig loads and merges the application configuration from
// all available sources in the following priority order (last source wins
// for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
