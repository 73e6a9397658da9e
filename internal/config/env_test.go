// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"CONFIG": "/path/to/config.json",

		"APP_PASSPHRASE": "correct horse battery staple",
		"APP_VERSION":    "1.2.3",

		// Storage has nested prefixes: STORAGE_ + DB_ / FILES_
		"STORAGE_DB_DATABASE_URI":     "/home/user/.beap/handshakes.db",
		"STORAGE_FILES_BLOB_DIR":      "/var/blobs",
		"STORAGE_FILES_IDENTITY_PATH": "/home/user/.beap/identity.key",

		"PIPELINE_RASTER_DPI": "150",

		"MAILER_ADDRESS":         "localhost:8025",
		"MAILER_REQUEST_TIMEOUT": "30s",

		"DELIVERY_DOWNLOAD_DIR": "/home/user/Downloads",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)

	assert.Equal(t, "correct horse battery staple", cfg.App.Passphrase)
	assert.Equal(t, "1.2.3", cfg.App.Version)

	assert.Equal(t, "/home/user/.beap/handshakes.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/var/blobs", cfg.Storage.Files.BlobDir)
	assert.Equal(t, "/home/user/.beap/identity.key", cfg.Storage.Files.IdentityPath)

	assert.Equal(t, 150, cfg.Pipeline.RasterDPI)

	assert.Equal(t, "localhost:8025", cfg.Mailer.Address)
	assert.Equal(t, 30*time.Second, cfg.Mailer.RequestTimeout)

	assert.Equal(t, "/home/user/Downloads", cfg.Delivery.DownloadDir)
}

func TestParseEnv_PartialFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"APP_PASSPHRASE": "secret",
		"MAILER_ADDRESS": "localhost:8025",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	// App partially filled
	assert.Equal(t, "secret", cfg.App.Passphrase)
	assert.Empty(t, cfg.App.Version)

	// Mailer partially filled
	assert.Equal(t, "localhost:8025", cfg.Mailer.Address)
	assert.Zero(t, cfg.Mailer.RequestTimeout)

	// Others untouched
	assert.Empty(t, cfg.Storage.DB.DSN)
	assert.Empty(t, cfg.Storage.Files.BlobDir)
	assert.Zero(t, cfg.Pipeline.RasterDPI)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseEnv_EmptyEnv(t *testing.T) {
	// Arrange
	clearEnvVars(t)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	// In this version all nested fields are non-pointer values,
	// so "empty" state is represented by zero values.
	assert.Equal(t, "", cfg.JSONFilePath)

	assert.Equal(t, App{}, cfg.App)
	assert.Equal(t, Storage{}, cfg.Storage)
	assert.Equal(t, Mailer{}, cfg.Mailer)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"MAILER_REQUEST_TIMEOUT": "invalid_duration",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.Error(t, err)
	// Error wording may vary depending on parseEnv internals; assert loosely.
	assert.Contains(t, err.Error(), "env")
}

func TestParseEnv_InvalidInt(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"PIPELINE_RASTER_DPI": "very high",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.Error(t, err)
}

func TestParseEnv_DurationFormats(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"hours", "2h", 2 * time.Hour},
		{"minutes", "45m", 45 * time.Minute},
		{"seconds", "30s", 30 * time.Second},
		{"combined", "1h30m", 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			envVars := map[string]string{
				"MAILER_REQUEST_TIMEOUT": tt.envValue,
			}
			setEnvVars(t, envVars)

			// Act
			cfg := &StructuredConfig{}
			err := parseEnv(cfg)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Mailer.RequestTimeout)
		})
	}
}

// Helpers

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	clearEnvVars(t)
	for k, v := range vars {
		require.NoError(t, os.Setenv(k, v))
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG",

		"APP_PASSPHRASE",
		"APP_VERSION",

		"STORAGE_DB_DATABASE_URI",
		"STORAGE_FILES_BLOB_DIR",
		"STORAGE_FILES_IDENTITY_PATH",

		"PIPELINE_RASTER_DPI",

		"MAILER_ADDRESS",
		"MAILER_REQUEST_TIMEOUT",

		"DELIVERY_DOWNLOAD_DIR",
	}
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
}
