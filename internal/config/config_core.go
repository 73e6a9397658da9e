package config

import (
	"fmt"
	"time"
)

// CoreApp holds application-level settings used by the core runtime.
type CoreApp struct {
	// Passphrase protects the identity key and local blobs at rest.
	Passphrase string
	// Version is the running application version.
	Version string
}

// CoreStorage groups the storage settings used by the core runtime.
type CoreStorage struct {
	// DSN is the SQLite path of the handshake store.
	DSN string
	// BlobDir is the encrypted blob directory.
	BlobDir string
	// IdentityPath is the encrypted identity key file.
	IdentityPath string
}

// CoreMailer holds the external mail-composition service settings.
type CoreMailer struct {
	// Address is the mailer endpoint; empty disables email delivery.
	Address string
	// RequestTimeout is the default timeout for mailer requests.
	RequestTimeout time.Duration
}

// CorePipeline holds attachment-pipeline settings.
type CorePipeline struct {
	// RasterDPI is the raster proof resolution; zero selects the default.
	RasterDPI int
}

// CoreDelivery holds delivery-channel settings.
type CoreDelivery struct {
	// DownloadDir is where download delivery writes packages.
	DownloadDir string
}

// CoreConfig is the validated configuration view consumed by the core
// runtime, assembled from [StructuredConfig].
type CoreConfig struct {
	// App contains application-level settings.
	App CoreApp
	// Storage contains storage backend settings.
	Storage CoreStorage
	// Mailer contains mail-composition settings.
	Mailer CoreMailer
	// Pipeline contains attachment-pipeline settings.
	Pipeline CorePipeline
	// Delivery contains delivery-channel settings.
	Delivery CoreDelivery
}

// GetCoreConfig builds and validates the core config view from the merged
// structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the core runtime, and validates the resulting [CoreConfig].
func GetCoreConfig() (*CoreConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	coreCfg := &CoreConfig{
		App: CoreApp{
			Passphrase: cfg.App.Passphrase,
			Version:    cfg.App.Version,
		},
		Storage: CoreStorage{
			DSN:          cfg.Storage.DB.DSN,
			BlobDir:      cfg.Storage.Files.BlobDir,
			IdentityPath: cfg.Storage.Files.IdentityPath,
		},
		Mailer: CoreMailer{
			Address:        cfg.Mailer.Address,
			RequestTimeout: cfg.Mailer.RequestTimeout,
		},
		Pipeline: CorePipeline{
			RasterDPI: cfg.Pipeline.RasterDPI,
		},
		Delivery: CoreDelivery{
			DownloadDir: cfg.Delivery.DownloadDir,
		},
	}

	return coreCfg, coreCfg.validate()
}
