package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Passphrase string `json:"passphrase"`
		Version    string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Files struct {
			BlobDir      string `json:"blob_dir"`
			IdentityPath string `json:"identity_path"`
		} `json:"files,omitempty"`
	} `json:"storage,omitempty"`

	Pipeline struct {
		RasterDPI int `json:"raster_dpi"`
	} `json:"pipeline,omitempty"`

	Mailer struct {
		Address        string   `json:"address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"mailer,omitempty"`

	Delivery struct {
		DownloadDir string `json:"download_dir"`
	} `json:"delivery,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Passphrase: jsonCfg.App.Passphrase,
			Version:    jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Files: Files{
				BlobDir:      jsonCfg.Storage.Files.BlobDir,
				IdentityPath: jsonCfg.Storage.Files.IdentityPath,
			},
		},
		Pipeline: Pipeline{
			RasterDPI: jsonCfg.Pipeline.RasterDPI,
		},
		Mailer: Mailer{
			Address:        jsonCfg.Mailer.Address,
			RequestTimeout: time.Duration(jsonCfg.Mailer.RequestTimeout),
		},
		Delivery: Delivery{
			DownloadDir: jsonCfg.Delivery.DownloadDir,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
