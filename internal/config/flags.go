package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d database DSN (handshake store path)
//	-f blob storage directory
//	-identity identity key file path
//	-passphrase at-rest encryption passphrase
//	-mailer-address mail-composition service address in format [host]:[port]
//	-request-timeout mailer request timeout (e.g., "30s", "1m")
//	-raster-dpi raster proof resolution
//	-download-dir download delivery output directory
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var mailerAddress NetAddress
	var blobDir string
	var identityPath string
	var databaseDSN string
	var passphrase string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var rasterDPI int
	var downloadDir string

	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&blobDir, "f", "", "Blob storage directory")
	flag.StringVar(&identityPath, "identity", "", "Identity key file path")
	flag.StringVar(&passphrase, "passphrase", "", "At-rest encryption passphrase")
	flag.Var(&mailerAddress, "mailer-address", "Mailer net address host:port")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Mailer request timeout (e.g., 30s, 1m)")
	flag.IntVar(&rasterDPI, "raster-dpi", 0, "Raster proof resolution")
	flag.StringVar(&downloadDir, "download-dir", "", "Download delivery output directory")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			Passphrase: passphrase,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Files: Files{
				BlobDir:      blobDir,
				IdentityPath: identityPath,
			},
		},
		Pipeline: Pipeline{
			RasterDPI: rasterDPI,
		},
		Mailer: Mailer{
			Address:        mailerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Delivery: Delivery{
			DownloadDir: downloadDir,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
