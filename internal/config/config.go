// Package config provides functionality for managing configuration options
// for the server and client using command-line flags, an optional JSON file
// and environment variables. Later sources override earlier ones:
// defaults, flags, config file, environment.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerOptions holds the configuration values for the server.
type ServerOptions struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" env:"SERVER_ADDRESS"`

	// DatabaseDSN is a postgres:// DSN or a SQLite file path.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// TLSCert and TLSKey locate the server certificate and key.
	TLSCert string `json:"tls_cert" env:"TLS_CERT"`
	TLSKey  string `json:"tls_key" env:"TLS_KEY"`

	// LogLevel is passed to the logger ("debug", "info", ...).
	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// SignatureSkew is the accepted clock difference for signed requests.
	SignatureSkew time.Duration `json:"-" env:"SIGNATURE_SKEW"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// ClientOptions holds the configuration values for the client.
type ClientOptions struct {
	// ServerURL is the base URL of the GophDeck server.
	ServerURL string `json:"url" env:"GOPHDECK_URL"`
	// CAFile is the CA certificate that signed the server certificate.
	CAFile string `json:"ca" env:"GOPHDECK_CA"`
	// KeyFile is where the secret is persisted.
	KeyFile string `json:"key_file" env:"GOPHDECK_KEY_FILE"`
	// Verbose enables debug logging.
	Verbose bool `json:"verbose" env:"GOPHDECK_VERBOSE"`
	// ShowVersion prints build information and exits.
	ShowVersion bool `json:"-"`
}

// ParseServer parses args (without the program name) into ServerOptions.
func ParseServer(args []string) (*ServerOptions, error) {
	options := &ServerOptions{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "gophdeck.db", "postgres DSN or sqlite file path")
	fs.StringVar(&options.TLSCert, "cert", "certs/server.crt", "path to server TLS certificate")
	fs.StringVar(&options.TLSKey, "key", "certs/server.key", "path to server TLS key")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.DurationVar(&options.SignatureSkew, "skew", 5*time.Minute, "allowed clock skew for signed requests")
	fs.StringVar(&options.Config, "config", "", "path to config file")
	fs.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadConfig(options.Config, os.Getenv("CONFIG"), options); err != nil {
		return nil, err
	}
	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return options, nil
}

// ParseClient parses args (without the program name) into ClientOptions.
func ParseClient(args []string) (*ClientOptions, error) {
	options := &ClientOptions{}
	var configPath string

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&options.ServerURL, "url", "https://localhost:8080", "server base URL")
	fs.StringVar(&options.CAFile, "ca", "certs/ca.crt", "path to CA cert")
	fs.StringVar(&options.KeyFile, "key-file", "gophdeck.key", "path to the secret key file")
	fs.BoolVar(&options.Verbose, "v", false, "verbose logging")
	fs.BoolVar(&options.ShowVersion, "version", false, "show build version and date")
	fs.StringVar(&configPath, "config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadConfig(configPath, os.Getenv("GOPHDECK_CONFIG"), options); err != nil {
		return nil, err
	}
	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return options, nil
}

// loadConfig decodes the JSON file at path (or envPath when set) into
// target. A missing file is not an error.
func loadConfig(path, envPath string, target any) error {
	if envPath != "" {
		path = envPath
	}
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
