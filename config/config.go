// Package config loads the TOML configuration of a service and builds its logger.
package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Paging   PagingConfig   `toml:"paging"`
	Encoding EncodingConfig `toml:"encoding"`
}

type ServerConfig struct {
	// Address to listen on, such as ":8080".
	Listen string `toml:"listen"`
	// How many blocking body writes may run at once.
	MaxBlockingWrites int `toml:"max_blocking_writes"`
	// How long in-flight requests get to finish on shutdown.
	ShutdownSeconds int `toml:"shutdown_seconds"`
}

type LogConfig struct {
	// zerolog level name: trace, debug, info, warn, error, fatal, panic or disabled.
	Level string `toml:"level"`
	// console or json.
	Format string `toml:"format"`
}

type PagingConfig struct {
	// Page size used when a request does not ask for one.
	DefaultSize int `toml:"default_size"`
	// Largest page size a request may ask for. 0 means no limit.
	MaxSize int `toml:"max_size"`
}

type EncodingConfig struct {
	// Whether request bodies without a Content-Type are decoded by trying every
	// decoder.
	Sniff bool `toml:"sniff"`
}

// Default returns the configuration used for anything a file does not set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:            ":8080",
			MaxBlockingWrites: 16,
			ShutdownSeconds:   10,
		},
		Log: LogConfig{
			Level:  zerolog.InfoLevel.String(),
			Format: FormatConsole,
		},
		Paging: PagingConfig{
			DefaultSize: 20,
			MaxSize:     100,
		},
		Encoding: EncodingConfig{
			Sniff: false,
		},
	}
}

// Load reads the TOML file at path over Default() and validates the result. Keys the
// configuration does not know are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("config load failed (%s): %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, xerrors.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, xerrors.Errorf("config parse failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		return xerrors.New("server.listen is required")
	}
	if cfg.Server.MaxBlockingWrites < 1 {
		return xerrors.Errorf(
			"server.max_blocking_writes must be positive, got %v",
			cfg.Server.MaxBlockingWrites,
		)
	}
	if cfg.Server.ShutdownSeconds < 0 {
		return xerrors.Errorf(
			"server.shutdown_seconds is negative: %v", cfg.Server.ShutdownSeconds,
		)
	}

	if strings.TrimSpace(cfg.Log.Level) == "" {
		return xerrors.New("log.level is required")
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return xerrors.Errorf("log.level: %w", err)
	}
	if cfg.Log.Format != FormatConsole && cfg.Log.Format != FormatJSON {
		return xerrors.Errorf(
			"log.format must be %v or %v, got '%v'",
			FormatConsole, FormatJSON, cfg.Log.Format,
		)
	}

	if cfg.Paging.DefaultSize < 1 {
		return xerrors.Errorf(
			"paging.default_size must be positive, got %v", cfg.Paging.DefaultSize,
		)
	}
	if cfg.Paging.MaxSize != 0 && cfg.Paging.MaxSize < cfg.Paging.DefaultSize {
		return xerrors.Errorf(
			"paging.max_size %v is below paging.default_size %v",
			cfg.Paging.MaxSize, cfg.Paging.DefaultSize,
		)
	}

	return nil
}
