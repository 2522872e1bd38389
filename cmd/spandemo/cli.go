package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"github.com/illuscio-dev/spanenvelope-go/config"
)

// CLI is the command line interface of spandemo. Every flag can also be set through a
// SPANDEMO_ prefixed environment variable, and overrides the configuration file.
type CLI struct {
	Config    string `kong:"type='existingfile',help='Path to a TOML configuration file.'"`
	Listen    string `kong:"help='Address to listen on, such as :8080.'"`
	LogLevel  string `kong:"help='Log level: trace, debug, info, warn or error.'"`
	LogFormat string `kong:"help='Log format: console or json.'"`
	Sniff     bool   `kong:"help='Decode request bodies without a Content-Type by trying every decoder.'"`
}

// Configuration loads the configuration file, if any, and applies the flags that
// were set over it.
func (c *CLI) Configuration() (config.Config, error) {
	cfg := config.Default()
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if c.Listen != "" {
		cfg.Server.Listen = c.Listen
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if c.Sniff {
		cfg.Encoding.Sniff = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Run serves the demo API until ctx is done, then shuts the server down gracefully.
func (c *CLI) Run(ctx context.Context, logOut io.Writer) error {
	cfg, err := c.Configuration()
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}
	// Library packages log through the global logger.
	log.Logger = logger

	handler, err := newHandler(
		cfg, logger, newWidgetStore(demoWidgets(time.Now())...), time.Now,
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", cfg.Server.Listen).Msg("serving widgets")
		serverDone <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Debug().Msg("shutting down")
	case serverErr := <-serverDone:
		if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
			return xerrors.Errorf("web server error: %w", serverErr)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second,
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return xerrors.Errorf("failed shutting down web server: %w", err)
	}
	return nil
}
