package config

import (
	"io"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

type fileDescriptor interface {
	Fd() uintptr
}

// Colour is only used when out is a terminal.
func isTerminal(out io.Writer) bool {
	file, ok := out.(fileDescriptor)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// NewLogger builds a logger writing to out with the configured level and format.
func NewLogger(cfg LogConfig, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), xerrors.Errorf("log.level: %w", err)
	}

	var writer io.Writer
	switch cfg.Format {
	case FormatJSON:
		writer = out
	case FormatConsole:
		writer = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    !isTerminal(out),
			TimeFormat: "15:04:05.000",
		}
	default:
		return zerolog.Nop(), xerrors.Errorf("unknown log.format '%v'", cfg.Format)
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
