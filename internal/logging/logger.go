// Package logging provides structured logging using zerolog.
//
// Console output is used when stderr is a terminal and JSON otherwise.
// Loggers travel with a context.Context so each collection run can carry
// its own fields:
//
//	log := logging.New(logging.Config{Level: "debug"})
//	ctx := logging.WithLogger(context.Background(), &log)
//	ctx = logging.WithRunID(ctx, uuid.NewString())
//	logging.FromContext(ctx).Info().Str("collection", dir).Msg("Resolving")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn or error.
	Level string

	// Format is auto, console or json. Auto picks console on a terminal.
	Format string

	// Output defaults to stderr.
	Output io.Writer

	// NoColor disables color output in console mode.
	NoColor bool
}

var defaultLogger = New(Config{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
}

// New creates a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	writer := out
	if useConsole(cfg.Format, out) {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
		}
	}

	level := ParseLevel(cfg.Level)
	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "warning":
		return zerolog.WarnLevel
	case "":
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "json":
		return false
	case "console", "pretty", "text":
		return true
	}
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
