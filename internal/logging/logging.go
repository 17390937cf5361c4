// Package logging configures the structured zerolog logger shared across
// vfsd's components: Component derives a child logger tagged with a
// "component" field (vfsd itself tags the vfs.FS logger "vfs").
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the root logger's level, output format, and destination.
type Config struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New builds a root logger from cfg. An empty or unrecognized Level falls
// back to info.
func New(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSON {
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

// Component returns a child logger tagged with the given component name,
// e.g. "metadata", "blob", "watch", "fuseadapter".
func Component(base zerolog.Logger, component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}
