package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates the application logger. Outside development the console output
// uses RFC3339 timestamps and upper-case levels.
func New(environment, level string) (*zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, environment, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, environment, level string) (*zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{Out: w, NoColor: environment != "development"}
	if environment != "development" {
		output.TimeFormat = time.RFC3339
		output.FormatLevel = func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		}
	}

	log := zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	return &log, nil
}

// Named returns a child logger tagged with a component name.
func Named(logger *zerolog.Logger, name string) *zerolog.Logger {
	log := logger.With().Str("name", name).Logger()
	return &log
}
