// Package logging builds the zerolog logger used across a run.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. Console mode writes
// human readable lines, otherwise one JSON object per line. Every line
// carries the run id.
func New(w io.Writer, level string, console bool, runID string) (zerolog.Logger, error) {
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	if console {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(w).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("service", "csvtrans")
	if runID != "" {
		ctx = ctx.Str("run_id", runID)
	}

	return ctx.Logger(), nil
}
