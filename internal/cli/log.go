// Package cli implements the craftgraph command-line interface.
//
// The commands build a production graph for one recipe from a recipe book
// and apply expand, collapse and merge edits to it, either from a script,
// interactively, or over HTTP. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - plan: build a graph, apply an edit script, print tiers and requirements
//   - edit: interactive terminal editor
//   - recipes: list the recipes of a book
//   - serve: run the HTTP API with Prometheus metrics
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The config
// file's log_level sets the default. Loggers are passed through
// context.Context and explicitly to library components.
//
// # Configuration
//
// Defaults for --book, --rate, --strict and --addr are read from
// $XDG_CONFIG_HOME/craftgraph/config.toml, or the file named by
// $CRAFTGRAPH_CONFIG.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took once it is done.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time as a "took" field.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
