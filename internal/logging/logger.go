// Package logging builds the slog loggers shared by the CLI and the adapters.
package logging

import (
	"io"
	"log/slog"
	"os"
)

type options struct {
	out  io.Writer
	json bool
}

// Option configures New.
type Option func(*options)

// WithOutput redirects log output. Stderr by default, so stdout stays free for
// command output and JSON-RPC.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithJSON switches to the JSON handler, used by the HTTP server.
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// New creates a configured application logger.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	o := options{out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if o.json {
		return slog.New(slog.NewJSONHandler(o.out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(o.out, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
