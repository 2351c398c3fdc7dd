package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option configures an Observer.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	colors *bool
	logger *slog.Logger // bypasses the custom handler when set
}

func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

func WithOutput(output io.Writer) Option {
	return func(c *config) { c.output = output }
}

// WithColors forces ANSI colours on or off. Without it colours are enabled
// only when the output is a terminal.
func WithColors(enabled bool) Option {
	return func(c *config) { c.colors = &enabled }
}

// WithLogger routes everything through an existing logger; format, level,
// output and colour options are then ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
