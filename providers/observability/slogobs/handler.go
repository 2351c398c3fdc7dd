package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Handler is a slog.Handler rendering compact, pretty or JSON lines.
// Attributes are emitted sorted by key so output is stable across runs.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string // dotted group path
}

// HandlerOptions configures a Handler. A nil Colors enables colour only when
// Output is a terminal.
type HandlerOptions struct {
	Format Format
	Level  slog.Leveler
	Output io.Writer
	Colors *bool
}

// NewHandler builds a Handler. Output defaults to os.Stderr.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	colors := false
	if opts.Colors != nil {
		colors = *opts.Colors
	} else if file, ok := output.(*os.File); ok {
		colors = isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	}
	if opts.Format == FormatJSON {
		colors = false
	}

	return &Handler{
		format: ParseFormat(string(opts.Format)),
		level:  level,
		output: output,
		colors: colors,
		mu:     &sync.Mutex{},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clone(h.attrs)
	for _, attr := range attrs {
		attr.Key = h.prefix + attr.Key
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		fields[attr.Key] = attr.Value.Resolve().Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields[h.prefix+attr.Key] = attrValue(attr.Value.Resolve())
		return true
	})

	var line []byte
	var err error
	switch h.format {
	case FormatJSON:
		line, err = h.renderJSON(record, fields)
	case FormatPretty:
		line = h.renderPretty(record, fields)
	default:
		line, err = h.renderCompact(record, fields)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.output.Write(line)
	return err
}

func attrValue(value slog.Value) any {
	switch value.Kind() {
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindTime:
		return value.Time().Format(time.RFC3339)
	}
	return value.Any()
}

func (h *Handler) header(record slog.Record) string {
	level := fmt.Sprintf("%5s", levelString(record.Level))
	if h.colors {
		level = colorFor(record.Level) + level + colorReset
	}
	return record.Time.Format(time.DateTime) + " " + level + " " + record.Message
}

func (h *Handler) renderCompact(record slog.Record, fields map[string]any) ([]byte, error) {
	line := h.header(record)
	if len(fields) > 0 {
		// encoding/json sorts map keys
		encoded, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("encoding log attributes: %w", err)
		}
		line += " -> " + string(encoded)
	}
	return []byte(line + "\n"), nil
}

func (h *Handler) renderPretty(record slog.Record, fields map[string]any) []byte {
	var builder strings.Builder
	builder.WriteString(h.header(record))
	builder.WriteByte('\n')
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(&builder, "    %s = %v\n", key, fields[key])
	}
	return []byte(builder.String())
}

func (h *Handler) renderJSON(record slog.Record, fields map[string]any) ([]byte, error) {
	fields["time"] = record.Time.Format(time.RFC3339)
	fields["level"] = levelString(record.Level)
	fields["msg"] = record.Message
	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding log record: %w", err)
	}
	return append(encoded, '\n'), nil
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorFor(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}
