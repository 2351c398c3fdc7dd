package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leofalp/polyprompt/providers/observability"
)

// Observer implements observability.Provider on top of log/slog. Spans and
// metric updates are emitted as debug records; counters keep running totals
// in memory so they can be inspected with CounterValue.
type Observer struct {
	logger *slog.Logger

	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

var _ observability.Provider = (*Observer)(nil)

// New creates an Observer. Without options the format and level come from
// POLYPROMPT_LOG_FORMAT and POLYPROMPT_LOG_LEVEL and output goes to stderr.
//
//	observer := slogobs.New(slogobs.WithFormat(slogobs.FormatJSON), slogobs.WithLevel(slog.LevelDebug))
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(NewHandler(&HandlerOptions{
			Format: cfg.format,
			Level:  cfg.level,
			Output: cfg.output,
			Colors: cfg.colors,
		}))
	}

	return &Observer{
		logger:     logger,
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
}

// Logger exposes the underlying slog.Logger, e.g. for HTTP middleware.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// --- TRACING ---

// StartSpan logs the span start and returns ctx carrying the new span.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &span{name: name, start: time.Now(), logger: o.logger, attrs: attrs}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "span started", span.logAttrs("span.start")...)
	return observability.ContextWithSpan(ctx, span), span
}

type span struct {
	name   string
	start  time.Time
	logger *slog.Logger

	mu    sync.Mutex
	attrs []observability.Attribute
}

func (s *span) logAttrs(event string, extra ...slog.Attr) []slog.Attr {
	out := append([]slog.Attr{slog.String("span", s.name), slog.String("event", event)}, extra...)
	for _, attr := range s.attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	return out
}

func (s *span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span ended",
		s.logAttrs("span.end", slog.Duration(observability.AttrDuration, time.Since(s.start)))...)
}

func (s *span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *span) SetStatus(code observability.StatusCode, description string) {
	status := "unset"
	switch code {
	case observability.StatusOK:
		status = "ok"
	case observability.StatusError:
		status = "error"
	}
	s.SetAttributes(observability.String(observability.AttrStatus, status))
	if description != "" {
		s.SetAttributes(observability.String(observability.AttrError, description))
	}
}

func (s *span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "span error",
		slog.String("span", s.name), slog.String(observability.AttrError, err.Error()))
}

func (s *span) AddEvent(name string, attrs ...observability.Attribute) {
	out := []slog.Attr{slog.String("span", s.name), slog.String("event", name)}
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span event", out...)
}

// --- METRICS ---

// Counter returns the named counter, creating it on first use.
func (o *Observer) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.counters[name]
	if !ok {
		c = &counter{name: name, logger: o.logger}
		o.counters[name] = c
	}
	return c
}

// Histogram returns the named histogram, creating it on first use.
func (o *Observer) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.histograms[name]
	if !ok {
		h = &histogram{name: name, logger: o.logger}
		o.histograms[name] = h
	}
	return h
}

// CounterValue returns the running total of the named counter, 0 if unused.
func (o *Observer) CounterValue(name string) int64 {
	o.mu.Lock()
	c, ok := o.counters[name]
	o.mu.Unlock()
	if !ok {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

type counter struct {
	name   string
	logger *slog.Logger
	mu     sync.Mutex
	value  int64
}

func (c *counter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.value += value
	total := c.value
	c.mu.Unlock()

	out := []slog.Attr{slog.String("metric", c.name), slog.Int64("value", total), slog.Int64("delta", value)}
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "counter", out...)
}

type histogram struct {
	name   string
	logger *slog.Logger
}

func (h *histogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	out := []slog.Attr{slog.String("metric", h.name), slog.Float64("value", value)}
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	h.logger.LogAttrs(ctx, slog.LevelDebug, "histogram", out...)
}

// --- LOGGING ---

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, LevelTrace, msg, attrs)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs []observability.Attribute) {
	if !o.logger.Enabled(ctx, level) {
		return
	}
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	o.logger.LogAttrs(ctx, level, msg, out...)
}
