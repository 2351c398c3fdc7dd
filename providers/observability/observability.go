package observability

import (
	"context"
	"time"
)

// Provider is the single injectable observer: tracing, metrics and logging.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// Tracer starts spans around dispatches and provider calls.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span represents a single unit of work, such as one target of a dispatch.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

// StatusCode represents the status of a span
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// Metrics hands out named counters and histograms.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// Counter is a monotonically increasing metric
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram records distribution of values
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// Logger provides structured logging capabilities
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute represents a key-value pair for metadata
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error creates an attribute under AttrError; a nil err yields an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}

// Nop returns a Provider that discards everything. Components fall back to it
// when no observer is configured so call sites never nil-check.
func Nop() Provider {
	return nopProvider{}
}

type nopProvider struct{}
type nopSpan struct{}
type nopInstrument struct{}

func (nopProvider) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, nopSpan{}
}
func (nopProvider) Counter(string) Counter                          { return nopInstrument{} }
func (nopProvider) Histogram(string) Histogram                      { return nopInstrument{} }
func (nopProvider) Trace(context.Context, string, ...Attribute)     {}
func (nopProvider) Debug(context.Context, string, ...Attribute)     {}
func (nopProvider) Info(context.Context, string, ...Attribute)      {}
func (nopProvider) Warn(context.Context, string, ...Attribute)      {}
func (nopProvider) Error(context.Context, string, ...Attribute)     {}
func (nopSpan) End()                                                {}
func (nopSpan) SetAttributes(...Attribute)                          {}
func (nopSpan) SetStatus(StatusCode, string)                        {}
func (nopSpan) RecordError(error)                                   {}
func (nopSpan) AddEvent(string, ...Attribute)                       {}
func (nopInstrument) Add(context.Context, int64, ...Attribute)      {}
func (nopInstrument) Record(context.Context, float64, ...Attribute) {}
