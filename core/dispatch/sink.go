package dispatch

import "context"

// Sink receives every terminal target snapshot. Implementations must be safe
// for concurrent use; targets of one dispatch finish concurrently.
type Sink interface {
	Record(ctx context.Context, target Target) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, target Target) error

func (f SinkFunc) Record(ctx context.Context, target Target) error {
	return f(ctx, target)
}

type nopSink struct{}

func (nopSink) Record(context.Context, Target) error { return nil }
