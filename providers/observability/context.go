package observability

import "context"

type spanKey struct{}
type observerKey struct{}

// SpanFromContext extracts a Span from the context.
// Returns nil if no span is present.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(Span)
	return span
}

// ContextWithSpan returns a new context with the given span attached.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanKey{}, span)
}

// ObserverFromContext returns the Provider attached with ContextWithObserver,
// or nil.
func ObserverFromContext(ctx context.Context) Provider {
	if ctx == nil {
		return nil
	}
	observer, _ := ctx.Value(observerKey{}).(Provider)
	return observer
}

// ContextWithObserver attaches observer to ctx so helpers deeper in the call
// chain (HTTP send, stream decoding) can log without an explicit parameter.
func ContextWithObserver(ctx context.Context, observer Provider) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, observerKey{}, observer)
}

// LoggerFrom returns the observer in ctx, or a no-op one.
func LoggerFrom(ctx context.Context) Logger {
	if observer := ObserverFromContext(ctx); observer != nil {
		return observer
	}
	return nopProvider{}
}
