// Package observability defines the tracing, metrics and logging interfaces
// used by the dispatch pipeline, plus the semantic-convention constants
// every component records under.
//
// A [Provider] is injected into the coordinator; deeper helpers such as the
// HTTP send functions and stream decoders pick it up from the context via
// [ObserverFromContext] and [SpanFromContext]. [Nop] returns a provider
// that discards everything.
package observability
