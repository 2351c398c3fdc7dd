// Package ai defines the provider-agnostic types shared by every provider
// family (OpenAI-compatible, Anthropic, Gemini). Each family package maps
// these types to and from its own wire format, keeping the dispatch layer
// decoupled from provider-specific details.
//
// Outgoing prompts are described by [Request] and its [Params]. Completed
// calls are normalized into a [Result]; streamed calls yield [StreamDelta]
// values that an [Accumulator] folds back into the same [Result] shape.
// Failures are reported as [*Error] values whose [ErrorKind] classifies them.
package ai
