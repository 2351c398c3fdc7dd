// Package anthropic implements the Anthropic Messages wire shape: request
// translation (separate system prompt, mandatory max_tokens), whole-body
// normalization and the event-typed-sse stream decoder.
package anthropic
