// Package openai implements the OpenAI-compatible chat-completions wire
// shape: request translation, whole-body normalization and the
// delta-json-sse stream decoder.
//
// Besides OpenAI itself the shape is spoken by OpenRouter, DeepSeek,
// Mistral, Groq, Together, Perplexity, xAI, Ollama and Gemini's
// OpenAI-compatible endpoint; provider-specific extensions (Perplexity
// citations and search controls, reasoning_content) are handled here too.
package openai
