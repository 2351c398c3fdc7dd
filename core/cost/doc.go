// Package cost resolves per-model token prices and computes request cost.
//
// An [Engine] consults its layers in order and returns the first price found:
// explicit overrides (usually from the config file), then any registered
// [PriceSource] (a cached or remote table), then the built-in table. Model
// ids are normalized before lookup, so "openai/gpt-4o-mini",
// "models/gemini-2.0-flash-001" and "claude-3-5-haiku-latest" all find their
// base entries.
//
// An unknown model has no price. Callers must keep that distinct from a zero
// cost: [Engine.Compute] returns nil in that case.
package cost
