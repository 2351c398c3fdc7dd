// Package parse decodes JSON-mode answers. Models asked for JSON still wrap it
// in markdown fences or a sentence of prose, emit single quotes and trailing
// commas, or echo schema envelopes such as {"type":"string","value":"x"}.
// Decoding extracts the JSON candidate, repairs it with jsonrepair when the
// strict decoder fails, and finally unwraps schema envelopes.
//
// [As] decodes text into any type; [ResultAs] decodes a normalized
// [ai.Result] and refuses failed results.
package parse
