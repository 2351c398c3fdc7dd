// Package codec maps between the normalized request and result types and the
// three provider wire families. The family set is closed: every entry point
// switches exhaustively over registry.Shape or registry.StreamKind and
// delegates to the openai, anthropic or gemini packages.
package codec
