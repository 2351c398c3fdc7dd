// Package slogobs implements observability.Provider with log/slog.
//
// [New] builds an [Observer] whose [Handler] renders compact, pretty or JSON
// lines; format and level default to POLYPROMPT_LOG_FORMAT and
// POLYPROMPT_LOG_LEVEL. Colours are enabled only when writing to a terminal.
package slogobs
