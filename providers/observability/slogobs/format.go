package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Format selects how the handler renders records.
type Format string

const (
	// FormatCompact prints one line per record with the attributes as a JSON
	// object: 2026-01-02 15:04:05  INFO dispatch started -> {"dispatch.id":"…"}
	FormatCompact Format = "compact"

	// FormatPretty prints the message line followed by one indented line per
	// attribute, sorted by key.
	FormatPretty Format = "pretty"

	// FormatJSON prints one JSON object per record, for log shippers.
	FormatJSON Format = "json"
)

// LevelTrace sits below slog.LevelDebug and is used for per-event stream logs.
const LevelTrace = slog.LevelDebug - 4

const (
	envLogFormat = "POLYPROMPT_LOG_FORMAT"
	envLogLevel  = "POLYPROMPT_LOG_LEVEL"
)

// ParseFormat maps a case-insensitive name to a Format; unknown names yield
// FormatCompact.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPretty:
		return FormatPretty
	case FormatJSON:
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads POLYPROMPT_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv(envLogFormat, "LOG_FORMAT"))
}

// ParseLevel maps TRACE, DEBUG, INFO, WARN/WARNING and ERROR
// (case-insensitive) to a slog.Level. Unknown values return INFO and an error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelFromEnv reads POLYPROMPT_LOG_LEVEL, then LOG_LEVEL, defaulting to INFO.
// An unknown value is reported on stderr and treated as INFO.
func LevelFromEnv() slog.Level {
	level, err := ParseLevel(firstEnv(envLogLevel, "LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "slogobs: %v, using INFO\n", err)
	}
	return level
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
