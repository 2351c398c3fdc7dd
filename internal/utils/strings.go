package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxStringLength bounds log previews and stored response snapshots.
const DefaultMaxStringLength = 500

// JSONToString renders object as JSON, indented when indent is true. A
// marshalling failure yields a JSON error object so the result is always
// safe to print.
func JSONToString(object any, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "failed to marshal to JSON: "+err.Error())
	}
	return string(encoded)
}

// TruncateString shortens s to maxLen bytes and records the original length.
// A non-positive maxLen means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// MaskSecret keeps the first and last four characters of a credential.
// Short values are fully masked.
func MaskSecret(secret string) string {
	if len(secret) <= 12 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
