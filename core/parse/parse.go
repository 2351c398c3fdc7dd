package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/polyprompt/providers/ai"
)

// ErrEmpty is returned when there is no text to decode.
var ErrEmpty = errors.New("parse: empty content")

// ResultAs decodes the answer text of a successful result.
func ResultAs[T any](result ai.Result) (T, error) {
	var zero T
	if result.Error != nil {
		return zero, fmt.Errorf("parse: result failed: %w", result.Error)
	}
	return As[T](result.Text)
}

// As decodes content into T. Scalars are converted with strconv (a schema
// envelope around the scalar is accepted); everything else goes through
// JSON decoding with extraction, repair and envelope unwrapping.
func As[T any](content string) (T, error) {
	var out T
	target := reflect.ValueOf(&out).Elem()
	trimmed := strings.TrimSpace(content)

	switch target.Kind() {
	case reflect.String:
		if unwrapped, ok := unwrapScalar(trimmed); ok {
			target.SetString(unwrapped)
		} else {
			target.SetString(content)
		}
		return out, nil
	case reflect.Bool, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		err := setScalar(target, trimmed)
		if err != nil {
			if unwrapped, ok := unwrapScalar(trimmed); ok {
				err = setScalar(target, unwrapped)
			}
		}
		if err != nil {
			return out, fmt.Errorf("parse: %q as %s: %w", trimmed, target.Kind(), err)
		}
		return out, nil
	}

	if trimmed == "" {
		return out, ErrEmpty
	}
	if err := decodeJSON(trimmed, &out); err != nil {
		return out, fmt.Errorf("parse: decoding %T: %w", out, err)
	}
	return out, nil
}

func setScalar(target reflect.Value, text string) error {
	switch target.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(text)
		if err == nil {
			target.SetBool(v)
		}
		return err
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(text, target.Type().Bits())
		if err == nil {
			target.SetFloat(v)
		}
		return err
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(text, 10, target.Type().Bits())
		if err == nil {
			target.SetInt(v)
		}
		return err
	default:
		v, err := strconv.ParseUint(text, 10, target.Type().Bits())
		if err == nil {
			target.SetUint(v)
		}
		return err
	}
}

// decodeJSON tries progressively more lenient readings of content.
func decodeJSON(content string, out any) error {
	candidate := Extract(content)
	strictErr := json.Unmarshal([]byte(candidate), out)
	if strictErr == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return fmt.Errorf("%w (repair failed: %v)", strictErr, err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err == nil {
		return nil
	}

	unwrapped, err := unwrapEnvelopes(repaired)
	if err != nil {
		return strictErr
	}
	if err := json.Unmarshal([]byte(unwrapped), out); err != nil {
		return fmt.Errorf("%w (after repair: %v)", strictErr, err)
	}
	return nil
}

// Extract returns the JSON candidate inside content: the body of the first
// fenced code block if there is one, otherwise the span from the first
// opening brace or bracket to the last matching closer. Content without any
// is returned trimmed.
func Extract(content string) string {
	text := strings.TrimSpace(content)
	if body, ok := fencedBlock(text); ok {
		text = body
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	if end := strings.LastIndexByte(text, closer); end > start {
		return text[start : end+1]
	}
	// Unterminated: leave the tail for jsonrepair to close.
	return text[start:]
}

func fencedBlock(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}
	rest := text[open+3:]
	// Skip the info string (```json).
	if newline := strings.IndexByte(rest, '\n'); newline >= 0 {
		rest = rest[newline+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}

// unwrapScalar reads {"type": ..., "value": v} and returns v as text.
func unwrapScalar(content string) (string, bool) {
	if !strings.HasPrefix(content, "{") {
		return "", false
	}
	var envelope map[string]any
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return "", false
	}
	value, ok := envelopeValue(envelope)
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case float64, bool:
		return fmt.Sprint(v), true
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func envelopeValue(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, ok := m["type"]; !ok {
		return nil, false
	}
	value, ok := m["value"]
	return value, ok
}

// unwrapEnvelopes replaces every schema envelope in a JSON document with its
// value.
func unwrapEnvelopes(document string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(document), &data); err != nil {
		return "", err
	}
	raw, err := json.Marshal(unwrap(data))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := envelopeValue(v); ok {
			return unwrap(value)
		}
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = unwrap(value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = unwrap(value)
		}
		return out
	}
	return data
}
