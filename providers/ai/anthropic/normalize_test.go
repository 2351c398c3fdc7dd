package anthropic

import (
	"errors"
	"testing"

	"github.com/leofalp/polyprompt/providers/ai"
)

func TestNormalize_TextThinkingAndCitations(t *testing.T) {
	body := `{
		"type": "message",
		"model": "claude-sonnet-4",
		"content": [
			{"type": "thinking", "thinking": "consider"},
			{"type": "text", "text": "Rome ", "citations": [{"type": "web_search_result_location", "url": "https://r.example"}]},
			{"type": "server_tool_use", "id": "x"},
			{"type": "text", "text": "is old.", "citations": [{"type": "web_search_result_location", "url": "https://r.example"}]}
		],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "cache_read_input_tokens": 5, "output_tokens": 7}
	}`
	result, err := Normalize([]byte(body))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Text != "Rome is old." || result.Reasoning != "consider" {
		t.Errorf("unexpected text/reasoning %q / %q", result.Text, result.Reasoning)
	}
	if len(result.Citations) != 1 {
		t.Errorf("citations should be de-duplicated: %v", result.Citations)
	}
	if result.Usage.InputTokens != 15 || result.Usage.OutputTokens != 7 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}
	if result.FinishReason != "end_turn" {
		t.Errorf("unexpected finish reason %q", result.FinishReason)
	}
}

func TestNormalize_ErrorBodies(t *testing.T) {
	if _, err := Normalize([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`)); !errors.Is(err, ai.ErrHTTP) {
		t.Errorf("expected HTTP error, got %v", err)
	}
	if _, err := Normalize([]byte(`<html>`)); !errors.Is(err, ai.ErrParse) {
		t.Errorf("expected parse error, got %v", err)
	}
}
