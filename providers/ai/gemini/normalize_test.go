package gemini

import (
	"errors"
	"testing"

	"github.com/leofalp/polyprompt/providers/ai"
)

func TestNormalize_TextThoughtsUsageAndGrounding(t *testing.T) {
	body := `{
		"candidates": [{
			"content": {"role": "model", "parts": [
				{"text": "considering", "thought": true},
				{"text": "Paris"},
				{"text": " is the capital."}
			]},
			"finishReason": "STOP",
			"groundingMetadata": {"groundingChunks": [
				{"web": {"uri": "https://a.example", "title": "A"}},
				{"web": {"uri": "https://a.example"}},
				{"web": {"uri": "https://b.example"}}
			]}
		}],
		"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 6, "thoughtsTokenCount": 4, "totalTokenCount": 20},
		"modelVersion": "gemini-2.5-flash"
	}`

	result, err := Normalize([]byte(body))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Text != "Paris is the capital." || result.Reasoning != "considering" {
		t.Errorf("text/reasoning: %q / %q", result.Text, result.Reasoning)
	}
	if result.Usage.InputTokens != 10 || result.Usage.OutputTokens != 10 {
		t.Errorf("usage: %+v", result.Usage)
	}
	if len(result.Citations) != 2 || result.Citations[1] != "https://b.example" {
		t.Errorf("citations: %v", result.Citations)
	}
	if result.FinishReason != "STOP" || result.Model != "gemini-2.5-flash" {
		t.Errorf("metadata: %+v", result)
	}
}

func TestNormalize_BlockedPrompt(t *testing.T) {
	result, err := Normalize([]byte(`{"promptFeedback":{"blockReason":"SAFETY"},"usageMetadata":{"promptTokenCount":5}}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Text != "" || result.FinishReason != "SAFETY" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"malformed", `{"candidates":`, ai.ErrParse},
		{"no candidates", `{}`, ai.ErrParse},
		{"error object", `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, ai.ErrHTTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
