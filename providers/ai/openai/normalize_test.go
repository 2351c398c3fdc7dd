package openai

import (
	"errors"
	"testing"

	"github.com/leofalp/polyprompt/providers/ai"
)

func TestNormalize_ContentUsageAndReasoning(t *testing.T) {
	body := `{
		"model": "deepseek-reasoner",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "42", "reasoning_content": "6*7"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
	}`
	result, err := Normalize([]byte(body), false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Text != "42" || result.Reasoning != "6*7" {
		t.Errorf("unexpected text/reasoning %q / %q", result.Text, result.Reasoning)
	}
	if result.Usage.InputTokens != 12 || result.Usage.OutputTokens != 5 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}
	if result.FinishReason != "stop" || result.Model != "deepseek-reasoner" {
		t.Errorf("unexpected metadata %+v", result)
	}
}

func TestNormalize_PerplexityExtensions(t *testing.T) {
	body := `{
		"choices": [{"message": {"content": "<think>search first</think>Paris."}}],
		"search_results": [{"title": "a", "url": "https://a.example"}, {"title": "b", "url": "https://b.example"}],
		"related_questions": ["What is Lyon?"]
	}`
	result, err := Normalize([]byte(body), true)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Text != "Paris." || result.Reasoning != "search first" {
		t.Errorf("think tags not split: %q / %q", result.Text, result.Reasoning)
	}
	if len(result.Citations) != 2 || result.Citations[1] != "https://b.example" {
		t.Errorf("citations from search_results missing: %v", result.Citations)
	}
	if len(result.RelatedQuestions) != 1 {
		t.Errorf("related questions missing: %v", result.RelatedQuestions)
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"invalid json", `{"choices": [`, ai.ErrParse},
		{"error object", `{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`, ai.ErrHTTP},
		{"error string", `{"error": "model overloaded"}`, ai.ErrHTTP},
		{"no choices", `{"choices": []}`, ai.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.body), false)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
