package gemini

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/polyprompt/providers/ai"
)

// Normalize decodes a 2xx generateContent body. Parts flagged as thoughts go
// to Reasoning. A prompt blocked by safety filters yields an empty text with
// the block reason as finish reason.
func Normalize(body []byte) (ai.Result, error) {
	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ai.Result{}, ai.WrapError(ai.KindParse, err, "decoding generateContent response")
	}
	if response.Error != nil {
		return ai.Result{}, ai.NewError(ai.KindHTTP, "%s", response.Error.String())
	}

	result := ai.Result{Model: response.ModelVersion}
	if response.UsageMetadata != nil {
		result.Usage = response.UsageMetadata.usage()
	}
	if len(response.Candidates) == 0 {
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			result.FinishReason = response.PromptFeedback.BlockReason
			return result, nil
		}
		return ai.Result{}, ai.NewError(ai.KindParse, "response has no candidates")
	}

	first := response.Candidates[0]
	var text, reasoning strings.Builder
	if first.Content != nil {
		for _, p := range first.Content.Parts {
			if p.Thought {
				reasoning.WriteString(p.Text)
			} else {
				text.WriteString(p.Text)
			}
		}
	}
	result.Text = text.String()
	result.Reasoning = reasoning.String()
	result.FinishReason = first.FinishReason
	result.Citations = first.citations()
	return result, nil
}
