package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/polyprompt/providers/ai"
)

// Normalize decodes a 2xx Messages API body. Text blocks are concatenated,
// thinking blocks go to Reasoning and citation URLs are collected in order.
func Normalize(body []byte) (ai.Result, error) {
	var response messagesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ai.Result{}, ai.WrapError(ai.KindParse, err, "decoding messages response")
	}
	if response.Type == "error" || response.Error != nil {
		message := "provider returned an error object"
		if response.Error != nil {
			message = response.Error.String()
		}
		return ai.Result{}, ai.NewError(ai.KindHTTP, "%s", message)
	}
	if response.Type != "message" && len(response.Content) == 0 {
		return ai.Result{}, ai.NewError(ai.KindParse, "response is not a message")
	}

	var text, reasoning strings.Builder
	var citations []string
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
			for _, c := range block.Citations {
				citations = appendCitation(citations, c)
			}
		case "thinking":
			reasoning.WriteString(block.Thinking)
		}
	}

	result := ai.Result{
		Text:         text.String(),
		Reasoning:    reasoning.String(),
		Citations:    citations,
		FinishReason: response.StopReason,
		Model:        response.Model,
	}
	if response.Usage != nil {
		result.Usage = ai.Usage{InputTokens: inputTokens(response.Usage), OutputTokens: response.Usage.OutputTokens}
	}
	return result, nil
}
