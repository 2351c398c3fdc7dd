package openai

import (
	"encoding/json"

	"github.com/leofalp/polyprompt/providers/ai"
)

// Normalize decodes a 2xx chat-completions body. An error object in the body
// yields a KindHTTP error, an undecodable body a KindParse error. When
// thinkTags is set, <think> sections in the content move to Reasoning.
func Normalize(body []byte, thinkTags bool) (ai.Result, error) {
	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ai.Result{}, ai.WrapError(ai.KindParse, err, "decoding chat completion")
	}
	if response.Error != nil {
		return ai.Result{}, ai.NewError(ai.KindHTTP, "%s", response.Error.String())
	}
	if len(response.Choices) == 0 {
		return ai.Result{}, ai.NewError(ai.KindParse, "chat completion has no choices")
	}

	choice := response.Choices[0]
	result := ai.Result{
		Text:             choice.Message.text(),
		Reasoning:        choice.Message.reasoning(),
		Model:            response.Model,
		Citations:        citationURLs(response.Citations, response.SearchResults),
		RelatedQuestions: response.RelatedQuestions,
	}
	if choice.FinishReason != nil {
		result.FinishReason = *choice.FinishReason
	}
	if thinkTags {
		text, reasoning := ai.SplitThink(result.Text)
		result.Text = text
		result.Reasoning += reasoning
	}
	if response.Usage != nil {
		result.Usage = ai.Usage{
			InputTokens:  response.Usage.PromptTokens,
			OutputTokens: response.Usage.CompletionTokens,
		}
	}
	return result, nil
}
