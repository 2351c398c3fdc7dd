package openai

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/polyprompt/providers/ai"
)

// Translate encodes req as a chat-completions body. params must already be
// filtered to what the provider accepts; every set key is written and
// nothing else is.
func Translate(req ai.Request, params ai.Params, model string, stream bool) ([]byte, error) {
	body := chatRequest{
		Model:            model,
		Messages:         toChatMessages(req),
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		TopP:             params.TopP,
		TopK:             params.TopK,
		FrequencyPenalty: params.FrequencyPenalty,
		PresencePenalty:  params.PresencePenalty,
		Stop:             params.Stop,
		Seed:             params.Seed,
		ReturnCitations:  params.Citations,

		SearchRecencyFilter: params.SearchRecency,
	}
	if params.JSONMode != nil && *params.JSONMode {
		body.ResponseFormat = &responseFmt{Type: "json_object"}
	}
	if params.Search != nil {
		disable := !*params.Search
		body.DisableSearch = &disable
	}
	if stream {
		body.Stream = true
		body.StreamOptions = &streamOptions{IncludeUsage: true}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding chat completion request: %w", err)
	}
	return encoded, nil
}

func toChatMessages(req ai.Request) []chatMessage {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: string(ai.RoleSystem), Content: req.System})
	}
	for _, message := range req.Messages {
		messages = append(messages, chatMessage{Role: string(message.Role), Content: message.Content})
	}
	return messages
}
