package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/polyprompt/providers/ai"
)

// Translate encodes req as a Messages API body. The system prompt moves to
// the top-level system field and max_tokens falls back to DefaultMaxTokens.
// search=true attaches the server-side web search tool.
func Translate(req ai.Request, params ai.Params, model string, stream bool) ([]byte, error) {
	body := messagesRequest{
		Model:         model,
		System:        req.SystemPrompt(),
		MaxTokens:     DefaultMaxTokens,
		Temperature:   params.Temperature,
		TopP:          params.TopP,
		TopK:          params.TopK,
		StopSequences: params.Stop,
		Stream:        stream,
	}
	if params.MaxTokens != nil {
		body.MaxTokens = *params.MaxTokens
	}
	if params.Search != nil && *params.Search {
		body.Tools = []tool{{Type: WebSearchToolType, Name: "web_search"}}
	}
	for _, turn := range req.Turns() {
		body.Messages = append(body.Messages, message{Role: string(turn.Role), Content: turn.Content})
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding messages request: %w", err)
	}
	return encoded, nil
}
