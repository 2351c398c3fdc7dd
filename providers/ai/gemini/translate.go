package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/polyprompt/providers/ai"
)

// Translate encodes req as a generateContent body. The model travels in the
// URL, so it is not part of the body; stream only changes the endpoint path.
func Translate(req ai.Request, params ai.Params, _ string, _ bool) ([]byte, error) {
	body := generateRequest{}
	if system := req.SystemPrompt(); system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	for _, turn := range req.Turns() {
		role := "user"
		if turn.Role == ai.RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, content{Role: role, Parts: []part{{Text: turn.Content}}})
	}

	config := generationConfig{
		Temperature:      params.Temperature,
		MaxOutputTokens:  params.MaxTokens,
		TopP:             params.TopP,
		TopK:             params.TopK,
		StopSequences:    params.Stop,
		Seed:             params.Seed,
		PresencePenalty:  params.PresencePenalty,
		FrequencyPenalty: params.FrequencyPenalty,
	}
	if params.JSONMode != nil && *params.JSONMode {
		config.ResponseMimeType = "application/json"
	}
	if !config.empty() {
		body.GenerationConfig = &config
	}
	if params.Search != nil && *params.Search {
		body.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding generateContent request: %w", err)
	}
	return encoded, nil
}
