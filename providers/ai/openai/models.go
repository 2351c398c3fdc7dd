package openai

import (
	"encoding/json"
	"strings"
)

/*
	CHAT COMPLETIONS - INPUT
*/

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      *float64      `json:"temperature,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	TopK             *int          `json:"top_k,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
	Seed             *int          `json:"seed,omitempty"`
	ResponseFormat   *responseFmt  `json:"response_format,omitempty"`

	// Perplexity search extensions
	DisableSearch       *bool   `json:"disable_search,omitempty"`
	ReturnCitations     *bool   `json:"return_citations,omitempty"`
	SearchRecencyFilter *string `json:"search_recency_filter,omitempty"`

	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFmt struct {
	Type string `json:"type"` // "json_object"
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

/*
	CHAT COMPLETIONS - OUTPUT
*/

type chatResponse struct {
	ID               string         `json:"id"`
	Model            string         `json:"model"`
	Choices          []chatChoice   `json:"choices"`
	Usage            *chatUsage     `json:"usage,omitempty"`
	Citations        []string       `json:"citations,omitempty"`
	SearchResults    []searchResult `json:"search_results,omitempty"`
	RelatedQuestions []string       `json:"related_questions,omitempty"`
	Error            *apiError      `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatContent `json:"message"`
	Delta        chatContent `json:"delta"` // streaming chunks only
	FinishReason *string     `json:"finish_reason"`
}

// chatContent is shared by message (whole body) and delta (stream chunk).
// Reasoning arrives as reasoning_content (DeepSeek, Groq) or reasoning
// (OpenRouter) depending on the host.
type chatContent struct {
	Role             string  `json:"role,omitempty"`
	Content          *string `json:"content,omitempty"`
	ReasoningContent *string `json:"reasoning_content,omitempty"`
	Reasoning        *string `json:"reasoning,omitempty"`
	Refusal          *string `json:"refusal,omitempty"`
}

func (c chatContent) text() string {
	if c.Content != nil {
		return *c.Content
	}
	if c.Refusal != nil {
		return *c.Refusal
	}
	return ""
}

func (c chatContent) reasoning() string {
	if c.ReasoningContent != nil {
		return *c.ReasoningContent
	}
	if c.Reasoning != nil {
		return *c.Reasoning
	}
	return ""
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type searchResult struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// apiError accepts both {"error":{"message":…}} and {"error":"…"}.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    any    `json:"code,omitempty"`
}

func (e *apiError) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		e.Message = text
		return nil
	}
	type plain apiError
	return json.Unmarshal(data, (*plain)(e))
}

func (e *apiError) String() string {
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = "provider returned an error object"
	}
	if e.Type != "" {
		return e.Type + ": " + message
	}
	return message
}

// citationURLs prefers the flat citations list and falls back to the URLs
// of search_results.
func citationURLs(citations []string, results []searchResult) []string {
	if len(citations) > 0 {
		return citations
	}
	var urls []string
	for _, result := range results {
		if result.URL != "" {
			urls = append(urls, result.URL)
		}
	}
	return urls
}
