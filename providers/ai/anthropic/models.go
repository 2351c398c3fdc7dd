package anthropic

/*
	MESSAGES API - REQUEST
*/

// DefaultMaxTokens is sent when no max_tokens parameter resolved; the API
// rejects requests without one.
const DefaultMaxTokens = 4096

// WebSearchToolType is the server-side search tool enabled by the search
// parameter.
const WebSearchToolType = "web_search_20250305"

type messagesRequest struct {
	Model         string    `json:"model"`
	Messages      []message `json:"messages"`
	System        string    `json:"system,omitempty"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TopP          *float64  `json:"top_p,omitempty"`
	TopK          *int      `json:"top_k,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Tools         []tool    `json:"tools,omitempty"`
	Stream        bool      `json:"stream,omitempty"`
}

type message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type tool struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

/*
	MESSAGES API - RESPONSE
*/

type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"` // "message" or "error"
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *usage         `json:"usage"`
	Error      *apiError      `json:"error,omitempty"`
}

// contentBlock covers the block types this package reads: text (with
// optional citations) and thinking. Tool blocks are ignored.
type contentBlock struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	Thinking  string     `json:"thinking,omitempty"`
	Citations []citation `json:"citations,omitempty"`
}

type citation struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

type usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}

type apiError struct {
	Type    string `json:"type"` // e.g. "overloaded_error"
	Message string `json:"message"`
}

func (e *apiError) String() string {
	if e.Type == "" {
		return e.Message
	}
	return e.Type + ": " + e.Message
}

/*
	STREAMING EVENTS

	message_start → (content_block_start → content_block_delta* →
	content_block_stop)* → message_delta → message_stop
*/

type streamEvent struct {
	Type         string            `json:"type"`
	Message      *messagesResponse `json:"message,omitempty"`       // message_start
	Index        int               `json:"index,omitempty"`         // content_block_*
	ContentBlock *contentBlock     `json:"content_block,omitempty"` // content_block_start
	Delta        *streamDelta      `json:"delta,omitempty"`         // content_block_delta, message_delta
	Usage        *usage            `json:"usage,omitempty"`         // message_delta
	Error        *apiError         `json:"error,omitempty"`         // error
}

type streamDelta struct {
	Type       string    `json:"type,omitempty"` // text_delta, thinking_delta, citations_delta
	Text       string    `json:"text,omitempty"`
	Thinking   string    `json:"thinking,omitempty"`
	Citation   *citation `json:"citation,omitempty"`
	StopReason string    `json:"stop_reason,omitempty"` // message_delta
}

func inputTokens(u *usage) int {
	return u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens
}

func appendCitation(urls []string, c citation) []string {
	if c.URL == "" {
		return urls
	}
	for _, existing := range urls {
		if existing == c.URL {
			return urls
		}
	}
	return append(urls, c.URL)
}
