package ai

import "strings"

/*
	##### PROVIDER INPUT #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Previous model turn
)

// Message represents a single role-tagged message in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Request is the provider-agnostic description of one logical prompt.
// It is built once per dispatch and shared read-only by every target.
type Request struct {
	Messages []Message `json:"messages"`         // Ordered conversation, system prompt excluded
	System   string    `json:"system,omitempty"` // Optional system instruction
	Params   Params    `json:"params,omitzero"`  // Dispatch-wide parameters (lowest-priority layer)
}

// NewRequest is a convenience constructor for a single user prompt.
func NewRequest(prompt string) Request {
	return Request{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage reports token consumption for one call. Estimated is true when the
// provider did not report usage and the counts were computed locally.
type Usage struct {
	InputTokens  int  `json:"input_tokens"`
	OutputTokens int  `json:"output_tokens"`
	Estimated    bool `json:"estimated,omitempty"`
}

// IsZero reports whether no tokens were recorded.
func (u Usage) IsZero() bool {
	return u.InputTokens == 0 && u.OutputTokens == 0
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Result is the normalized outcome of a completed call, or the accumulation
// of a stream. Error is non-nil exactly when the call failed.
type Result struct {
	Text             string   `json:"text"`
	Reasoning        string   `json:"reasoning,omitempty"` // Reasoning/"think" output, kept apart from Text
	Usage            Usage    `json:"usage"`
	Citations        []string `json:"citations,omitempty"`
	RelatedQuestions []string `json:"related_questions,omitempty"`
	HTTPStatus       int      `json:"http_status,omitempty"`
	FinishReason     string   `json:"finish_reason,omitempty"`
	Model            string   `json:"model,omitempty"`
	Error            *Error   `json:"error,omitempty"`
}

// Failed reports whether the result carries an error.
func (r *Result) Failed() bool {
	return r != nil && r.Error != nil
}

// SystemPrompt returns System joined with the content of any system-role
// messages, for wire shapes that carry the system prompt out of band.
func (r Request) SystemPrompt() string {
	parts := make([]string, 0, 1)
	if r.System != "" {
		parts = append(parts, r.System)
	}
	for _, message := range r.Messages {
		if message.Role == RoleSystem && message.Content != "" {
			parts = append(parts, message.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Turns returns the conversation without system-role messages.
func (r Request) Turns() []Message {
	turns := make([]Message, 0, len(r.Messages))
	for _, message := range r.Messages {
		if message.Role != RoleSystem {
			turns = append(turns, message)
		}
	}
	return turns
}

// Prompt returns the concatenated message text, used for local token
// estimation.
func (r Request) Prompt() string {
	var builder strings.Builder
	builder.WriteString(r.System)
	for _, message := range r.Messages {
		if builder.Len() > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(message.Content)
	}
	return builder.String()
}
