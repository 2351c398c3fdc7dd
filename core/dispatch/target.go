package dispatch

import (
	"net/http"
	"slices"
	"time"

	"github.com/leofalp/polyprompt/core/codec"
	"github.com/leofalp/polyprompt/providers/ai"
)

// maxResponseSnapshot bounds the raw response body kept on a target.
const maxResponseSnapshot = 64 * 1024

// RequestSnapshot is the redacted provider request as sent.
type RequestSnapshot struct {
	Method string      `json:"method"`
	URL    string      `json:"url"`
	Header http.Header `json:"header,omitempty"`
	Body   string      `json:"body"`
}

func snapshotRequest(payload *codec.Payload) *RequestSnapshot {
	redacted := payload.Redacted()
	return &RequestSnapshot{
		Method: redacted.Method,
		URL:    redacted.URL,
		Header: redacted.Header,
		Body:   string(redacted.Body),
	}
}

// Target is one agent's participation in a dispatch. Error is non-nil if and
// only if Status is StatusError. Cost is nil when the model's price is
// unknown.
type Target struct {
	ID         string           `json:"id"`
	DispatchID string           `json:"dispatch_id"`
	AgentID    string           `json:"agent_id"`
	AgentName  string           `json:"agent_name,omitempty"`
	Provider   string           `json:"provider"`
	Model      string           `json:"model,omitempty"`
	Status     Status           `json:"status"`
	HTTPStatus int              `json:"http_status,omitempty"`
	Request    *RequestSnapshot `json:"request,omitempty"`
	Response   string           `json:"response,omitempty"`
	Result     ai.Result        `json:"result"`
	Error      *ai.Error        `json:"error,omitempty"`
	Usage      ai.Usage         `json:"usage"`
	Cost       *float64         `json:"cost,omitempty"`
	Citations  []string         `json:"citations,omitempty"`
	Attempts   int              `json:"attempts"`
	StartedAt  time.Time        `json:"started_at,omitzero"`
	FinishedAt time.Time        `json:"finished_at,omitzero"`
}

// Duration is the running time of a terminal target.
func (t Target) Duration() time.Duration {
	if t.StartedAt.IsZero() || t.FinishedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}

// Clone returns a deep copy, so snapshots handed to callbacks never alias the
// record the owning goroutine keeps mutating.
func (t Target) Clone() Target {
	out := t
	if t.Request != nil {
		request := *t.Request
		request.Header = t.Request.Header.Clone()
		out.Request = &request
	}
	if t.Error != nil {
		err := *t.Error
		out.Error = &err
	}
	if t.Result.Error != nil {
		err := *t.Result.Error
		out.Result.Error = &err
	}
	if t.Cost != nil {
		cost := *t.Cost
		out.Cost = &cost
	}
	out.Citations = slices.Clone(t.Citations)
	out.Result.Citations = slices.Clone(t.Result.Citations)
	out.Result.RelatedQuestions = slices.Clone(t.Result.RelatedQuestions)
	return out
}

func (t *Target) transition(to Status) error {
	if !t.Status.CanTransition(to) {
		return &ErrInvalidTransition{From: t.Status, To: to}
	}
	t.Status = to
	return nil
}
