package ai

import (
	"iter"
	"strings"
)

// StreamDelta is one incremental fragment of a streamed response. Every
// stream ends with exactly one delta whose Terminal flag is set; that delta
// carries no text, and carries Err when the stream failed. Usage, citations,
// related questions and the finish reason are only populated on the terminal
// delta.
type StreamDelta struct {
	Text      string `json:"text,omitempty"`
	Reasoning bool   `json:"reasoning,omitempty"` // Text belongs to the reasoning side channel
	Terminal  bool   `json:"terminal,omitempty"`
	Err       *Error `json:"error,omitempty"`

	Usage            *Usage   `json:"usage,omitempty"`
	Citations        []string `json:"citations,omitempty"`
	RelatedQuestions []string `json:"related_questions,omitempty"`
	FinishReason     string   `json:"finish_reason,omitempty"`
}

// TextDelta builds a non-terminal content delta.
func TextDelta(text string) StreamDelta {
	return StreamDelta{Text: text}
}

// ReasoningDelta builds a non-terminal reasoning delta.
func ReasoningDelta(text string) StreamDelta {
	return StreamDelta{Text: text, Reasoning: true}
}

// EndDelta builds a successful terminal delta.
func EndDelta() StreamDelta {
	return StreamDelta{Terminal: true}
}

// FailDelta builds a terminal delta carrying err.
func FailDelta(err *Error) StreamDelta {
	return StreamDelta{Terminal: true, Err: err}
}

// Accumulator folds stream deltas into a Result. It is not safe for
// concurrent use; a stream has a single consumer.
type Accumulator struct {
	text      strings.Builder
	reasoning strings.Builder
	result    Result
	done      bool
}

// Add applies one delta. Deltas received after the terminal one are ignored.
func (a *Accumulator) Add(delta StreamDelta) {
	if a.done {
		return
	}
	if !delta.Terminal {
		if delta.Reasoning {
			a.reasoning.WriteString(delta.Text)
		} else {
			a.text.WriteString(delta.Text)
		}
		return
	}

	a.done = true
	a.result.Error = delta.Err
	a.result.FinishReason = delta.FinishReason
	if delta.Usage != nil {
		a.result.Usage = *delta.Usage
	}
	if len(delta.Citations) > 0 {
		a.result.Citations = delta.Citations
	}
	if len(delta.RelatedQuestions) > 0 {
		a.result.RelatedQuestions = delta.RelatedQuestions
	}
}

// Done reports whether the terminal delta has been applied.
func (a *Accumulator) Done() bool {
	return a.done
}

// Text returns the content accumulated so far.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Result returns the accumulated result. Partial text is kept even when the
// stream ended with an error.
func (a *Accumulator) Result() Result {
	result := a.result
	result.Text = a.text.String()
	result.Reasoning = a.reasoning.String()
	return result
}

// Collect drains a delta sequence into a Result.
func Collect(deltas iter.Seq[StreamDelta]) Result {
	var acc Accumulator
	for delta := range deltas {
		acc.Add(delta)
	}
	return acc.Result()
}

// ResultDeltas replays a completed Result as a delta sequence: one content
// delta, one reasoning delta, then the terminal delta. Used when a provider
// cannot stream.
func ResultDeltas(result Result) iter.Seq[StreamDelta] {
	return func(yield func(StreamDelta) bool) {
		if result.Text != "" {
			if !yield(TextDelta(result.Text)) {
				return
			}
		}
		if result.Reasoning != "" {
			if !yield(ReasoningDelta(result.Reasoning)) {
				return
			}
		}
		usage := result.Usage
		yield(StreamDelta{
			Terminal:         true,
			Err:              result.Error,
			Usage:            &usage,
			Citations:        result.Citations,
			RelatedQuestions: result.RelatedQuestions,
			FinishReason:     result.FinishReason,
		})
	}
}
