package gemini

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
)

// StreamDecoder turns candidate-sse events into stream deltas. Every event is
// a partial generateContent response; the stream has no explicit terminal
// event and ends successfully at end of input.
type StreamDecoder struct {
	usage        *ai.Usage
	citations    []string
	finishReason string
}

func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

func (d *StreamDecoder) Feed(event utils.SSEEvent) ([]ai.StreamDelta, error) {
	var chunk generateResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(event.Data)), &chunk); err != nil {
		return nil, ai.WrapError(ai.KindParse, err, "decoding stream candidate")
	}
	if chunk.Error != nil {
		return []ai.StreamDelta{d.terminal(ai.NewError(ai.KindHTTP, "%s", chunk.Error.String()))}, nil
	}

	if chunk.UsageMetadata != nil {
		usage := chunk.UsageMetadata.usage()
		d.usage = &usage
	}
	if chunk.PromptFeedback != nil && chunk.PromptFeedback.BlockReason != "" {
		d.finishReason = chunk.PromptFeedback.BlockReason
	}

	var deltas []ai.StreamDelta
	for _, candidate := range chunk.Candidates[:min(1, len(chunk.Candidates))] {
		if candidate.Content != nil {
			for _, p := range candidate.Content.Parts {
				if p.Text == "" {
					continue
				}
				if p.Thought {
					deltas = append(deltas, ai.ReasoningDelta(p.Text))
				} else {
					deltas = append(deltas, ai.TextDelta(p.Text))
				}
			}
		}
		if candidate.FinishReason != "" {
			d.finishReason = candidate.FinishReason
		}
		if urls := candidate.citations(); len(urls) > 0 {
			d.citations = urls
		}
	}
	return deltas, nil
}

// Finish ends the stream successfully.
func (d *StreamDecoder) Finish() []ai.StreamDelta {
	return []ai.StreamDelta{d.terminal(nil)}
}

// Abort has nothing to release; deltas are emitted as they are decoded.
func (d *StreamDecoder) Abort() []ai.StreamDelta { return nil }

func (d *StreamDecoder) terminal(err *ai.Error) ai.StreamDelta {
	return ai.StreamDelta{
		Terminal:     true,
		Err:          err,
		Usage:        d.usage,
		Citations:    d.citations,
		FinishReason: d.finishReason,
	}
}
