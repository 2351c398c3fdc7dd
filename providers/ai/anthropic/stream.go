package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
)

// StreamDecoder turns event-typed-sse events into stream deltas. The stream
// is complete only after message_stop; ending earlier is an interruption.
type StreamDecoder struct {
	usage        ai.Usage
	sawUsage     bool
	citations    []string
	finishReason string
}

func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// Feed decodes one event. The event name comes from the SSE event field,
// falling back to the payload's type field.
func (d *StreamDecoder) Feed(event utils.SSEEvent) ([]ai.StreamDelta, error) {
	var payload streamEvent
	if err := json.Unmarshal([]byte(strings.TrimSpace(event.Data)), &payload); err != nil {
		return nil, ai.WrapError(ai.KindParse, err, "decoding stream event")
	}
	kind := event.Type
	if kind == "" {
		kind = payload.Type
	}

	switch kind {
	case "message_start":
		if payload.Message != nil && payload.Message.Usage != nil {
			d.usage.InputTokens = inputTokens(payload.Message.Usage)
			d.usage.OutputTokens = payload.Message.Usage.OutputTokens
			d.sawUsage = true
		}
	case "content_block_start":
		if block := payload.ContentBlock; block != nil {
			for _, c := range block.Citations {
				d.citations = appendCitation(d.citations, c)
			}
			switch {
			case block.Type == "text" && block.Text != "":
				return []ai.StreamDelta{ai.TextDelta(block.Text)}, nil
			case block.Type == "thinking" && block.Thinking != "":
				return []ai.StreamDelta{ai.ReasoningDelta(block.Thinking)}, nil
			}
		}
	case "content_block_delta":
		if payload.Delta == nil {
			return nil, ai.NewError(ai.KindParse, "content_block_delta without delta")
		}
		switch payload.Delta.Type {
		case "text_delta":
			if payload.Delta.Text != "" {
				return []ai.StreamDelta{ai.TextDelta(payload.Delta.Text)}, nil
			}
		case "thinking_delta":
			if payload.Delta.Thinking != "" {
				return []ai.StreamDelta{ai.ReasoningDelta(payload.Delta.Thinking)}, nil
			}
		case "citations_delta":
			if payload.Delta.Citation != nil {
				d.citations = appendCitation(d.citations, *payload.Delta.Citation)
			}
		}
	case "message_delta":
		if payload.Delta != nil && payload.Delta.StopReason != "" {
			d.finishReason = payload.Delta.StopReason
		}
		if payload.Usage != nil {
			// message_delta usage is cumulative
			d.usage.OutputTokens = payload.Usage.OutputTokens
			if total := inputTokens(payload.Usage); total > 0 {
				d.usage.InputTokens = total
			}
			d.sawUsage = true
		}
	case "message_stop":
		return []ai.StreamDelta{d.terminal(nil)}, nil
	case "error":
		message := "stream error event"
		if payload.Error != nil {
			message = payload.Error.String()
		}
		return []ai.StreamDelta{d.terminal(ai.NewError(ai.KindHTTP, "%s", message))}, nil
	}
	// ping, content_block_stop and unknown event types carry nothing.
	return nil, nil
}

// Finish is called when the input ends without message_stop.
func (d *StreamDecoder) Finish() []ai.StreamDelta {
	return []ai.StreamDelta{d.terminal(ai.NewError(ai.KindStreamInterrupted, "stream ended before message_stop"))}
}

// Abort has nothing to release; deltas are emitted as they are decoded.
func (d *StreamDecoder) Abort() []ai.StreamDelta { return nil }

func (d *StreamDecoder) terminal(err *ai.Error) ai.StreamDelta {
	delta := ai.StreamDelta{
		Terminal:     true,
		Err:          err,
		Citations:    d.citations,
		FinishReason: d.finishReason,
	}
	if d.sawUsage {
		usage := d.usage
		delta.Usage = &usage
	}
	return delta
}
