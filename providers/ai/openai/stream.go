package openai

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
)

const doneSentinel = "[DONE]"

// StreamDecoder turns delta-json-sse events into stream deltas. Usage,
// citations and the finish reason are collected along the way and attached
// to the terminal delta, since hosts send them in the last chunks.
type StreamDecoder struct {
	thinkTags bool
	splitter  ai.ThinkSplitter

	usage            *ai.Usage
	citations        []string
	relatedQuestions []string
	finishReason     string
}

func NewStreamDecoder(thinkTags bool) *StreamDecoder {
	return &StreamDecoder{thinkTags: thinkTags}
}

// Feed decodes one event. A malformed chunk returns a KindParse error and no
// deltas; the caller may skip it and continue.
func (d *StreamDecoder) Feed(event utils.SSEEvent) ([]ai.StreamDelta, error) {
	data := strings.TrimSpace(event.Data)
	if data == doneSentinel {
		return d.Finish(), nil
	}

	var chunk chatResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, ai.WrapError(ai.KindParse, err, "decoding stream chunk")
	}
	if chunk.Error != nil {
		return append(d.flush(), ai.FailDelta(ai.NewError(ai.KindHTTP, "%s", chunk.Error.String()))), nil
	}

	if chunk.Usage != nil {
		d.usage = &ai.Usage{InputTokens: chunk.Usage.PromptTokens, OutputTokens: chunk.Usage.CompletionTokens}
	}
	if urls := citationURLs(chunk.Citations, chunk.SearchResults); len(urls) > 0 {
		d.citations = urls
	}
	if len(chunk.RelatedQuestions) > 0 {
		d.relatedQuestions = chunk.RelatedQuestions
	}

	var deltas []ai.StreamDelta
	for _, choice := range chunk.Choices {
		if choice.Index != 0 {
			continue
		}
		if reasoning := choice.Delta.reasoning(); reasoning != "" {
			deltas = append(deltas, ai.ReasoningDelta(reasoning))
		}
		if text := choice.Delta.text(); text != "" {
			if d.thinkTags {
				deltas = append(deltas, d.splitter.Push(text)...)
			} else {
				deltas = append(deltas, ai.TextDelta(text))
			}
		}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			d.finishReason = *choice.FinishReason
		}
	}
	return deltas, nil
}

// Finish ends the stream successfully; a missing [DONE] sentinel is not an
// error for this dialect.
func (d *StreamDecoder) Finish() []ai.StreamDelta {
	return append(d.flush(), ai.StreamDelta{
		Terminal:         true,
		Usage:            d.usage,
		Citations:        d.citations,
		RelatedQuestions: d.relatedQuestions,
		FinishReason:     d.finishReason,
	})
}

// Abort releases text held back by the think splitter.
func (d *StreamDecoder) Abort() []ai.StreamDelta {
	return d.flush()
}

func (d *StreamDecoder) flush() []ai.StreamDelta {
	if !d.thinkTags {
		return nil
	}
	return d.splitter.Flush()
}
