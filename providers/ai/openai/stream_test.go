package openai

import (
	"errors"
	"testing"

	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
)

func feedAll(t *testing.T, decoder *StreamDecoder, payloads ...string) []ai.StreamDelta {
	t.Helper()
	var deltas []ai.StreamDelta
	for _, payload := range payloads {
		out, err := decoder.Feed(utils.SSEEvent{Data: payload})
		if err != nil {
			t.Fatalf("Feed(%q): %v", payload, err)
		}
		deltas = append(deltas, out...)
	}
	return deltas
}

// TestStreamDecoder_HelloThenDone covers the canonical sequence: two content
// chunks and the [DONE] sentinel give "Hello" and one terminal delta.
func TestStreamDecoder_HelloThenDone(t *testing.T) {
	decoder := NewStreamDecoder(false)
	deltas := feedAll(t, decoder,
		`{"choices":[{"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"delta":{"content":"lo"},"finish_reason":"stop"}]}`,
		`{"choices":[],"usage":{"prompt_tokens":3,"completion_tokens":2}}`,
		"[DONE]",
	)

	if len(deltas) != 3 {
		t.Fatalf("expected 2 text deltas and 1 terminal, got %+v", deltas)
	}
	result := ai.Collect(func(yield func(ai.StreamDelta) bool) {
		for _, delta := range deltas {
			if !yield(delta) {
				return
			}
		}
	})
	if result.Text != "Hello" || result.Error != nil {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Usage.InputTokens != 3 || result.Usage.OutputTokens != 2 || result.FinishReason != "stop" {
		t.Errorf("terminal metadata missing: %+v", result)
	}
}

func TestStreamDecoder_ReasoningSideChannel(t *testing.T) {
	decoder := NewStreamDecoder(false)
	deltas := feedAll(t, decoder,
		`{"choices":[{"delta":{"reasoning_content":"thinking"}}]}`,
		`{"choices":[{"delta":{"reasoning":"more"}}]}`,
		`{"choices":[{"delta":{"content":"answer"}}]}`,
	)
	if len(deltas) != 3 || !deltas[0].Reasoning || !deltas[1].Reasoning || deltas[2].Reasoning {
		t.Errorf("reasoning not flagged: %+v", deltas)
	}
}

// TestStreamDecoder_ThinkTagsAcrossChunks splits a tag over two chunks.
func TestStreamDecoder_ThinkTagsAcrossChunks(t *testing.T) {
	decoder := NewStreamDecoder(true)
	deltas := feedAll(t, decoder,
		`{"choices":[{"delta":{"content":"<thi"}}]}`,
		`{"choices":[{"delta":{"content":"nk>plan</think>Done"}}]}`,
	)
	deltas = append(deltas, decoder.Finish()...)

	var text, reasoning string
	for _, delta := range deltas {
		if delta.Reasoning {
			reasoning += delta.Text
		} else {
			text += delta.Text
		}
	}
	if text != "Done" || reasoning != "plan" {
		t.Errorf("got text=%q reasoning=%q", text, reasoning)
	}
	if !deltas[len(deltas)-1].Terminal {
		t.Error("Finish must end with a terminal delta")
	}
}

func TestStreamDecoder_MalformedChunkIsReported(t *testing.T) {
	decoder := NewStreamDecoder(false)
	deltas, err := decoder.Feed(utils.SSEEvent{Data: "{not json"})
	if !errors.Is(err, ai.ErrParse) || len(deltas) != 0 {
		t.Errorf("expected parse error and no deltas, got %v, %+v", err, deltas)
	}
}

func TestStreamDecoder_ErrorChunkTerminates(t *testing.T) {
	decoder := NewStreamDecoder(false)
	deltas := feedAll(t, decoder, `{"error":{"message":"rate limited"}}`)
	if len(deltas) != 1 || !deltas[0].Terminal || !errors.Is(deltas[0].Err, ai.ErrHTTP) {
		t.Errorf("expected terminal HTTP error delta, got %+v", deltas)
	}
}

func TestStreamDecoder_PerplexityCitations(t *testing.T) {
	decoder := NewStreamDecoder(false)
	feedAll(t, decoder,
		`{"choices":[{"delta":{"content":"a"}}],"citations":["https://one"]}`,
		`{"choices":[{"delta":{"content":"b"}}],"citations":["https://one","https://two"],"related_questions":["q?"]}`,
	)
	terminal := decoder.Finish()[0]
	if len(terminal.Citations) != 2 || len(terminal.RelatedQuestions) != 1 {
		t.Errorf("expected latest citations on terminal delta, got %+v", terminal)
	}
}

// TestStreamDecoder_OnlyFirstChoice keeps streamed text equal to the
// non-streaming normalization, which reads the first choice.
func TestStreamDecoder_OnlyFirstChoice(t *testing.T) {
	decoder := NewStreamDecoder(false)
	deltas := feedAll(t, decoder,
		`{"choices":[{"index":0,"delta":{"content":"first"}},{"index":1,"delta":{"content":"second"}}]}`,
		`{"choices":[{"index":1,"delta":{"content":" more"}}]}`,
		"[DONE]",
	)
	result := ai.Collect(func(yield func(ai.StreamDelta) bool) {
		for _, delta := range deltas {
			if !yield(delta) {
				return
			}
		}
	})
	if result.Text != "first" {
		t.Errorf("Text: got %q, want %q", result.Text, "first")
	}
}

func TestStreamDecoder_AbortFlushesHeldBackTag(t *testing.T) {
	decoder := NewStreamDecoder(true)
	deltas := feedAll(t, decoder, `{"choices":[{"delta":{"content":"x <th"}}]}`)
	if len(deltas) != 1 || deltas[0].Text != "x " {
		t.Fatalf("expected the tag prefix held back, got %+v", deltas)
	}
	aborted := decoder.Abort()
	if len(aborted) != 1 || aborted[0].Text != "<th" || aborted[0].Terminal {
		t.Errorf("Abort: got %+v", aborted)
	}
}
