package ai

import (
	"errors"
	"iter"
	"slices"
	"testing"
)

func deltaSeq(deltas ...StreamDelta) iter.Seq[StreamDelta] {
	return slices.Values(deltas)
}

// TestCollect_AccumulatesTextAndReasoningSeparately verifies that reasoning
// deltas never leak into the answer text.
func TestCollect_AccumulatesTextAndReasoningSeparately(t *testing.T) {
	result := Collect(deltaSeq(
		ReasoningDelta("thinking "),
		TextDelta("Hel"),
		ReasoningDelta("more"),
		TextDelta("lo"),
		StreamDelta{Terminal: true, Usage: &Usage{InputTokens: 3, OutputTokens: 2}, Citations: []string{"https://a"}},
	))

	if result.Text != "Hello" {
		t.Errorf("Text: got %q, want %q", result.Text, "Hello")
	}
	if result.Reasoning != "thinking more" {
		t.Errorf("Reasoning: got %q", result.Reasoning)
	}
	if result.Usage.InputTokens != 3 || result.Usage.OutputTokens != 2 {
		t.Errorf("Usage: got %+v", result.Usage)
	}
	if len(result.Citations) != 1 {
		t.Errorf("Citations: got %v", result.Citations)
	}
	if result.Error != nil {
		t.Errorf("unexpected error %v", result.Error)
	}
}

// TestAccumulator_KeepsPartialTextOnError checks that a failing stream still
// exposes what was received before the failure.
func TestAccumulator_KeepsPartialTextOnError(t *testing.T) {
	var acc Accumulator
	acc.Add(TextDelta("partial"))
	acc.Add(FailDelta(NewError(KindStreamInterrupted, "connection reset")))
	acc.Add(TextDelta("ignored"))

	if !acc.Done() {
		t.Fatal("accumulator should be done after a terminal delta")
	}
	result := acc.Result()
	if result.Text != "partial" {
		t.Errorf("Text: got %q, want %q", result.Text, "partial")
	}
	if !errors.Is(result.Error, ErrStreamInterrupted) {
		t.Errorf("expected stream interrupted error, got %v", result.Error)
	}
}

// TestResultDeltas_RoundTrip verifies that replaying a result and collecting
// it again yields the same normalized content.
func TestResultDeltas_RoundTrip(t *testing.T) {
	original := Result{
		Text:         "answer",
		Reasoning:    "why",
		Usage:        Usage{InputTokens: 10, OutputTokens: 4},
		FinishReason: "stop",
	}

	var terminals int
	for delta := range ResultDeltas(original) {
		if delta.Terminal {
			terminals++
		}
	}
	if terminals != 1 {
		t.Fatalf("expected exactly one terminal delta, got %d", terminals)
	}

	collected := Collect(ResultDeltas(original))
	if collected.Text != original.Text || collected.Reasoning != original.Reasoning {
		t.Errorf("round trip mismatch: %+v", collected)
	}
	if collected.Usage != original.Usage {
		t.Errorf("usage mismatch: %+v", collected.Usage)
	}
}

func TestResultDeltas_StopsWhenConsumerBreaks(t *testing.T) {
	count := 0
	for range ResultDeltas(Result{Text: "a", Reasoning: "b"}) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected iteration to stop after one delta, got %d", count)
	}
}
