package ai

import "strings"

const (
	thinkOpenTag  = "<think>"
	thinkCloseTag = "</think>"
)

// ThinkSplitter separates inline <think>…</think> sections from answer text.
// Some OpenAI-compatible hosts serve reasoning models that inline their
// chain of thought in the content field instead of a dedicated field.
//
// The splitter is chunk-boundary invariant: feeding a string in one piece or
// in arbitrary fragments yields the same reasoning/answer partition, because
// a trailing fragment that could begin a tag is held back until the next
// Push or Flush.
type ThinkSplitter struct {
	inThink bool
	pending string
}

// Push consumes a fragment and returns the deltas that are certain so far.
func (s *ThinkSplitter) Push(fragment string) []StreamDelta {
	buffer := s.pending + fragment
	s.pending = ""

	var deltas []StreamDelta
	for buffer != "" {
		tag := thinkOpenTag
		if s.inThink {
			tag = thinkCloseTag
		}

		if index := strings.Index(buffer, tag); index >= 0 {
			deltas = s.appendSegment(deltas, buffer[:index])
			s.inThink = !s.inThink
			buffer = buffer[index+len(tag):]
			continue
		}

		held := partialTagSuffix(buffer, tag)
		deltas = s.appendSegment(deltas, buffer[:len(buffer)-held])
		s.pending = buffer[len(buffer)-held:]
		break
	}
	return deltas
}

// Flush releases any held-back text. Call once when the input ends.
func (s *ThinkSplitter) Flush() []StreamDelta {
	pending := s.pending
	s.pending = ""
	return s.appendSegment(nil, pending)
}

func (s *ThinkSplitter) appendSegment(deltas []StreamDelta, text string) []StreamDelta {
	if text == "" {
		return deltas
	}
	return append(deltas, StreamDelta{Text: text, Reasoning: s.inThink})
}

// partialTagSuffix returns the length of the longest suffix of text that is
// a proper prefix of tag.
func partialTagSuffix(text, tag string) int {
	limit := min(len(tag)-1, len(text))
	for size := limit; size > 0; size-- {
		if strings.HasPrefix(tag, text[len(text)-size:]) {
			return size
		}
	}
	return 0
}

// SplitThink applies a ThinkSplitter to a complete string and returns the
// answer text and the reasoning text.
func SplitThink(content string) (text, reasoning string) {
	var splitter ThinkSplitter
	var textBuilder, reasoningBuilder strings.Builder
	deltas := append(splitter.Push(content), splitter.Flush()...)
	for _, delta := range deltas {
		if delta.Reasoning {
			reasoningBuilder.WriteString(delta.Text)
		} else {
			textBuilder.WriteString(delta.Text)
		}
	}
	return textBuilder.String(), reasoningBuilder.String()
}
