package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/ai/anthropic"
	"github.com/leofalp/polyprompt/providers/ai/gemini"
	"github.com/leofalp/polyprompt/providers/ai/openai"
	"github.com/leofalp/polyprompt/providers/observability"
	"github.com/leofalp/polyprompt/providers/registry"
)

// StreamDecoder is implemented by each family's event decoder. Feed returns
// an error for an event it cannot decode; such events are skipped. Finish is
// called at end of input and its last delta is terminal. Abort releases any
// buffered text, without a terminal delta, before the stream fails.
type StreamDecoder interface {
	Feed(event utils.SSEEvent) ([]ai.StreamDelta, error)
	Finish() []ai.StreamDelta
	Abort() []ai.StreamDelta
}

// NewStreamDecoder returns the decoder for cfg's stream kind.
func NewStreamDecoder(cfg config.EffectiveConfig) (StreamDecoder, error) {
	switch cfg.Streaming {
	case registry.StreamDeltaJSON:
		return openai.NewStreamDecoder(cfg.Provider.ThinkTags), nil
	case registry.StreamEventTyped:
		return anthropic.NewStreamDecoder(), nil
	case registry.StreamCandidate:
		return gemini.NewStreamDecoder(), nil
	}
	return nil, fmt.Errorf("provider %q: unhandled stream kind %q", cfg.Provider.ID, cfg.Streaming)
}

// DecodeStream reads an event stream and yields normalized deltas in wire
// order. Exactly one terminal delta is yielded, always last:
//   - the decoder's own terminal signal (or error event)
//   - end of input, resolved by the decoder's Finish
//   - a read failure, as StreamInterrupted
//   - cancellation of ctx, as a transport error wrapping ctx.Err()
//
// Events that fail to decode are logged and skipped. If every event was
// skipped, end of input is a parse error. Text the decoder still buffers is
// yielded before a failure.
func DecodeStream(ctx context.Context, cfg config.EffectiveConfig, body io.Reader) iter.Seq[ai.StreamDelta] {
	return func(yield func(ai.StreamDelta) bool) {
		decoder, err := NewStreamDecoder(cfg)
		if err != nil {
			yield(ai.FailDelta(ai.NewError(ai.KindParse, "%s", err.Error())))
			return
		}

		logger := observability.LoggerFrom(ctx)
		span := observability.SpanFromContext(ctx)
		scanner := utils.NewSSEScanner(body)

		// emit yields deltas up to and including the first terminal one and
		// reports whether decoding should continue.
		emit := func(deltas []ai.StreamDelta) (more bool) {
			for _, delta := range deltas {
				if !yield(delta) || delta.Terminal {
					return false
				}
			}
			return true
		}

		fail := func(err *ai.Error) {
			if emit(decoder.Abort()) {
				yield(ai.FailDelta(err))
			}
		}

		var decoded, skipped int
		for {
			if ctx.Err() != nil {
				fail(ai.WrapError(ai.KindTransport, ctx.Err(), "stream cancelled"))
				return
			}

			event, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				if skipped > 0 && decoded == 0 {
					fail(ai.NewError(ai.KindParse, "none of %d stream events could be decoded", skipped))
					return
				}
				if emit(decoder.Finish()) {
					yield(ai.EndDelta())
				}
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					fail(ai.WrapError(ai.KindTransport, ctx.Err(), "stream cancelled"))
				} else {
					fail(ai.WrapError(ai.KindStreamInterrupted, err, "reading stream"))
				}
				return
			}
			if strings.TrimSpace(event.Data) == "" {
				continue
			}

			deltas, err := decoder.Feed(event)
			if err != nil {
				skipped++
				logger.Warn(ctx, "skipping malformed stream event",
					observability.String(observability.AttrLLMProvider, cfg.Provider.ID),
					observability.String(observability.AttrStreamEvent, event.Type),
					observability.Error(err),
				)
				if span != nil {
					span.AddEvent(observability.EventStreamSkipped, observability.Error(err))
				}
				continue
			}
			decoded++
			if !emit(deltas) {
				return
			}
		}
	}
}
