package dispatch

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/polyprompt/core/codec"
	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/observability"
)

// DispatchStream streams agent's answer to req. The sequence always ends with
// exactly one terminal delta; failures before the first event (resolution,
// transport, non-2xx) are reported as that terminal delta. Streams are not
// retried.
func (c *Coordinator) DispatchStream(ctx context.Context, agent config.AgentConfig, req ai.Request) iter.Seq[ai.StreamDelta] {
	return func(yield func(ai.StreamDelta) bool) {
		ctx = observability.ContextWithObserver(ctx, c.observer)
		ctx, span := c.observer.StartSpan(ctx, observability.SpanDispatchStream,
			observability.String(observability.AttrAgentID, agent.ID),
			observability.String(observability.AttrLLMProvider, agent.Provider),
		)
		defer span.End()

		cfg, err := c.resolver.Resolve(ctx, agent, config.WithFallbackParams(req.Params))
		if err != nil {
			span.RecordError(err)
			yield(ai.FailDelta(ai.AsError(err)))
			return
		}
		for delta := range c.streamResolved(ctx, cfg, req) {
			if delta.Terminal && delta.Err != nil {
				span.RecordError(delta.Err)
				span.SetStatus(observability.StatusError, string(delta.Err.Kind))
			}
			if !yield(delta) {
				return
			}
		}
	}
}

func (c *Coordinator) streamResolved(ctx context.Context, cfg config.EffectiveConfig, req ai.Request) iter.Seq[ai.StreamDelta] {
	return func(yield func(ai.StreamDelta) bool) {
		payload, err := codec.Translate(req, cfg, true)
		if err != nil {
			yield(ai.FailDelta(ai.WrapError(ai.KindParse, err, "building provider request")))
			return
		}

		response, err := utils.DoStream(ctx, c.clients.Get(cfg.BaseURL), payload.HTTPRequest())
		if err != nil {
			var statusErr *utils.StatusError
			if errors.As(err, &statusErr) {
				yield(ai.FailDelta(codec.ErrorFromStatus(cfg, statusErr)))
			} else {
				yield(ai.FailDelta(ai.WrapError(ai.KindTransport, err, "")))
			}
			return
		}
		defer utils.CloseWithLog(ctx, response.Body)

		for delta := range codec.DecodeStream(ctx, cfg, response.Body) {
			if !yield(delta) {
				return
			}
		}
	}
}

// StreamTarget streams like DispatchStream, forwarding each delta to onDelta,
// and also keeps a Target record for the call: transitions, usage, cost and
// the sink entry, exactly as a dispatched target. A stream that ends in error
// keeps the text received so far in Result.
func (c *Coordinator) StreamTarget(ctx context.Context, agent config.AgentConfig, req ai.Request, onDelta func(ai.StreamDelta)) Target {
	ctx = observability.ContextWithObserver(ctx, c.observer)
	target := &Target{
		ID:         uuid.NewString(),
		DispatchID: uuid.NewString(),
		AgentID:    agent.ID,
		AgentName:  agent.DisplayName(),
		Provider:   agent.Provider,
		Model:      agent.Model,
		Status:     StatusPending,
	}
	ctx, span := c.observer.StartSpan(ctx, observability.SpanDispatchStream,
		observability.String(observability.AttrTargetID, target.ID),
		observability.String(observability.AttrAgentID, agent.ID),
	)
	defer span.End()
	forward := func(delta ai.StreamDelta) {
		if onDelta != nil {
			onDelta(delta)
		}
	}
	noUpdates := func(Target) {}

	cfg, err := c.resolver.Resolve(ctx, agent, config.WithFallbackParams(req.Params))
	if err != nil {
		aiErr := ai.AsError(err)
		forward(ai.FailDelta(aiErr))
		return c.fail(ctx, target, aiErr, noUpdates)
	}
	target.Provider = cfg.Provider.ID
	target.Model = cfg.Model
	if payload, err := codec.Translate(req, cfg, true); err == nil {
		target.Request = snapshotRequest(payload)
	}

	c.transition(ctx, target, StatusRunning)
	target.StartedAt = time.Now()
	target.Attempts = 1

	var acc ai.Accumulator
	for delta := range c.streamResolved(ctx, cfg, req) {
		acc.Add(delta)
		forward(delta)
	}

	result := acc.Result()
	if result.Error != nil {
		target.Result = result
		target.HTTPStatus = result.Error.StatusCode
		return c.fail(ctx, target, result.Error, noUpdates)
	}
	target.HTTPStatus = 200
	return c.succeed(ctx, target, cfg, req, result, noUpdates)
}
