package dispatch

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leofalp/polyprompt/core/codec"
	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/core/cost"
	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/observability"
)

// DefaultRetryDelay is the pause before the single retry of a failed call.
const DefaultRetryDelay = time.Second

// UsageEstimator fills in usage when a provider reports none.
type UsageEstimator interface {
	Estimate(req ai.Request, result ai.Result) ai.Usage
}

// Coordinator runs dispatches. It is safe for concurrent use.
type Coordinator struct {
	resolver   *config.Resolver
	clients    *ClientCache
	pricer     cost.Pricer
	estimator  UsageEstimator
	sink       Sink
	observer   observability.Provider
	retryDelay time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClients replaces SharedClients() as the HTTP client cache.
func WithClients(clients *ClientCache) Option {
	return func(c *Coordinator) { c.clients = clients }
}

// WithPricer sets the price lookup used for target cost. Without one, cost
// stays nil.
func WithPricer(pricer cost.Pricer) Option {
	return func(c *Coordinator) { c.pricer = pricer }
}

// WithEstimator enables usage estimation for providers that omit usage.
func WithEstimator(estimator UsageEstimator) Option {
	return func(c *Coordinator) { c.estimator = estimator }
}

// WithSink sets the collaborator receiving terminal snapshots.
func WithSink(sink Sink) Option {
	return func(c *Coordinator) { c.sink = sink }
}

// WithObserver sets the observability provider for spans, metrics and logs.
func WithObserver(observer observability.Provider) Option {
	return func(c *Coordinator) { c.observer = observer }
}

// WithRetryDelay overrides DefaultRetryDelay.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Coordinator) { c.retryDelay = delay }
}

// New creates a coordinator resolving agents with resolver.
func New(resolver *config.Resolver, opts ...Option) *Coordinator {
	coordinator := &Coordinator{
		resolver:   resolver,
		clients:    SharedClients(),
		sink:       nopSink{},
		observer:   observability.Nop(),
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(coordinator)
	}
	return coordinator
}

// Dispatch starts one target per agent and returns immediately. All targets
// start concurrently; a failing target never affects its siblings. req.Params
// act as the fallback parameter layer for every agent.
func (c *Coordinator) Dispatch(ctx context.Context, agents []config.AgentConfig, req ai.Request, onUpdate UpdateFunc) *Handle {
	dispatchCtx, cancel := context.WithCancel(ctx)
	handle := &Handle{
		ID:      uuid.NewString(),
		cancel:  cancel,
		done:    make(chan struct{}),
		targets: make([]Target, len(agents)),
	}
	notify := handle.notifier(onUpdate)

	dispatchCtx = observability.ContextWithObserver(dispatchCtx, c.observer)
	dispatchCtx, span := c.observer.StartSpan(dispatchCtx, observability.SpanDispatch,
		observability.String(observability.AttrDispatchID, handle.ID),
		observability.Int(observability.AttrDispatchTargets, len(agents)),
	)
	c.observer.Info(dispatchCtx, "dispatch started",
		observability.String(observability.AttrDispatchID, handle.ID),
		observability.Int(observability.AttrDispatchTargets, len(agents)),
	)

	// A plain Group: a failed target must not cancel its siblings.
	var group errgroup.Group
	for i, agent := range agents {
		group.Go(func() error {
			handle.targets[i] = c.runTarget(dispatchCtx, handle.ID, agent, req, notify)
			return nil
		})
	}

	go func() {
		defer cancel()
		_ = group.Wait()
		span.End()
		c.observer.Info(dispatchCtx, "dispatch completed",
			observability.String(observability.AttrDispatchID, handle.ID),
			observability.Bool("dispatch.cancelled", handle.Cancelled()),
		)
		close(handle.done)
	}()
	return handle
}

// runTarget drives one target to a terminal state and returns its final
// snapshot.
func (c *Coordinator) runTarget(ctx context.Context, dispatchID string, agent config.AgentConfig, req ai.Request, notify func(Target)) Target {
	target := &Target{
		ID:         uuid.NewString(),
		DispatchID: dispatchID,
		AgentID:    agent.ID,
		AgentName:  agent.DisplayName(),
		Provider:   agent.Provider,
		Model:      agent.Model,
		Status:     StatusPending,
	}
	notify(*target)

	ctx, span := c.observer.StartSpan(ctx, observability.SpanDispatchTarget,
		observability.String(observability.AttrDispatchID, dispatchID),
		observability.String(observability.AttrTargetID, target.ID),
		observability.String(observability.AttrAgentID, agent.ID),
		observability.String(observability.AttrLLMProvider, agent.Provider),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		return c.fail(ctx, target, ai.WrapError(ai.KindTransport, err, "dispatch cancelled"), notify)
	}

	cfg, err := c.resolver.Resolve(ctx, agent, config.WithFallbackParams(req.Params))
	if err != nil {
		return c.fail(ctx, target, ai.AsError(err), notify)
	}
	target.Provider = cfg.Provider.ID
	target.Model = cfg.Model
	span.SetAttributes(
		observability.String(observability.AttrLLMProvider, cfg.Provider.ID),
		observability.String(observability.AttrLLMModel, cfg.Model),
		observability.String(observability.AttrLLMShape, string(cfg.Shape)),
	)

	payload, err := codec.Translate(req, cfg, false)
	if err != nil {
		return c.fail(ctx, target, ai.WrapError(ai.KindParse, err, "building provider request"), notify)
	}
	target.Request = snapshotRequest(payload)

	c.transition(ctx, target, StatusRunning)
	target.StartedAt = time.Now()
	notify(*target)

	client := c.clients.Get(cfg.BaseURL)
	for attempt := 1; ; attempt++ {
		target.Attempts = attempt
		result, body := c.call(ctx, client, cfg, payload)
		target.HTTPStatus = result.HTTPStatus
		target.Response = utils.TruncateString(string(body), maxResponseSnapshot)

		if result.Error == nil {
			return c.succeed(ctx, target, cfg, req, result, notify)
		}

		target.Result = result
		if attempt >= 2 || !result.Error.Retryable() || ctx.Err() != nil {
			return c.fail(ctx, target, result.Error, notify)
		}

		c.observer.Warn(ctx, "provider call failed, retrying",
			observability.String(observability.AttrTargetID, target.ID),
			observability.String(observability.AttrLLMProvider, cfg.Provider.ID),
			observability.Int(observability.AttrHTTPStatusCode, result.HTTPStatus),
			observability.Duration("retry.delay", c.retryDelay),
			observability.Error(result.Error),
		)
		span.AddEvent(observability.EventTargetRetry, observability.Int(observability.AttrTargetAttempt, attempt+1))
		c.observer.Counter(observability.MetricTargetRetries).Add(ctx, 1,
			observability.String(observability.AttrLLMProvider, cfg.Provider.ID))

		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return c.fail(ctx, target, ai.WrapError(ai.KindTransport, ctx.Err(), "dispatch cancelled"), notify)
		case <-timer.C:
		}
	}
}

// call performs one provider round trip. The returned result carries the
// classified error, if any; body is the raw response for snapshots.
func (c *Coordinator) call(ctx context.Context, client *http.Client, cfg config.EffectiveConfig, payload *codec.Payload) (ai.Result, []byte) {
	status, body, err := utils.DoSync(ctx, client, payload.HTTPRequest())
	if err != nil {
		return ai.Result{HTTPStatus: status, Error: ai.WrapError(ai.KindTransport, err, "")}, body
	}
	return codec.Normalize(cfg, status, body), body
}

func (c *Coordinator) succeed(ctx context.Context, target *Target, cfg config.EffectiveConfig, req ai.Request, result ai.Result, notify func(Target)) Target {
	usage := result.Usage
	if usage.IsZero() && c.estimator != nil {
		usage = c.estimator.Estimate(req, result)
		result.Usage = usage
	}
	target.Result = result
	target.Usage = usage
	target.Citations = result.Citations
	target.Error = nil
	if c.pricer != nil {
		price := c.pricer.PriceFor(cfg.Model)
		if price == nil && result.Model != "" {
			price = c.pricer.PriceFor(result.Model)
		}
		target.Cost = cost.Compute(price, usage)
	}
	c.transition(ctx, target, StatusSuccess)
	return c.finish(ctx, target, notify)
}

func (c *Coordinator) fail(ctx context.Context, target *Target, err *ai.Error, notify func(Target)) Target {
	target.Error = err
	target.Result.Error = err
	if target.HTTPStatus == 0 {
		target.HTTPStatus = err.StatusCode
	}
	c.transition(ctx, target, StatusError)
	return c.finish(ctx, target, notify)
}

func (c *Coordinator) transition(ctx context.Context, target *Target, to Status) {
	from := target.Status
	if err := target.transition(to); err != nil {
		// Unreachable through runTarget; logged rather than panicking.
		c.observer.Error(ctx, "target state machine violation", observability.Error(err))
		return
	}
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventTargetTransition,
			observability.String("from", string(from)),
			observability.String(observability.AttrTargetStatus, string(to)),
		)
	}
}

// finish records metrics and the sink entry for a terminal target.
func (c *Coordinator) finish(ctx context.Context, target *Target, notify func(Target)) Target {
	target.FinishedAt = time.Now()
	if target.StartedAt.IsZero() {
		target.StartedAt = target.FinishedAt
	}
	snapshot := target.Clone()

	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMProvider, target.Provider),
		observability.String(observability.AttrLLMModel, target.Model),
		observability.String(observability.AttrTargetStatus, string(target.Status)),
	}
	c.observer.Counter(observability.MetricTargetCount).Add(ctx, 1, attrs...)
	c.observer.Histogram(observability.MetricTargetDuration).Record(ctx, target.Duration().Seconds(), attrs...)
	if target.Status == StatusSuccess {
		c.observer.Counter(observability.MetricTokensPrompt).Add(ctx, int64(target.Usage.InputTokens), attrs...)
		c.observer.Counter(observability.MetricTokensCompletion).Add(ctx, int64(target.Usage.OutputTokens), attrs...)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrTargetStatus, string(target.Status)),
			observability.Int(observability.AttrTargetAttempt, target.Attempts),
			observability.Int(observability.AttrLLMTokensPrompt, target.Usage.InputTokens),
			observability.Int(observability.AttrLLMTokensCompletion, target.Usage.OutputTokens),
			observability.Bool(observability.AttrLLMTokensEstimated, target.Usage.Estimated),
		)
		if target.Cost != nil {
			span.SetAttributes(observability.Float64(observability.AttrLLMCost, *target.Cost))
		}
		if target.Error != nil {
			span.RecordError(target.Error)
			span.SetStatus(observability.StatusError, string(target.Error.Kind))
		} else {
			span.SetStatus(observability.StatusOK, "success")
		}
	}

	logAttrs := append(attrs,
		observability.String(observability.AttrTargetID, target.ID),
		observability.Int(observability.AttrTargetAttempt, target.Attempts),
		observability.Duration(observability.AttrDuration, target.Duration()),
	)
	if target.Error != nil {
		c.observer.Warn(ctx, "target failed", append(logAttrs, observability.Error(target.Error))...)
	} else {
		c.observer.Info(ctx, "target succeeded", logAttrs...)
	}

	// The sink gets the snapshot even after cancellation; results are never
	// rolled back.
	if err := c.sink.Record(context.WithoutCancel(ctx), snapshot); err != nil {
		c.observer.Error(ctx, "recording target failed",
			observability.String(observability.AttrTargetID, target.ID),
			observability.Error(err),
		)
	}
	notify(snapshot)
	return snapshot
}
