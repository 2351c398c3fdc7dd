package observability

// Attribute keys, span names and metric names shared by the dispatch
// pipeline. Use these instead of ad-hoc strings so log lines from different
// components line up.

// --- LLM attributes ---

const (
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMEndpoint     = "llm.endpoint"
	AttrLLMShape        = "llm.shape"
	AttrLLMStreamKind   = "llm.stream_kind"
	AttrLLMFinishReason = "llm.finish_reason"

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensEstimated  = "llm.tokens.estimated"  // #nosec G101 -- LLM tokens, not credentials
	AttrLLMCost             = "llm.cost"
)

// --- Dispatch attributes ---

const (
	AttrDispatchID      = "dispatch.id"
	AttrDispatchTargets = "dispatch.targets"
	AttrTargetID        = "target.id"
	AttrAgentID         = "agent.id"
	AttrTargetStatus    = "target.status"
	AttrTargetAttempt   = "target.attempt"
	AttrStreamEvent     = "stream.event"
)

// --- HTTP attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// --- General attributes ---

const (
	AttrError     = "error"
	AttrErrorType = "error.type"
	AttrDuration  = "duration"
	AttrStatus    = "status"
)

// --- Span names ---

const (
	SpanDispatch       = "dispatch"
	SpanDispatchTarget = "dispatch.target"
	SpanDispatchStream = "dispatch.stream"
)

// --- Event names ---

const (
	EventTargetTransition = "target.transition"
	EventTargetRetry      = "target.retry"
	EventStreamSkipped    = "stream.event.skipped"
)

// --- Metric names ---

const (
	MetricTargetCount      = "polyprompt.target.count"
	MetricTargetDuration   = "polyprompt.target.duration"
	MetricTargetRetries    = "polyprompt.target.retries"
	MetricTokensPrompt     = "polyprompt.tokens.prompt"
	MetricTokensCompletion = "polyprompt.tokens.completion"
)
