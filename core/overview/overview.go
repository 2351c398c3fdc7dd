package overview

import (
	"slices"
	"time"

	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/providers/ai"
)

// Overview summarizes a set of targets, normally one dispatch.
type Overview struct {
	DispatchID string               `json:"dispatch_id,omitempty"`
	Targets    int                  `json:"targets"`
	Succeeded  int                  `json:"succeeded"`
	Failed     int                  `json:"failed"`
	TotalUsage ai.Usage             `json:"total_usage"`
	TotalCost  float64              `json:"total_cost"`
	Unpriced   int                  `json:"unpriced"` // successful targets without a known price
	Providers  map[string]*Stats    `json:"providers"`
	Errors     map[ai.ErrorKind]int `json:"errors,omitempty"`
	StartedAt  time.Time            `json:"started_at,omitzero"`
	FinishedAt time.Time            `json:"finished_at,omitzero"`

	fastest *dispatch.Target
}

// Stats are the per-provider totals.
type Stats struct {
	Targets   int           `json:"targets"`
	Succeeded int           `json:"succeeded"`
	Usage     ai.Usage      `json:"usage"`
	Cost      float64       `json:"cost"`
	Latency   time.Duration `json:"latency"` // sum over successful targets
}

// AverageLatency is the mean latency of successful targets.
func (s *Stats) AverageLatency() time.Duration {
	if s.Succeeded == 0 {
		return 0
	}
	return s.Latency / time.Duration(s.Succeeded)
}

// FromTargets aggregates targets into a new overview.
func FromTargets(dispatchID string, targets []dispatch.Target) *Overview {
	overview := &Overview{DispatchID: dispatchID}
	for _, target := range targets {
		overview.Add(target)
	}
	return overview
}

// Add includes one terminal target. Non-terminal targets are ignored.
func (o *Overview) Add(target dispatch.Target) {
	if !target.Status.Terminal() {
		return
	}
	if o.Providers == nil {
		o.Providers = make(map[string]*Stats)
	}
	stats := o.Providers[target.Provider]
	if stats == nil {
		stats = &Stats{}
		o.Providers[target.Provider] = stats
	}

	o.Targets++
	stats.Targets++
	o.includeTimes(target)

	if target.Status == dispatch.StatusError {
		o.Failed++
		if o.Errors == nil {
			o.Errors = make(map[ai.ErrorKind]int)
		}
		if target.Error != nil {
			o.Errors[target.Error.Kind]++
		}
		return
	}

	o.Succeeded++
	stats.Succeeded++
	o.IncludeUsage(target.Usage)
	stats.Usage = addUsage(stats.Usage, target.Usage)
	stats.Latency += target.Duration()
	if target.Cost != nil {
		o.TotalCost += *target.Cost
		stats.Cost += *target.Cost
	} else {
		o.Unpriced++
	}

	if o.fastest == nil || target.Duration() < o.fastest.Duration() {
		fastest := target.Clone()
		o.fastest = &fastest
	}
}

// IncludeUsage accumulates token usage into the totals. The total is
// estimated if any part of it was.
func (o *Overview) IncludeUsage(usage ai.Usage) {
	o.TotalUsage = addUsage(o.TotalUsage, usage)
}

func addUsage(total, usage ai.Usage) ai.Usage {
	total.InputTokens += usage.InputTokens
	total.OutputTokens += usage.OutputTokens
	total.Estimated = total.Estimated || usage.Estimated
	return total
}

func (o *Overview) includeTimes(target dispatch.Target) {
	if !target.StartedAt.IsZero() && (o.StartedAt.IsZero() || target.StartedAt.Before(o.StartedAt)) {
		o.StartedAt = target.StartedAt
	}
	if target.FinishedAt.After(o.FinishedAt) {
		o.FinishedAt = target.FinishedAt
	}
}

// Duration is the wall-clock span from the first start to the last finish.
// Returns 0 if no target carried timestamps.
func (o *Overview) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// Fastest returns the quickest successful target, if any.
func (o *Overview) Fastest() (dispatch.Target, bool) {
	if o.fastest == nil {
		return dispatch.Target{}, false
	}
	return *o.fastest, true
}

// ProviderIDs lists the providers seen, sorted.
func (o *Overview) ProviderIDs() []string {
	ids := make([]string, 0, len(o.Providers))
	for id := range o.Providers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
