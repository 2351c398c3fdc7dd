package dispatch

import (
	"context"
	"sync/atomic"
)

// UpdateFunc receives a self-contained target snapshot on every transition.
// It may be called from any goroutine, concurrently for different targets.
type UpdateFunc func(Target)

// Handle controls a running dispatch.
type Handle struct {
	ID string

	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}
	targets   []Target
}

// Cancel stops update callbacks and cancels in-flight calls of non-terminal
// targets. Targets that already finished keep their results.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.cancel()
}

// Cancelled reports whether Cancel was called.
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Done is closed once every target is terminal.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the dispatch completes and returns one terminal snapshot
// per agent, in the order the agents were given.
func (h *Handle) Wait() []Target {
	<-h.done
	out := make([]Target, len(h.targets))
	for i, target := range h.targets {
		out[i] = target.Clone()
	}
	return out
}

func (h *Handle) notifier(onUpdate UpdateFunc) func(Target) {
	return func(target Target) {
		if onUpdate == nil || h.cancelled.Load() {
			return
		}
		onUpdate(target.Clone())
	}
}
