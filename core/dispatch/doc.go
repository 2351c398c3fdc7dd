// Package dispatch fans one logical request out to several agents at once
// and tracks each agent's call as a Target moving through
// pending → running → success | error.
//
// Every target runs in its own goroutine and owns its record until it
// publishes a terminal snapshot; siblings never share mutable state apart
// from the read-only HTTP clients held by a [ClientCache]. A failed call is
// retried once after a fixed delay when the failure is a transport error or
// an HTTP error. Progress is reported through an update callback carrying a
// full snapshot on every transition, and terminal snapshots are handed to a
// [Sink].
//
// [Coordinator.DispatchStream] is the single-target streaming variant: it
// yields normalized deltas ending with exactly one terminal delta and is
// never retried.
package dispatch
