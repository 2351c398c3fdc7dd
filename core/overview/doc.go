// Package overview aggregates the terminal targets of a dispatch: token
// usage, cost, per-provider statistics and the wall-clock span.
// Build one with [FromTargets], or feed targets one at a time with
// [Overview.Add].
package overview
