// Package trace turns live interpreter state into bounded, JSON-safe
// snapshots. Format renders short previews, Serialize builds per-step heap
// tables with identity-based dedup, Snapshot and CaptureStack cover scopes
// and the call stack, and Session assembles it all into an ordered Trace,
// enforcing the step ceiling.
//
// Every walk is bounded: depth limits, preview widths, scope caps and a
// placeholder-before-recursion rule for cyclic structures. Nothing in this
// package can fail a run; rendering errors degrade to placeholders.
package trace
