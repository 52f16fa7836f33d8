// Package interp is a tree-walking evaluator for the guest language. It
// executes a parsed program statement by statement and reports progress to an
// optional Hook with call, line, return and exception events, which is what
// the tracer uses to snapshot execution.
//
// Values are modeled in value.go; composites are pointers so identity is
// observable. Guest exceptions travel as *GuestError and are catchable by
// guest try/except; hook failures travel as an uncatchable abort.
package interp
