package interp

import "fmt"

// GuestError is a guest-level exception travelling up the interpreter.
// Line and FuncName are filled in at the frame where it first surfaces.
type GuestError struct {
	TypeName string
	Message  string
	Line     int
	FuncName string

	val    *Exc
	traced map[*Frame]bool
}

func (e *GuestError) Error() string {
	return fmt.Sprintf("%s: %s", e.TypeName, e.Message)
}

// Value returns the exception instance seen by guest code and the tracer.
func (e *GuestError) Value() Value {
	if e.val == nil {
		e.val = &Exc{TypeName: e.TypeName, Message: e.Message, Args: &Tuple{Items: []Value{Str(e.Message)}}}
	}
	return e.val
}

func newError(typeName, format string, args ...interface{}) *GuestError {
	return &GuestError{TypeName: typeName, Message: fmt.Sprintf(format, args...)}
}

func errorFromExc(exc *Exc) *GuestError {
	return &GuestError{TypeName: exc.TypeName, Message: exc.Message, val: exc}
}

// abortError wraps a hook failure. It is never catchable by guest code and
// unwinds the whole run.
type abortError struct {
	cause error
}

func (e *abortError) Error() string { return "trace aborted: " + e.cause.Error() }

func (e *abortError) Unwrap() error { return e.cause }

// AbortCause returns the hook error that aborted a run, or nil if the error
// is not an abort.
func AbortCause(err error) error {
	if a, ok := err.(*abortError); ok {
		return a.cause
	}
	return nil
}

// loop and return control flow, threaded as errors through block execution
type breakSignal struct{}
type continueSignal struct{}

func (breakSignal) Error() string    { return "break" }
func (continueSignal) Error() string { return "continue" }

type returnSignal struct {
	value Value
}

func (returnSignal) Error() string { return "return" }
