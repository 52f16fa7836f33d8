package trace

import (
	"errors"

	"github.com/stepscope/backend/internal/guest/interp"
)

// ErrStepLimit is returned by Session.Hook once the step ceiling is reached.
// The interpreter turns it into an uncatchable abort, so guest try/except
// cannot swallow it.
var ErrStepLimit = errors.New("step limit reached")

// Session accumulates the steps of exactly one run. It is owned by the
// sandbox runner and threaded into the interpreter as its hook; there is no
// ambient tracer state.
type Session struct {
	limit int
	reg   *Registry
	steps []Step
}

func NewSession(limit int) *Session {
	return &Session{
		limit: limit,
		reg:   NewRegistry(),
		steps: []Step{},
	}
}

// Steps returns the recorded steps, never nil.
func (s *Session) Steps() []Step { return s.steps }

// Hook records one instrumentation event as a Step with its own fresh heap
// table. It enforces the step ceiling before recording.
func (s *Session) Hook(ev interp.Event, fr *interp.Frame, arg interp.Value) error {
	if len(s.steps) >= s.limit {
		return ErrStepLimit
	}

	heap := map[string]HeapEntry{}
	step := Step{
		Event:    string(ev),
		Line:     fr.Line(),
		FuncName: fr.Name(),
		Locals:   Snapshot(fr.Bindings(), heap, s.reg),
		Globals:  Snapshot(fr.GlobalBindings(), heap, s.reg),
		Stack:    CaptureStack(fr, heap, s.reg),
		Heap:     heap,
	}
	switch ev {
	case interp.EventReturn:
		if arg != nil {
			step.ReturnValue = Format(arg)
		}
	case interp.EventException:
		if exc, ok := arg.(*interp.Exc); ok {
			step.Exception = &ExceptionInfo{Type: exc.TypeName, Value: Format(arg)}
		}
	}
	s.steps = append(s.steps, step)
	return nil
}
