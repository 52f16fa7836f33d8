package sandbox

import (
	"bytes"
	"fmt"

	"github.com/stepscope/backend/internal/guest/interp"
	"github.com/stepscope/backend/internal/guest/lang"
	"github.com/stepscope/backend/internal/trace"
)

// Run executes guest source under tracing and never fails: every outcome,
// including a syntax error, becomes a well-formed *trace.Trace. It runs
// inside the worker process; the wall-clock budget is the supervisor's job.
func Run(source string, cfg Config) *trace.Trace {
	result := trace.New()

	prog, err := lang.Parse(source)
	if err != nil {
		if se, ok := err.(*lang.SyntaxError); ok {
			result.SetError(formatSyntaxError(se))
		} else {
			result.SetError(err.Error())
		}
		return result
	}

	var stdout bytes.Buffer
	session := trace.NewSession(cfg.MaxSteps)
	it := interp.New(&stdout, session.Hook)

	err = it.Run(prog)
	result.Stdout = stdout.String()
	result.Steps = session.Steps()

	switch {
	case err == nil:
	case interp.AbortCause(err) == trace.ErrStepLimit:
		result.Truncated = true
		result.SetError(stepLimitMessage(cfg.MaxSteps))
	default:
		if ge, ok := err.(*interp.GuestError); ok {
			result.SetError(formatGuestError(ge))
		} else {
			result.SetError(err.Error())
		}
	}
	return result
}

// formatGuestError renders an uncaught guest exception as a short traceback
// naming the line where it surfaced.
func formatGuestError(ge *interp.GuestError) string {
	return fmt.Sprintf("Traceback (most recent call last):\n  File \"%s\", line %d, in %s\n%s: %s",
		SourceName, ge.Line, ge.FuncName, ge.TypeName, ge.Message)
}

func formatSyntaxError(se *lang.SyntaxError) string {
	return fmt.Sprintf("  File \"%s\", line %d\nSyntaxError: %s", SourceName, se.Line, se.Msg)
}
