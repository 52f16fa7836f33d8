package trace

import "github.com/stepscope/backend/internal/guest/interp"

// CaptureStack walks the frame chain from the current frame outward and
// returns guest frames in call order, outermost first. A repeated frame
// identity stops the walk.
func CaptureStack(fr *interp.Frame, heap map[string]HeapEntry, reg *Registry) []Frame {
	var collected []*interp.Frame
	seen := map[*interp.Frame]bool{}
	for f := fr; f != nil; f = f.Back() {
		if seen[f] {
			break
		}
		seen[f] = true
		collected = append(collected, f)
	}

	out := make([]Frame, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		f := collected[i]
		out = append(out, Frame{
			FuncName: f.Name(),
			Line:     f.Line(),
			Locals:   Snapshot(f.Bindings(), heap, reg),
		})
	}
	return out
}
