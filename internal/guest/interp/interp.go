package interp

import (
	"io"

	"github.com/stepscope/backend/internal/guest/lang"
)

// Event is an instrumentation event kind, mirroring the classic
// call/line/return/exception tracing vocabulary.
type Event string

const (
	EventCall      Event = "call"
	EventLine      Event = "line"
	EventReturn    Event = "return"
	EventException Event = "exception"
)

// Hook is invoked synchronously between guest statements and around frame
// boundaries. arg carries the return value for EventReturn and the exception
// instance for EventException, nil otherwise. A non-nil error aborts the run
// immediately and cannot be caught by guest code.
type Hook func(ev Event, fr *Frame, arg Value) error

// maxCallDepth bounds guest recursion so a runaway recursive function
// surfaces as a guest error instead of exhausting the host stack.
const maxCallDepth = 200

// Interp executes one parsed guest program. It owns the module frame and the
// binding environments; print output goes to stdout.
type Interp struct {
	stdout     io.Writer
	hook       Hook
	module     *Frame
	builtins   map[string]Value
	depth      int
	currentExc *GuestError // active exception inside an except block
}

// New creates an interpreter writing guest output to stdout. hook may be nil.
func New(stdout io.Writer, hook Hook) *Interp {
	it := &Interp{
		stdout: stdout,
		hook:   hook,
		module: newModuleFrame(),
	}
	it.builtins = builtinTable()
	return it
}

// Globals exposes the module bindings, mainly for tests.
func (it *Interp) Globals() map[string]Value { return it.module.locals }

// Run executes the program's module body. The returned error is nil on
// normal completion, a *GuestError for an uncaught guest exception, or an
// abort wrapping the hook's error (see AbortCause).
func (it *Interp) Run(prog *lang.Program) error {
	fr := it.module
	if len(prog.Body) > 0 {
		fr.line = prog.Body[0].Pos()
	}
	if err := it.emit(EventCall, fr, nil); err != nil {
		return err
	}
	if err := it.execBlock(prog.Body, fr); err != nil {
		return err
	}
	return it.emit(EventReturn, fr, None)
}

func (it *Interp) emit(ev Event, fr *Frame, arg Value) error {
	if it.hook == nil {
		return nil
	}
	if err := it.hook(ev, fr, arg); err != nil {
		return &abortError{cause: err}
	}
	return nil
}

// traceLine records the current line and emits a line event when execution
// moves to a different source line than the last one traced in this frame.
// A single-line loop therefore emits one line event and then spins silently,
// leaving wall-clock enforcement to the supervisor.
func (it *Interp) traceLine(fr *Frame, line int) error {
	fr.line = line
	if line == fr.lastLine {
		return nil
	}
	fr.lastLine = line
	return it.emit(EventLine, fr, nil)
}

func (it *Interp) execBlock(stmts []lang.Stmt, fr *Frame) error {
	for _, s := range stmts {
		if err := it.traceLine(fr, s.Pos()); err != nil {
			return err
		}
		if err := it.execStmt(s, fr); err != nil {
			if ge, ok := err.(*GuestError); ok {
				if aerr := it.noteException(ge, fr); aerr != nil {
					return aerr
				}
			}
			return err
		}
	}
	return nil
}

// noteException emits an exception event the first time an unwinding error
// passes through fr, and stamps the raise location onto the error.
func (it *Interp) noteException(ge *GuestError, fr *Frame) error {
	if ge.Line == 0 {
		ge.Line = fr.line
		ge.FuncName = fr.name
	}
	if ge.traced == nil {
		ge.traced = map[*Frame]bool{}
	}
	if ge.traced[fr] {
		return nil
	}
	ge.traced[fr] = true
	return it.emit(EventException, fr, ge.Value())
}

func (it *Interp) execStmt(s lang.Stmt, fr *Frame) error {
	switch t := s.(type) {
	case *lang.ExprStmt:
		_, err := it.evalExpr(t.X, fr)
		return err

	case *lang.AssignStmt:
		return it.execAssign(t, fr)

	case *lang.PassStmt:
		return nil

	case *lang.IfStmt:
		cond, err := it.evalExpr(t.Cond, fr)
		if err != nil {
			return err
		}
		if Truthy(cond) {
			return it.execBlock(t.Body, fr)
		}
		return it.execBlock(t.Else, fr)

	case *lang.WhileStmt:
		for {
			if err := it.traceLine(fr, t.Line); err != nil {
				return err
			}
			cond, err := it.evalExpr(t.Cond, fr)
			if err != nil {
				return err
			}
			if !Truthy(cond) {
				return nil
			}
			if err := it.execBlock(t.Body, fr); err != nil {
				switch err.(type) {
				case breakSignal:
					return nil
				case continueSignal:
					continue
				}
				return err
			}
		}

	case *lang.ForStmt:
		iter, err := it.evalExpr(t.Iter, fr)
		if err != nil {
			return err
		}
		items, err := iterate(iter)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := it.traceLine(fr, t.Line); err != nil {
				return err
			}
			if err := it.assignTarget(t.Target, item, fr); err != nil {
				return err
			}
			if err := it.execBlock(t.Body, fr); err != nil {
				switch err.(type) {
				case breakSignal:
					return nil
				case continueSignal:
					continue
				}
				return err
			}
		}
		return nil

	case *lang.DefStmt:
		fn := &Function{Name: t.Name, Params: t.Params, Body: t.Body, Line: t.Line}
		it.setVar(fr, t.Name, fn)
		return nil

	case *lang.ReturnStmt:
		val := Value(None)
		if t.Value != nil {
			v, err := it.evalExpr(t.Value, fr)
			if err != nil {
				return err
			}
			val = v
		}
		return returnSignal{value: val}

	case *lang.BreakStmt:
		return breakSignal{}

	case *lang.ContinueStmt:
		return continueSignal{}

	case *lang.RaiseStmt:
		return it.execRaise(t, fr)

	case *lang.GlobalStmt:
		if fr.module == nil {
			return nil // global at module level is a no-op
		}
		for _, n := range t.Names {
			fr.declareGlobal(n)
		}
		return nil

	case *lang.TryStmt:
		return it.execTry(t, fr)
	}
	return newError("RuntimeError", "unsupported statement")
}

func (it *Interp) execAssign(t *lang.AssignStmt, fr *Frame) error {
	if t.Op == "=" {
		val, err := it.evalExpr(t.Value, fr)
		if err != nil {
			return err
		}
		return it.assignTarget(t.Target, val, fr)
	}

	// augmented assignment: read, combine, store
	rhs, err := it.evalExpr(t.Value, fr)
	if err != nil {
		return err
	}
	op := t.Op[:1]
	switch target := t.Target.(type) {
	case *lang.Name:
		cur, err := it.lookup(fr, target.Ident, target.Line)
		if err != nil {
			return err
		}
		res, err := binaryOp(op, cur, rhs)
		if err != nil {
			return err
		}
		it.setVar(fr, target.Ident, res)
		return nil
	case *lang.IndexExpr:
		container, err := it.evalExpr(target.X, fr)
		if err != nil {
			return err
		}
		idx, err := it.evalExpr(target.Index, fr)
		if err != nil {
			return err
		}
		cur, err := getIndex(container, idx)
		if err != nil {
			return err
		}
		res, err := binaryOp(op, cur, rhs)
		if err != nil {
			return err
		}
		return setIndex(container, idx, res)
	}
	return newError("SyntaxError", "invalid target for augmented assignment")
}

func (it *Interp) assignTarget(target lang.Expr, val Value, fr *Frame) error {
	switch t := target.(type) {
	case *lang.Name:
		it.setVar(fr, t.Ident, val)
		return nil
	case *lang.IndexExpr:
		container, err := it.evalExpr(t.X, fr)
		if err != nil {
			return err
		}
		idx, err := it.evalExpr(t.Index, fr)
		if err != nil {
			return err
		}
		return setIndex(container, idx, val)
	case *lang.TupleLit:
		items, ok := sequenceItems(val)
		if !ok {
			return newError("TypeError", "cannot unpack non-sequence %s", TypeName(val))
		}
		if len(items) < len(t.Elems) {
			return newError("ValueError", "not enough values to unpack (expected %d, got %d)", len(t.Elems), len(items))
		}
		if len(items) > len(t.Elems) {
			return newError("ValueError", "too many values to unpack (expected %d)", len(t.Elems))
		}
		for i, el := range t.Elems {
			if err := it.assignTarget(el, items[i], fr); err != nil {
				return err
			}
		}
		return nil
	}
	return newError("SyntaxError", "cannot assign to expression")
}

func (it *Interp) execRaise(t *lang.RaiseStmt, fr *Frame) error {
	if t.Exc == nil {
		if it.currentExc == nil {
			return newError("RuntimeError", "No active exception to re-raise")
		}
		// re-raise propagates fresh from here
		ge := errorFromExc(it.currentExc.Value().(*Exc))
		return ge
	}
	v, err := it.evalExpr(t.Exc, fr)
	if err != nil {
		return err
	}
	switch exc := v.(type) {
	case *Exc:
		return errorFromExc(exc)
	case *Builtin:
		// "raise ValueError" without a call
		res, err := exc.Fn(it, nil)
		if err != nil {
			return err
		}
		if e, ok := res.(*Exc); ok {
			return errorFromExc(e)
		}
	}
	return newError("TypeError", "exceptions must derive from BaseException")
}

func (it *Interp) execTry(t *lang.TryStmt, fr *Frame) error {
	err := it.execBlock(t.Body, fr)
	if ge, ok := err.(*GuestError); ok {
		for i := range t.Handlers {
			h := &t.Handlers[i]
			if !handlerMatches(h, ge) {
				continue
			}
			if err2 := it.traceLine(fr, h.Line); err2 != nil {
				return err2
			}
			if h.Name != "" {
				it.setVar(fr, h.Name, ge.Value())
			}
			prev := it.currentExc
			it.currentExc = ge
			err = it.execBlock(h.Body, fr)
			it.currentExc = prev
			break
		}
	}
	if len(t.Finally) > 0 {
		if ferr := it.execBlock(t.Finally, fr); ferr != nil {
			return ferr // an error in finally supersedes the pending one
		}
	}
	return err
}

func handlerMatches(h *lang.ExceptClause, ge *GuestError) bool {
	if h.Type == "" || h.Type == "Exception" || h.Type == "BaseException" {
		return true
	}
	return h.Type == ge.TypeName
}

func (it *Interp) setVar(fr *Frame, name string, val Value) {
	if fr.isGlobalName(name) {
		fr.moduleFrame().locals[name] = val
		return
	}
	fr.locals[name] = val
}

func (it *Interp) lookup(fr *Frame, name string, line int) (Value, error) {
	if v, ok := fr.locals[name]; ok {
		return v, nil
	}
	if fr.module != nil {
		if v, ok := fr.module.locals[name]; ok {
			return v, nil
		}
	}
	if v, ok := it.builtins[name]; ok {
		return v, nil
	}
	return nil, newError("NameError", "name '%s' is not defined", name)
}

func (it *Interp) evalExpr(e lang.Expr, fr *Frame) (Value, error) {
	switch t := e.(type) {
	case *lang.NumberLit:
		if t.IsFloat {
			return Float(t.Float), nil
		}
		return Int(t.Int), nil
	case *lang.StringLit:
		return Str(t.Value), nil
	case *lang.BoolLit:
		return Bool(t.Value), nil
	case *lang.NoneLit:
		return None, nil
	case *lang.Name:
		return it.lookup(fr, t.Ident, t.Line)

	case *lang.ListLit:
		items, err := it.evalAll(t.Elems, fr)
		if err != nil {
			return nil, err
		}
		return &List{Items: items}, nil
	case *lang.TupleLit:
		items, err := it.evalAll(t.Elems, fr)
		if err != nil {
			return nil, err
		}
		return &Tuple{Items: items}, nil
	case *lang.DictLit:
		d := NewDict()
		for i, ke := range t.Keys {
			k, err := it.evalExpr(ke, fr)
			if err != nil {
				return nil, err
			}
			v, err := it.evalExpr(t.Values[i], fr)
			if err != nil {
				return nil, err
			}
			if !d.Set(k, v) {
				return nil, newError("TypeError", "unhashable type: '%s'", TypeName(k))
			}
		}
		return d, nil
	case *lang.SetLit:
		s := NewSet()
		for _, ee := range t.Elems {
			v, err := it.evalExpr(ee, fr)
			if err != nil {
				return nil, err
			}
			if !s.Add(v) {
				return nil, newError("TypeError", "unhashable type: '%s'", TypeName(v))
			}
		}
		return s, nil

	case *lang.UnaryExpr:
		v, err := it.evalExpr(t.X, fr)
		if err != nil {
			return nil, err
		}
		return unaryOp(t.Op, v)

	case *lang.BoolOpExpr:
		left, err := it.evalExpr(t.Left, fr)
		if err != nil {
			return nil, err
		}
		if t.Op == "and" {
			if !Truthy(left) {
				return left, nil
			}
			return it.evalExpr(t.Right, fr)
		}
		if Truthy(left) {
			return left, nil
		}
		return it.evalExpr(t.Right, fr)

	case *lang.BinaryExpr:
		left, err := it.evalExpr(t.Left, fr)
		if err != nil {
			return nil, err
		}
		right, err := it.evalExpr(t.Right, fr)
		if err != nil {
			return nil, err
		}
		return binaryOp(t.Op, left, right)

	case *lang.IndexExpr:
		container, err := it.evalExpr(t.X, fr)
		if err != nil {
			return nil, err
		}
		idx, err := it.evalExpr(t.Index, fr)
		if err != nil {
			return nil, err
		}
		return getIndex(container, idx)

	case *lang.AttrExpr:
		recv, err := it.evalExpr(t.X, fr)
		if err != nil {
			return nil, err
		}
		if !hasMethod(recv, t.Name) {
			return nil, newError("AttributeError", "'%s' object has no attribute '%s'", TypeName(recv), t.Name)
		}
		return &BoundMethod{Recv: recv, Name: t.Name}, nil

	case *lang.CallExpr:
		fn, err := it.evalExpr(t.Fn, fr)
		if err != nil {
			return nil, err
		}
		args, err := it.evalAll(t.Args, fr)
		if err != nil {
			return nil, err
		}
		return it.call(fn, args, fr)
	}
	return nil, newError("RuntimeError", "unsupported expression")
}

func (it *Interp) evalAll(exprs []lang.Expr, fr *Frame) ([]Value, error) {
	items := make([]Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := it.evalExpr(e, fr)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func (it *Interp) call(fn Value, args []Value, fr *Frame) (Value, error) {
	switch f := fn.(type) {
	case *Builtin:
		return f.Fn(it, args)

	case *BoundMethod:
		return callMethod(it, f.Recv, f.Name, args)

	case *Function:
		if len(args) != len(f.Params) {
			return nil, newError("TypeError", "%s() takes %d positional arguments but %d were given",
				f.Name, len(f.Params), len(args))
		}
		if it.depth >= maxCallDepth {
			return nil, newError("RecursionError", "maximum recursion depth exceeded")
		}
		nf := newFunctionFrame(f, it.module, fr)
		for i, p := range f.Params {
			nf.locals[p] = args[i]
		}
		it.depth++
		defer func() { it.depth-- }()
		if err := it.emit(EventCall, nf, nil); err != nil {
			return nil, err
		}
		err := it.execBlock(f.Body, nf)
		if err == nil {
			if err := it.emit(EventReturn, nf, None); err != nil {
				return nil, err
			}
			return None, nil
		}
		if rs, ok := err.(returnSignal); ok {
			if err := it.emit(EventReturn, nf, rs.value); err != nil {
				return nil, err
			}
			return rs.value, nil
		}
		return nil, err
	}
	return nil, newError("TypeError", "'%s' object is not callable", TypeName(fn))
}

// iterate snapshots a container for for-loops, so mutation during iteration
// cannot loop forever.
func iterate(v Value) ([]Value, error) {
	switch t := v.(type) {
	case *List:
		items := make([]Value, len(t.Items))
		copy(items, t.Items)
		return items, nil
	case *Tuple:
		items := make([]Value, len(t.Items))
		copy(items, t.Items)
		return items, nil
	case Str:
		items := make([]Value, 0, len(t))
		for _, r := range string(t) {
			items = append(items, Str(string(r)))
		}
		return items, nil
	case *Dict:
		items := make([]Value, len(t.keys))
		copy(items, t.keys)
		return items, nil
	case *Set:
		items := make([]Value, len(t.elems))
		copy(items, t.elems)
		return items, nil
	}
	return nil, newError("TypeError", "'%s' object is not iterable", TypeName(v))
}

func getIndex(container, idx Value) (Value, error) {
	switch t := container.(type) {
	case *List:
		i, err := normalizeIndex(idx, len(t.Items), "list")
		if err != nil {
			return nil, err
		}
		return t.Items[i], nil
	case *Tuple:
		i, err := normalizeIndex(idx, len(t.Items), "tuple")
		if err != nil {
			return nil, err
		}
		return t.Items[i], nil
	case Str:
		runes := []rune(string(t))
		i, err := normalizeIndex(idx, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return Str(string(runes[i])), nil
	case *Dict:
		if _, ok := hashKey(idx); !ok {
			return nil, newError("TypeError", "unhashable type: '%s'", TypeName(idx))
		}
		v, found := t.Get(idx)
		if !found {
			return nil, newError("KeyError", "%s", Repr(idx))
		}
		return v, nil
	}
	return nil, newError("TypeError", "'%s' object is not subscriptable", TypeName(container))
}

func setIndex(container, idx, val Value) error {
	switch t := container.(type) {
	case *List:
		i, err := normalizeIndex(idx, len(t.Items), "list")
		if err != nil {
			return err
		}
		t.Items[i] = val
		return nil
	case *Dict:
		if !t.Set(idx, val) {
			return newError("TypeError", "unhashable type: '%s'", TypeName(idx))
		}
		return nil
	case *Tuple:
		return newError("TypeError", "'tuple' object does not support item assignment")
	case Str:
		return newError("TypeError", "'str' object does not support item assignment")
	}
	return newError("TypeError", "'%s' object does not support item assignment", TypeName(container))
}

func normalizeIndex(idx Value, length int, kind string) (int, error) {
	n, ok := asInt(idx)
	if !ok {
		return 0, newError("TypeError", "%s indices must be integers, not %s", kind, TypeName(idx))
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, newError("IndexError", "%s index out of range", kind)
	}
	return i, nil
}
