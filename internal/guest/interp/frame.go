package interp

// Frame is one activation record of guest code. The module frame doubles as
// the globals holder; function frames link back to it.
type Frame struct {
	name     string
	line     int // current source line
	lastLine int // last line a line-event was emitted for
	locals   map[string]Value
	globals  map[string]bool // names declared global in this frame
	module   *Frame          // nil for the module frame itself
	back     *Frame          // caller, nil for the module frame
}

func newModuleFrame() *Frame {
	return &Frame{
		name:     "<module>",
		lastLine: -1,
		locals:   map[string]Value{"__name__": Str("__main__")},
	}
}

func newFunctionFrame(fn *Function, module, back *Frame) *Frame {
	return &Frame{
		name:     fn.Name,
		line:     fn.Line,
		lastLine: -1,
		locals:   make(map[string]Value, len(fn.Params)),
		module:   module,
		back:     back,
	}
}

// Name returns the frame's function name ("<module>" for top level).
func (f *Frame) Name() string { return f.name }

// Line returns the source line currently executing in this frame.
func (f *Frame) Line() int { return f.line }

// Back returns the calling frame, nil at the module frame.
func (f *Frame) Back() *Frame { return f.back }

// Bindings returns the frame's local bindings. The module frame's locals are
// the run's globals.
func (f *Frame) Bindings() map[string]Value { return f.locals }

// GlobalBindings returns the module-level bindings visible from this frame.
func (f *Frame) GlobalBindings() map[string]Value {
	if f.module != nil {
		return f.module.locals
	}
	return f.locals
}

func (f *Frame) moduleFrame() *Frame {
	if f.module != nil {
		return f.module
	}
	return f
}

func (f *Frame) isGlobalName(name string) bool {
	return f.module != nil && f.globals != nil && f.globals[name]
}

func (f *Frame) declareGlobal(name string) {
	if f.globals == nil {
		f.globals = map[string]bool{}
	}
	f.globals[name] = true
}
