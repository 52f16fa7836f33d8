package trace

// Limits that bound every snapshot. Fixed at startup, not per run.
const (
	// PreviewWidth is the max child count shown per composite value.
	PreviewWidth = 6
	// MaxRefDepth bounds nested reference serialization.
	MaxRefDepth = 3
	// MaxStringPreview is the longest string rendered verbatim; longer
	// strings are cut to StringCut characters plus an ellipsis.
	MaxStringPreview = 60
	StringCut        = 57
	// MaxScopeEntries caps one scope snapshot (4x the preview width).
	MaxScopeEntries = 4 * PreviewWidth
	// maxFormatDepth bounds the short textual rendering.
	maxFormatDepth = 2
)

// Trace is the terminal result of one run: every execution path (success,
// guest error, truncation, timeout, silent child death) produces exactly one.
type Trace struct {
	Stdout    string  `json:"stdout"`
	Steps     []Step  `json:"trace"`
	Error     *string `json:"error"`
	Truncated bool    `json:"truncated"`
	TimedOut  bool    `json:"timedOut"`
}

// New returns an empty successful trace. Steps is non-nil so the JSON field
// is always an array.
func New() *Trace {
	return &Trace{Steps: []Step{}}
}

// Failure returns an empty trace carrying only an error message.
func Failure(msg string) *Trace {
	t := New()
	t.SetError(msg)
	return t
}

// SetError marks the trace as failed with msg.
func (t *Trace) SetError(msg string) { t.Error = &msg }

// Step is one recorded instrumentation event, immutable once appended.
type Step struct {
	Event       string                `json:"event"`
	Line        int                   `json:"line"`
	FuncName    string                `json:"func_name"`
	Locals      map[string]Descriptor `json:"locals"`
	Globals     map[string]Descriptor `json:"globals"`
	Stack       []Frame               `json:"stack"`
	Heap        map[string]HeapEntry  `json:"heap"`
	ReturnValue string                `json:"return_value,omitempty"`
	Exception   *ExceptionInfo        `json:"exception,omitempty"`
}

// Frame describes one guest stack frame, outermost first in Step.Stack.
type Frame struct {
	FuncName string                `json:"func_name"`
	Line     int                   `json:"line"`
	Locals   map[string]Descriptor `json:"locals"`
}

// ExceptionInfo names an exception and its short rendering.
type ExceptionInfo struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Descriptor is the serialized form of one value: inline for scalars, a heap
// reference for composites, or a truncation placeholder at the depth bound.
type Descriptor struct {
	Type      string   `json:"type"`
	Preview   string   `json:"preview"`
	Number    *float64 `json:"number,omitempty"`
	Length    *int     `json:"length,omitempty"`
	Ref       string   `json:"ref,omitempty"`
	Truncated bool     `json:"truncated,omitempty"`
}

// HeapEntry is the per-step expansion of one composite value. Exactly one of
// Items, Entries or Attributes is populated, according to Kind.
type HeapEntry struct {
	Type       string       `json:"type"`
	Kind       string       `json:"kind"` // sequence, mapping, set, object, opaque
	Preview    string       `json:"preview"`
	Length     int          `json:"length"`
	Items      []Descriptor `json:"items,omitempty"`
	Entries    []KeyValue   `json:"entries,omitempty"`
	Attributes []Attribute  `json:"attributes,omitempty"`
	Truncated  bool         `json:"truncated,omitempty"` // more children exist than shown
}

// KeyValue is one mapping entry of a heap expansion.
type KeyValue struct {
	Key   Descriptor `json:"key"`
	Value Descriptor `json:"value"`
}

// Attribute is one named field of an object heap expansion.
type Attribute struct {
	Name  string     `json:"name"`
	Value Descriptor `json:"value"`
}
