package interp

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/stepscope/backend/internal/guest/lang"
)

// Value is any guest runtime value. Scalars (None, Bool, Int, Float, Str)
// are plain Go values; composites are pointers so that identity comparisons
// and heap reference ids work on the interface value itself.
type Value interface {
	valueKind()
}

type NoneValue struct{}

type Bool bool

type Int int64

type Float float64

type Str string

// None is the singleton null value.
var None = NoneValue{}

type List struct {
	Items []Value
}

type Tuple struct {
	Items []Value
}

// Dict preserves insertion order; only hashable (scalar) keys are allowed.
type Dict struct {
	keys  []Value
	vals  []Value
	index map[scalarKey]int
}

// Set preserves insertion order of its elements.
type Set struct {
	elems []Value
	index map[scalarKey]int
}

// Function is a guest-defined function.
type Function struct {
	Name   string
	Params []string
	Body   []lang.Stmt
	Line   int
}

// Builtin is a host-implemented function exposed to the guest.
type Builtin struct {
	Name string
	Fn   func(it *Interp, args []Value) (Value, error)
}

// BoundMethod pairs a receiver with a built-in method name; calling it
// dispatches through the method tables in methods.go.
type BoundMethod struct {
	Recv Value
	Name string
}

// Exc is an exception instance. Args mirrors Python's exception .args so the
// serializer can expose it as an inspectable attribute.
type Exc struct {
	TypeName string
	Message  string
	Args     *Tuple
}

func (NoneValue) valueKind()    {}
func (Bool) valueKind()         {}
func (Int) valueKind()          {}
func (Float) valueKind()        {}
func (Str) valueKind()          {}
func (*List) valueKind()        {}
func (*Tuple) valueKind()       {}
func (*Dict) valueKind()        {}
func (*Set) valueKind()         {}
func (*Function) valueKind()    {}
func (*Builtin) valueKind()     {}
func (*BoundMethod) valueKind() {}
func (*Exc) valueKind()         {}

// TypeName reports the guest-visible type name of a value.
func TypeName(v Value) string {
	switch t := v.(type) {
	case NoneValue:
		return "NoneType"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case *List:
		return "list"
	case *Tuple:
		return "tuple"
	case *Dict:
		return "dict"
	case *Set:
		return "set"
	case *Function:
		return "function"
	case *Builtin:
		return "builtin_function_or_method"
	case *BoundMethod:
		return "builtin_function_or_method"
	case *Exc:
		return t.TypeName
	default:
		return "object"
	}
}

// IsComposite reports whether a value is heap-tracked (mutable or
// identity-bearing) rather than inlined by the serializer.
func IsComposite(v Value) bool {
	switch v.(type) {
	case NoneValue, Bool, Int, Float, Str:
		return false
	}
	return true
}

// scalarKey is the hashable form of a dict key or set element.
type scalarKey struct {
	kind byte // 'n' none, 'b' bool, 'i' number, 's' string
	num  float64
	str  string
}

func hashKey(v Value) (scalarKey, bool) {
	switch t := v.(type) {
	case NoneValue:
		return scalarKey{kind: 'n'}, true
	case Bool:
		// matches Python: True == 1 as a key
		if t {
			return scalarKey{kind: 'i', num: 1}, true
		}
		return scalarKey{kind: 'i', num: 0}, true
	case Int:
		return scalarKey{kind: 'i', num: float64(t)}, true
	case Float:
		return scalarKey{kind: 'i', num: float64(t)}, true
	case Str:
		return scalarKey{kind: 's', str: string(t)}, true
	}
	return scalarKey{}, false
}

func NewDict() *Dict {
	return &Dict{index: map[scalarKey]int{}}
}

func (d *Dict) Len() int { return len(d.keys) }

// Keys returns key values in insertion order.
func (d *Dict) Keys() []Value { return d.keys }

// Values returns values in insertion order.
func (d *Dict) Values() []Value { return d.vals }

func (d *Dict) Get(key Value) (Value, bool) {
	k, ok := hashKey(key)
	if !ok {
		return nil, false
	}
	i, ok := d.index[k]
	if !ok {
		return nil, false
	}
	return d.vals[i], true
}

// Set inserts or replaces; returns false for unhashable keys.
func (d *Dict) Set(key, val Value) bool {
	k, ok := hashKey(key)
	if !ok {
		return false
	}
	if i, exists := d.index[k]; exists {
		d.vals[i] = val
		return true
	}
	d.index[k] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, val)
	return true
}

// Delete removes a key; reports whether it was present.
func (d *Dict) Delete(key Value) bool {
	k, ok := hashKey(key)
	if !ok {
		return false
	}
	i, exists := d.index[k]
	if !exists {
		return false
	}
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.vals = append(d.vals[:i], d.vals[i+1:]...)
	delete(d.index, k)
	for kk, idx := range d.index {
		if idx > i {
			d.index[kk] = idx - 1
		}
	}
	return true
}

func (d *Dict) Clear() {
	d.keys = nil
	d.vals = nil
	d.index = map[scalarKey]int{}
}

func NewSet() *Set {
	return &Set{index: map[scalarKey]int{}}
}

func (s *Set) Len() int { return len(s.elems) }

// Elems returns elements in insertion order.
func (s *Set) Elems() []Value { return s.elems }

func (s *Set) Has(v Value) bool {
	k, ok := hashKey(v)
	if !ok {
		return false
	}
	_, exists := s.index[k]
	return exists
}

func (s *Set) Add(v Value) bool {
	k, ok := hashKey(v)
	if !ok {
		return false
	}
	if _, exists := s.index[k]; exists {
		return true
	}
	s.index[k] = len(s.elems)
	s.elems = append(s.elems, v)
	return true
}

func (s *Set) Remove(v Value) bool {
	k, ok := hashKey(v)
	if !ok {
		return false
	}
	i, exists := s.index[k]
	if !exists {
		return false
	}
	s.elems = append(s.elems[:i], s.elems[i+1:]...)
	delete(s.index, k)
	for kk, idx := range s.index {
		if idx > i {
			s.index[kk] = idx - 1
		}
	}
	return true
}

func (s *Set) Clear() {
	s.elems = nil
	s.index = map[scalarKey]int{}
}

// Truthy implements guest boolean coercion.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case NoneValue:
		return false
	case Bool:
		return bool(t)
	case Int:
		return t != 0
	case Float:
		return t != 0
	case Str:
		return len(t) > 0
	case *List:
		return len(t.Items) > 0
	case *Tuple:
		return len(t.Items) > 0
	case *Dict:
		return t.Len() > 0
	case *Set:
		return t.Len() > 0
	}
	return true
}

// FormatFloat renders a float the way the guest language prints it,
// keeping a trailing ".0" on integral values.
func FormatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// QuoteString renders a string literal with single quotes, escaping control
// characters the way the guest language would.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// Repr renders a value the way the guest's repr() would, with a cycle guard
// so self-referential containers terminate.
func Repr(v Value) string {
	return reprWith(v, map[Value]bool{})
}

// StrOf renders a value the way print() shows it: strings are raw, all other
// values use their repr.
func StrOf(v Value) string {
	switch t := v.(type) {
	case Str:
		return string(t)
	case *Exc:
		return t.Message
	}
	return Repr(v)
}

func reprWith(v Value, seen map[Value]bool) string {
	switch t := v.(type) {
	case NoneValue:
		return "None"
	case Bool:
		if t {
			return "True"
		}
		return "False"
	case Int:
		return strconv.FormatInt(int64(t), 10)
	case Float:
		return FormatFloat(float64(t))
	case Str:
		return QuoteString(string(t))
	case *List:
		if seen[v] {
			return "[...]"
		}
		seen[v] = true
		defer delete(seen, v)
		return "[" + joinRepr(t.Items, seen) + "]"
	case *Tuple:
		if seen[v] {
			return "(...)"
		}
		seen[v] = true
		defer delete(seen, v)
		if len(t.Items) == 1 {
			return "(" + reprWith(t.Items[0], seen) + ",)"
		}
		return "(" + joinRepr(t.Items, seen) + ")"
	case *Dict:
		if seen[v] {
			return "{...}"
		}
		seen[v] = true
		defer delete(seen, v)
		parts := make([]string, 0, t.Len())
		for i, k := range t.keys {
			parts = append(parts, reprWith(k, seen)+": "+reprWith(t.vals[i], seen))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Set:
		if t.Len() == 0 {
			return "set()"
		}
		if seen[v] {
			return "{...}"
		}
		seen[v] = true
		defer delete(seen, v)
		return "{" + joinRepr(t.elems, seen) + "}"
	case *Function:
		return "<function " + t.Name + ">"
	case *Builtin:
		return "<built-in function " + t.Name + ">"
	case *BoundMethod:
		return "<built-in method " + t.Name + " of " + TypeName(t.Recv) + " object>"
	case *Exc:
		return t.TypeName + "(" + QuoteString(t.Message) + ")"
	default:
		return "<object>"
	}
}

func joinRepr(items []Value, seen map[Value]bool) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = reprWith(it, seen)
	}
	return strings.Join(parts, ", ")
}

// SortValues sorts in place using guest ordering; returns false when any
// pair of elements is unorderable.
func SortValues(items []Value) bool {
	ok := true
	sort.SliceStable(items, func(i, j int) bool {
		c, err := Compare(items[i], items[j])
		if err != nil {
			ok = false
			return false
		}
		return c < 0
	})
	return ok
}
