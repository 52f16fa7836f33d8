package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxRangeLen caps range() materialization; the step ceiling stops long
// loops anyway, this just guards allocation.
const maxRangeLen = 10_000_000

func builtinTable() map[string]Value {
	b := map[string]Value{}
	reg := func(name string, fn func(it *Interp, args []Value) (Value, error)) {
		b[name] = &Builtin{Name: name, Fn: fn}
	}

	reg("print", builtinPrint)
	reg("len", builtinLen)
	reg("range", builtinRange)
	reg("abs", builtinAbs)
	reg("min", builtinMin)
	reg("max", builtinMax)
	reg("sum", builtinSum)
	reg("sorted", builtinSorted)
	reg("reversed", builtinReversed)
	reg("enumerate", builtinEnumerate)
	reg("str", builtinStr)
	reg("repr", builtinRepr)
	reg("int", builtinInt)
	reg("float", builtinFloat)
	reg("bool", builtinBool)
	reg("list", builtinList)
	reg("tuple", builtinTuple)
	reg("dict", builtinDict)
	reg("set", builtinSet)
	reg("type", builtinType)
	reg("isinstance", builtinIsinstance)
	reg("round", builtinRound)

	for _, name := range []string{
		"Exception", "ValueError", "TypeError", "IndexError", "KeyError",
		"ZeroDivisionError", "NameError", "AttributeError", "RuntimeError",
		"StopIteration", "RecursionError", "MemoryError",
	} {
		b[name] = excConstructor(name)
	}
	return b
}

func excConstructor(typeName string) *Builtin {
	return &Builtin{Name: typeName, Fn: func(it *Interp, args []Value) (Value, error) {
		msg := ""
		if len(args) > 0 {
			msg = StrOf(args[0])
		}
		if len(args) > 1 {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = Repr(a)
			}
			msg = "(" + strings.Join(parts, ", ") + ")"
		}
		return &Exc{TypeName: typeName, Message: msg, Args: &Tuple{Items: append([]Value(nil), args...)}}, nil
	}}
}

func arityError(name string, want string, got int) error {
	return newError("TypeError", "%s() takes %s arguments (%d given)", name, want, got)
}

func builtinPrint(it *Interp, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = StrOf(a)
	}
	fmt.Fprintln(it.stdout, strings.Join(parts, " "))
	return None, nil
}

func builtinLen(it *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("len", "exactly one", len(args))
	}
	switch t := args[0].(type) {
	case Str:
		return Int(len([]rune(string(t)))), nil
	case *List:
		return Int(len(t.Items)), nil
	case *Tuple:
		return Int(len(t.Items)), nil
	case *Dict:
		return Int(t.Len()), nil
	case *Set:
		return Int(t.Len()), nil
	}
	return nil, newError("TypeError", "object of type '%s' has no len()", TypeName(args[0]))
}

func builtinRange(it *Interp, args []Value) (Value, error) {
	var start, stop, step int64
	step = 1
	switch len(args) {
	case 1:
		n, ok := asInt(args[0])
		if !ok {
			return nil, newError("TypeError", "'%s' object cannot be interpreted as an integer", TypeName(args[0]))
		}
		stop = n
	case 2, 3:
		vals := make([]int64, len(args))
		for i, a := range args {
			n, ok := asInt(a)
			if !ok {
				return nil, newError("TypeError", "'%s' object cannot be interpreted as an integer", TypeName(a))
			}
			vals[i] = n
		}
		start, stop = vals[0], vals[1]
		if len(args) == 3 {
			step = vals[2]
		}
	default:
		return nil, arityError("range", "1 to 3", len(args))
	}
	if step == 0 {
		return nil, newError("ValueError", "range() arg 3 must not be zero")
	}
	var count int64
	if step > 0 && stop > start {
		count = (stop - start + step - 1) / step
	} else if step < 0 && stop < start {
		count = (start - stop - step - 1) / -step
	}
	if count > maxRangeLen {
		return nil, newError("MemoryError", "range result is too large")
	}
	items := make([]Value, 0, count)
	for v := start; (step > 0 && v < stop) || (step < 0 && v > stop); v += step {
		items = append(items, Int(v))
	}
	return &List{Items: items}, nil
}

func builtinAbs(it *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("abs", "exactly one", len(args))
	}
	switch t := args[0].(type) {
	case Int:
		if t < 0 {
			return Int(-t), nil
		}
		return t, nil
	case Float:
		return Float(math.Abs(float64(t))), nil
	case Bool:
		if t {
			return Int(1), nil
		}
		return Int(0), nil
	}
	return nil, newError("TypeError", "bad operand type for abs(): '%s'", TypeName(args[0]))
}

func extremum(name string, args []Value, wantMax bool) (Value, error) {
	var items []Value
	if len(args) == 1 {
		it, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		items = it
	} else {
		items = args
	}
	if len(items) == 0 {
		return nil, newError("ValueError", "%s() arg is an empty sequence", name)
	}
	best := items[0]
	for _, v := range items[1:] {
		c, err := Compare(v, best)
		if err != nil {
			return nil, err
		}
		if (wantMax && c > 0) || (!wantMax && c < 0) {
			best = v
		}
	}
	return best, nil
}

func builtinMin(it *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, arityError("min", "at least one", 0)
	}
	return extremum("min", args, false)
}

func builtinMax(it *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, arityError("max", "at least one", 0)
	}
	return extremum("max", args, true)
}

func builtinSum(it *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("sum", "exactly one", len(args))
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	var acc Value = Int(0)
	for _, v := range items {
		acc, err = opAdd(acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func builtinSorted(it *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("sorted", "exactly one", len(args))
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	if !SortValues(items) {
		return nil, newError("TypeError", "'<' not supported between instances in sorted()")
	}
	return &List{Items: items}, nil
}

func builtinReversed(it *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("reversed", "exactly one", len(args))
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return &List{Items: out}, nil
}

func builtinEnumerate(it *Interp, args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, arityError("enumerate", "1 or 2", len(args))
	}
	start := int64(0)
	if len(args) == 2 {
		n, ok := asInt(args[1])
		if !ok {
			return nil, newError("TypeError", "'%s' object cannot be interpreted as an integer", TypeName(args[1]))
		}
		start = n
	}
	items, err := iterate(args[0])
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(items))
	for i, v := range items {
		out[i] = &Tuple{Items: []Value{Int(start + int64(i)), v}}
	}
	return &List{Items: out}, nil
}

func builtinStr(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return Str(""), nil
	case 1:
		return Str(StrOf(args[0])), nil
	}
	return nil, arityError("str", "at most one", len(args))
}

func builtinRepr(it *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("repr", "exactly one", len(args))
	}
	return Str(Repr(args[0])), nil
}

func builtinInt(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return Int(0), nil
	case 1:
		switch t := args[0].(type) {
		case Int:
			return t, nil
		case Bool:
			if t {
				return Int(1), nil
			}
			return Int(0), nil
		case Float:
			return Int(int64(math.Trunc(float64(t)))), nil
		case Str:
			s := strings.TrimSpace(string(t))
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, newError("ValueError", "invalid literal for int() with base 10: %s", QuoteString(string(t)))
			}
			return Int(n), nil
		}
		return nil, newError("TypeError", "int() argument must be a string or a number, not '%s'", TypeName(args[0]))
	}
	return nil, arityError("int", "at most one", len(args))
}

func builtinFloat(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return Float(0), nil
	case 1:
		if n, ok := numeric(args[0]); ok {
			return Float(n), nil
		}
		if s, ok := args[0].(Str); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
			if err != nil {
				return nil, newError("ValueError", "could not convert string to float: %s", QuoteString(string(s)))
			}
			return Float(f), nil
		}
		return nil, newError("TypeError", "float() argument must be a string or a number, not '%s'", TypeName(args[0]))
	}
	return nil, arityError("float", "at most one", len(args))
}

func builtinBool(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return Bool(false), nil
	case 1:
		return Bool(Truthy(args[0])), nil
	}
	return nil, arityError("bool", "at most one", len(args))
}

func builtinList(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return &List{}, nil
	case 1:
		items, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		return &List{Items: items}, nil
	}
	return nil, arityError("list", "at most one", len(args))
}

func builtinTuple(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return &Tuple{}, nil
	case 1:
		items, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		return &Tuple{Items: items}, nil
	}
	return nil, arityError("tuple", "at most one", len(args))
}

func builtinDict(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return NewDict(), nil
	case 1:
		src, ok := args[0].(*Dict)
		if !ok {
			return nil, newError("TypeError", "dict() argument must be a dict, not '%s'", TypeName(args[0]))
		}
		d := NewDict()
		for i, k := range src.keys {
			d.Set(k, src.vals[i])
		}
		return d, nil
	}
	return nil, arityError("dict", "at most one", len(args))
}

func builtinSet(it *Interp, args []Value) (Value, error) {
	switch len(args) {
	case 0:
		return NewSet(), nil
	case 1:
		items, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		s := NewSet()
		for _, v := range items {
			if !s.Add(v) {
				return nil, newError("TypeError", "unhashable type: '%s'", TypeName(v))
			}
		}
		return s, nil
	}
	return nil, arityError("set", "at most one", len(args))
}

func builtinType(it *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("type", "exactly one", len(args))
	}
	return Str("<class '" + TypeName(args[0]) + "'>"), nil
}

func builtinIsinstance(it *Interp, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, arityError("isinstance", "exactly two", len(args))
	}
	want, ok := args[1].(*Builtin)
	if !ok {
		return nil, newError("TypeError", "isinstance() arg 2 must be a type")
	}
	name := TypeName(args[0])
	if exc, isExc := args[0].(*Exc); isExc {
		match := exc.TypeName == want.Name || want.Name == "Exception"
		return Bool(match), nil
	}
	return Bool(name == want.Name), nil
}

func builtinRound(it *Interp, args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, arityError("round", "1 or 2", len(args))
	}
	n, ok := numeric(args[0])
	if !ok {
		return nil, newError("TypeError", "type %s doesn't define __round__ method", TypeName(args[0]))
	}
	if len(args) == 1 {
		// banker's rounding to match guest semantics
		r := math.RoundToEven(n)
		return Int(int64(r)), nil
	}
	digits, ok := asInt(args[1])
	if !ok {
		return nil, newError("TypeError", "'%s' object cannot be interpreted as an integer", TypeName(args[1]))
	}
	scale := math.Pow(10, float64(digits))
	return Float(math.RoundToEven(n*scale) / scale), nil
}
