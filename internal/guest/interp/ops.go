package interp

import (
	"math"
	"strings"
)

// Equal implements guest "==" semantics: numeric kinds compare by value,
// containers compare element-wise, everything else by identity.
func Equal(a, b Value) bool {
	if an, aok := numeric(a); aok {
		if bn, bok := numeric(b); bok {
			return an == bn
		}
		return false
	}
	switch at := a.(type) {
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case Str:
		bs, ok := b.(Str)
		return ok && at == bs
	case *List:
		bt, ok := b.(*List)
		return ok && itemsEqual(at.Items, bt.Items)
	case *Tuple:
		bt, ok := b.(*Tuple)
		return ok && itemsEqual(at.Items, bt.Items)
	case *Dict:
		bt, ok := b.(*Dict)
		if !ok || at.Len() != bt.Len() {
			return false
		}
		for i, k := range at.keys {
			bv, found := bt.Get(k)
			if !found || !Equal(at.vals[i], bv) {
				return false
			}
		}
		return true
	case *Set:
		bt, ok := b.(*Set)
		if !ok || at.Len() != bt.Len() {
			return false
		}
		for _, e := range at.elems {
			if !bt.Has(e) {
				return false
			}
		}
		return true
	}
	return a == b
}

func itemsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// numeric widens bools and ints to float64 for mixed arithmetic comparisons.
func numeric(v Value) (float64, bool) {
	switch t := v.(type) {
	case Bool:
		if t {
			return 1, true
		}
		return 0, true
	case Int:
		return float64(t), true
	case Float:
		return float64(t), true
	}
	return 0, false
}

// Compare returns -1/0/1 for orderable values and a TypeError otherwise.
func Compare(a, b Value) (int, error) {
	if an, aok := numeric(a); aok {
		if bn, bok := numeric(b); bok {
			switch {
			case an < bn:
				return -1, nil
			case an > bn:
				return 1, nil
			}
			return 0, nil
		}
	}
	if as, aok := a.(Str); aok {
		if bs, bok := b.(Str); bok {
			return strings.Compare(string(as), string(bs)), nil
		}
	}
	al, aok := sequenceItems(a)
	bl, bok := sequenceItems(b)
	if aok && bok && TypeName(a) == TypeName(b) {
		for i := 0; i < len(al) && i < len(bl); i++ {
			c, err := Compare(al[i], bl[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		switch {
		case len(al) < len(bl):
			return -1, nil
		case len(al) > len(bl):
			return 1, nil
		}
		return 0, nil
	}
	return 0, newError("TypeError", "'<' not supported between instances of '%s' and '%s'", TypeName(a), TypeName(b))
}

func sequenceItems(v Value) ([]Value, bool) {
	switch t := v.(type) {
	case *List:
		return t.Items, true
	case *Tuple:
		return t.Items, true
	}
	return nil, false
}

func binaryOp(op string, a, b Value) (Value, error) {
	switch op {
	case "+":
		return opAdd(a, b)
	case "-":
		return opSub(a, b)
	case "*":
		return opMul(a, b)
	case "/":
		return opDiv(a, b)
	case "//":
		return opFloorDiv(a, b)
	case "%":
		return opMod(a, b)
	case "**":
		return opPow(a, b)
	case "==":
		return Bool(Equal(a, b)), nil
	case "!=":
		return Bool(!Equal(a, b)), nil
	case "<", "<=", ">", ">=":
		c, err := Compare(a, b)
		if err != nil {
			return nil, err
		}
		switch op {
		case "<":
			return Bool(c < 0), nil
		case "<=":
			return Bool(c <= 0), nil
		case ">":
			return Bool(c > 0), nil
		default:
			return Bool(c >= 0), nil
		}
	case "in":
		ok, err := contains(b, a)
		if err != nil {
			return nil, err
		}
		return Bool(ok), nil
	case "not in":
		ok, err := contains(b, a)
		if err != nil {
			return nil, err
		}
		return Bool(!ok), nil
	}
	return nil, newError("TypeError", "unsupported operator %q", op)
}

func bothInts(a, b Value) (int64, int64, bool) {
	ai, aok := asInt(a)
	bi, bok := asInt(b)
	return ai, bi, aok && bok
}

// asInt treats bools as ints, matching guest arithmetic.
func asInt(v Value) (int64, bool) {
	switch t := v.(type) {
	case Int:
		return int64(t), true
	case Bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func typeErrorFor(op string, a, b Value) error {
	return newError("TypeError", "unsupported operand type(s) for %s: '%s' and '%s'", op, TypeName(a), TypeName(b))
}

func opAdd(a, b Value) (Value, error) {
	if ai, bi, ok := bothInts(a, b); ok {
		return Int(ai + bi), nil
	}
	if an, aok := numeric(a); aok {
		if bn, bok := numeric(b); bok {
			return Float(an + bn), nil
		}
	}
	if as, ok := a.(Str); ok {
		if bs, ok := b.(Str); ok {
			return as + bs, nil
		}
		return nil, newError("TypeError", "can only concatenate str (not \"%s\") to str", TypeName(b))
	}
	if al, ok := a.(*List); ok {
		if bl, ok := b.(*List); ok {
			items := make([]Value, 0, len(al.Items)+len(bl.Items))
			items = append(items, al.Items...)
			items = append(items, bl.Items...)
			return &List{Items: items}, nil
		}
	}
	if at, ok := a.(*Tuple); ok {
		if bt, ok := b.(*Tuple); ok {
			items := make([]Value, 0, len(at.Items)+len(bt.Items))
			items = append(items, at.Items...)
			items = append(items, bt.Items...)
			return &Tuple{Items: items}, nil
		}
	}
	return nil, typeErrorFor("+", a, b)
}

func opSub(a, b Value) (Value, error) {
	if ai, bi, ok := bothInts(a, b); ok {
		return Int(ai - bi), nil
	}
	if an, aok := numeric(a); aok {
		if bn, bok := numeric(b); bok {
			return Float(an - bn), nil
		}
	}
	return nil, typeErrorFor("-", a, b)
}

func opMul(a, b Value) (Value, error) {
	if ai, bi, ok := bothInts(a, b); ok {
		return Int(ai * bi), nil
	}
	if an, aok := numeric(a); aok {
		if bn, bok := numeric(b); bok {
			return Float(an * bn), nil
		}
	}
	// sequence repetition: normalize the int operand to the right
	if n, ok := asInt(a); ok {
		return repeatSeq(b, n)
	}
	if n, ok := asInt(b); ok {
		return repeatSeq(a, n)
	}
	return nil, typeErrorFor("*", a, b)
}

func repeatSeq(v Value, n int64) (Value, error) {
	if n < 0 {
		n = 0
	}
	const maxRepeat = 1 << 20
	switch t := v.(type) {
	case Str:
		if int64(len(t))*n > maxRepeat {
			return nil, newError("MemoryError", "repeated string is too large")
		}
		return Str(strings.Repeat(string(t), int(n))), nil
	case *List:
		if int64(len(t.Items))*n > maxRepeat {
			return nil, newError("MemoryError", "repeated list is too large")
		}
		items := make([]Value, 0, int64(len(t.Items))*n)
		for i := int64(0); i < n; i++ {
			items = append(items, t.Items...)
		}
		return &List{Items: items}, nil
	}
	return nil, typeErrorFor("*", v, Int(n))
}

func opDiv(a, b Value) (Value, error) {
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if !aok || !bok {
		return nil, typeErrorFor("/", a, b)
	}
	if bn == 0 {
		return nil, newError("ZeroDivisionError", "division by zero")
	}
	return Float(an / bn), nil
}

func opFloorDiv(a, b Value) (Value, error) {
	if ai, bi, ok := bothInts(a, b); ok {
		if bi == 0 {
			return nil, newError("ZeroDivisionError", "integer division or modulo by zero")
		}
		q := ai / bi
		if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
			q--
		}
		return Int(q), nil
	}
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if !aok || !bok {
		return nil, typeErrorFor("//", a, b)
	}
	if bn == 0 {
		return nil, newError("ZeroDivisionError", "float floor division by zero")
	}
	return Float(math.Floor(an / bn)), nil
}

func opMod(a, b Value) (Value, error) {
	if ai, bi, ok := bothInts(a, b); ok {
		if bi == 0 {
			return nil, newError("ZeroDivisionError", "integer division or modulo by zero")
		}
		r := ai % bi
		if r != 0 && ((r < 0) != (bi < 0)) {
			r += bi
		}
		return Int(r), nil
	}
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if !aok || !bok {
		return nil, typeErrorFor("%", a, b)
	}
	if bn == 0 {
		return nil, newError("ZeroDivisionError", "float modulo")
	}
	r := math.Mod(an, bn)
	if r != 0 && ((r < 0) != (bn < 0)) {
		r += bn
	}
	return Float(r), nil
}

func opPow(a, b Value) (Value, error) {
	if ai, bi, ok := bothInts(a, b); ok && bi >= 0 {
		result := int64(1)
		base := ai
		exp := bi
		for exp > 0 {
			if exp&1 == 1 {
				result *= base
			}
			base *= base
			exp >>= 1
		}
		return Int(result), nil
	}
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if !aok || !bok {
		return nil, typeErrorFor("**", a, b)
	}
	return Float(math.Pow(an, bn)), nil
}

func contains(container, item Value) (bool, error) {
	switch t := container.(type) {
	case Str:
		s, ok := item.(Str)
		if !ok {
			return false, newError("TypeError", "'in <string>' requires string as left operand, not %s", TypeName(item))
		}
		return strings.Contains(string(t), string(s)), nil
	case *List:
		for _, e := range t.Items {
			if Equal(e, item) {
				return true, nil
			}
		}
		return false, nil
	case *Tuple:
		for _, e := range t.Items {
			if Equal(e, item) {
				return true, nil
			}
		}
		return false, nil
	case *Dict:
		if _, ok := hashKey(item); !ok {
			return false, newError("TypeError", "unhashable type: '%s'", TypeName(item))
		}
		_, found := t.Get(item)
		return found, nil
	case *Set:
		if _, ok := hashKey(item); !ok {
			return false, newError("TypeError", "unhashable type: '%s'", TypeName(item))
		}
		return t.Has(item), nil
	}
	return false, newError("TypeError", "argument of type '%s' is not iterable", TypeName(container))
}

func unaryOp(op string, v Value) (Value, error) {
	switch op {
	case "not":
		return Bool(!Truthy(v)), nil
	case "-":
		switch t := v.(type) {
		case Int:
			return Int(-t), nil
		case Float:
			return Float(-t), nil
		case Bool:
			if t {
				return Int(-1), nil
			}
			return Int(0), nil
		}
		return nil, newError("TypeError", "bad operand type for unary -: '%s'", TypeName(v))
	case "+":
		switch v.(type) {
		case Int, Float, Bool:
			return v, nil
		}
		return nil, newError("TypeError", "bad operand type for unary +: '%s'", TypeName(v))
	}
	return nil, newError("TypeError", "unsupported unary operator %q", op)
}
