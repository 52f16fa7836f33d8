package interp

import "strings"

// method tables for the built-in container and string types; AttrExpr
// evaluation checks hasMethod and calls dispatch through callMethod.

var listMethods = map[string]bool{
	"append": true, "pop": true, "insert": true, "remove": true,
	"extend": true, "sort": true, "reverse": true, "clear": true,
	"index": true, "count": true, "copy": true,
}

var dictMethods = map[string]bool{
	"get": true, "keys": true, "values": true, "items": true,
	"pop": true, "clear": true, "update": true, "copy": true,
	"setdefault": true,
}

var setMethods = map[string]bool{
	"add": true, "remove": true, "discard": true, "clear": true,
	"union": true, "intersection": true, "difference": true, "copy": true,
}

var strMethods = map[string]bool{
	"upper": true, "lower": true, "strip": true, "lstrip": true,
	"rstrip": true, "split": true, "join": true, "replace": true,
	"startswith": true, "endswith": true, "find": true, "count": true,
	"index": true, "isdigit": true, "isalpha": true, "capitalize": true,
	"title": true,
}

func hasMethod(recv Value, name string) bool {
	switch recv.(type) {
	case *List:
		return listMethods[name]
	case *Dict:
		return dictMethods[name]
	case *Set:
		return setMethods[name]
	case Str:
		return strMethods[name]
	}
	return false
}

func callMethod(it *Interp, recv Value, name string, args []Value) (Value, error) {
	switch r := recv.(type) {
	case *List:
		return callListMethod(r, name, args)
	case *Dict:
		return callDictMethod(r, name, args)
	case *Set:
		return callSetMethod(r, name, args)
	case Str:
		return callStrMethod(r, name, args)
	}
	return nil, newError("AttributeError", "'%s' object has no attribute '%s'", TypeName(recv), name)
}

func methodArity(typ, name string, args []Value, min, max int) error {
	if len(args) < min || len(args) > max {
		return newError("TypeError", "%s.%s() takes from %d to %d arguments (%d given)", typ, name, min, max, len(args))
	}
	return nil
}

func exactArity(typ, name string, args []Value, n int) error {
	if len(args) != n {
		return newError("TypeError", "%s.%s() takes exactly %d argument(s) (%d given)", typ, name, n, len(args))
	}
	return nil
}

func callListMethod(l *List, name string, args []Value) (Value, error) {
	switch name {
	case "append":
		if err := exactArity("list", name, args, 1); err != nil {
			return nil, err
		}
		l.Items = append(l.Items, args[0])
		return None, nil
	case "pop":
		if err := methodArity("list", name, args, 0, 1); err != nil {
			return nil, err
		}
		if len(l.Items) == 0 {
			return nil, newError("IndexError", "pop from empty list")
		}
		i := len(l.Items) - 1
		if len(args) == 1 {
			n, ok := asInt(args[0])
			if !ok {
				return nil, newError("TypeError", "'%s' object cannot be interpreted as an integer", TypeName(args[0]))
			}
			i = int(n)
			if i < 0 {
				i += len(l.Items)
			}
			if i < 0 || i >= len(l.Items) {
				return nil, newError("IndexError", "pop index out of range")
			}
		}
		v := l.Items[i]
		l.Items = append(l.Items[:i], l.Items[i+1:]...)
		return v, nil
	case "insert":
		if err := exactArity("list", name, args, 2); err != nil {
			return nil, err
		}
		n, ok := asInt(args[0])
		if !ok {
			return nil, newError("TypeError", "'%s' object cannot be interpreted as an integer", TypeName(args[0]))
		}
		i := int(n)
		if i < 0 {
			i += len(l.Items)
			if i < 0 {
				i = 0
			}
		}
		if i > len(l.Items) {
			i = len(l.Items)
		}
		l.Items = append(l.Items, nil)
		copy(l.Items[i+1:], l.Items[i:])
		l.Items[i] = args[1]
		return None, nil
	case "remove":
		if err := exactArity("list", name, args, 1); err != nil {
			return nil, err
		}
		for i, e := range l.Items {
			if Equal(e, args[0]) {
				l.Items = append(l.Items[:i], l.Items[i+1:]...)
				return None, nil
			}
		}
		return nil, newError("ValueError", "list.remove(x): x not in list")
	case "extend":
		if err := exactArity("list", name, args, 1); err != nil {
			return nil, err
		}
		items, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, items...)
		return None, nil
	case "sort":
		if err := exactArity("list", name, args, 0); err != nil {
			return nil, err
		}
		if !SortValues(l.Items) {
			return nil, newError("TypeError", "'<' not supported between list elements")
		}
		return None, nil
	case "reverse":
		if err := exactArity("list", name, args, 0); err != nil {
			return nil, err
		}
		for i, j := 0, len(l.Items)-1; i < j; i, j = i+1, j-1 {
			l.Items[i], l.Items[j] = l.Items[j], l.Items[i]
		}
		return None, nil
	case "clear":
		if err := exactArity("list", name, args, 0); err != nil {
			return nil, err
		}
		l.Items = nil
		return None, nil
	case "index":
		if err := exactArity("list", name, args, 1); err != nil {
			return nil, err
		}
		for i, e := range l.Items {
			if Equal(e, args[0]) {
				return Int(i), nil
			}
		}
		return nil, newError("ValueError", "%s is not in list", Repr(args[0]))
	case "count":
		if err := exactArity("list", name, args, 1); err != nil {
			return nil, err
		}
		n := 0
		for _, e := range l.Items {
			if Equal(e, args[0]) {
				n++
			}
		}
		return Int(n), nil
	case "copy":
		if err := exactArity("list", name, args, 0); err != nil {
			return nil, err
		}
		items := make([]Value, len(l.Items))
		copy(items, l.Items)
		return &List{Items: items}, nil
	}
	return nil, newError("AttributeError", "'list' object has no attribute '%s'", name)
}

func callDictMethod(d *Dict, name string, args []Value) (Value, error) {
	switch name {
	case "get":
		if err := methodArity("dict", name, args, 1, 2); err != nil {
			return nil, err
		}
		if _, ok := hashKey(args[0]); !ok {
			return nil, newError("TypeError", "unhashable type: '%s'", TypeName(args[0]))
		}
		if v, found := d.Get(args[0]); found {
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return None, nil
	case "keys":
		if err := exactArity("dict", name, args, 0); err != nil {
			return nil, err
		}
		return &List{Items: append([]Value(nil), d.keys...)}, nil
	case "values":
		if err := exactArity("dict", name, args, 0); err != nil {
			return nil, err
		}
		return &List{Items: append([]Value(nil), d.vals...)}, nil
	case "items":
		if err := exactArity("dict", name, args, 0); err != nil {
			return nil, err
		}
		items := make([]Value, d.Len())
		for i, k := range d.keys {
			items[i] = &Tuple{Items: []Value{k, d.vals[i]}}
		}
		return &List{Items: items}, nil
	case "pop":
		if err := methodArity("dict", name, args, 1, 2); err != nil {
			return nil, err
		}
		if v, found := d.Get(args[0]); found {
			d.Delete(args[0])
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return nil, newError("KeyError", "%s", Repr(args[0]))
	case "clear":
		if err := exactArity("dict", name, args, 0); err != nil {
			return nil, err
		}
		d.Clear()
		return None, nil
	case "update":
		if err := exactArity("dict", name, args, 1); err != nil {
			return nil, err
		}
		src, ok := args[0].(*Dict)
		if !ok {
			return nil, newError("TypeError", "dict.update() argument must be a dict, not '%s'", TypeName(args[0]))
		}
		for i, k := range src.keys {
			d.Set(k, src.vals[i])
		}
		return None, nil
	case "copy":
		if err := exactArity("dict", name, args, 0); err != nil {
			return nil, err
		}
		cp := NewDict()
		for i, k := range d.keys {
			cp.Set(k, d.vals[i])
		}
		return cp, nil
	case "setdefault":
		if err := methodArity("dict", name, args, 1, 2); err != nil {
			return nil, err
		}
		if v, found := d.Get(args[0]); found {
			return v, nil
		}
		def := Value(None)
		if len(args) == 2 {
			def = args[1]
		}
		if !d.Set(args[0], def) {
			return nil, newError("TypeError", "unhashable type: '%s'", TypeName(args[0]))
		}
		return def, nil
	}
	return nil, newError("AttributeError", "'dict' object has no attribute '%s'", name)
}

func callSetMethod(s *Set, name string, args []Value) (Value, error) {
	switch name {
	case "add":
		if err := exactArity("set", name, args, 1); err != nil {
			return nil, err
		}
		if !s.Add(args[0]) {
			return nil, newError("TypeError", "unhashable type: '%s'", TypeName(args[0]))
		}
		return None, nil
	case "remove":
		if err := exactArity("set", name, args, 1); err != nil {
			return nil, err
		}
		if !s.Remove(args[0]) {
			return nil, newError("KeyError", "%s", Repr(args[0]))
		}
		return None, nil
	case "discard":
		if err := exactArity("set", name, args, 1); err != nil {
			return nil, err
		}
		s.Remove(args[0])
		return None, nil
	case "clear":
		if err := exactArity("set", name, args, 0); err != nil {
			return nil, err
		}
		s.Clear()
		return None, nil
	case "union", "intersection", "difference":
		if err := exactArity("set", name, args, 1); err != nil {
			return nil, err
		}
		other, ok := args[0].(*Set)
		if !ok {
			items, err := iterate(args[0])
			if err != nil {
				return nil, err
			}
			other = NewSet()
			for _, v := range items {
				if !other.Add(v) {
					return nil, newError("TypeError", "unhashable type: '%s'", TypeName(v))
				}
			}
		}
		out := NewSet()
		switch name {
		case "union":
			for _, e := range s.elems {
				out.Add(e)
			}
			for _, e := range other.elems {
				out.Add(e)
			}
		case "intersection":
			for _, e := range s.elems {
				if other.Has(e) {
					out.Add(e)
				}
			}
		case "difference":
			for _, e := range s.elems {
				if !other.Has(e) {
					out.Add(e)
				}
			}
		}
		return out, nil
	case "copy":
		if err := exactArity("set", name, args, 0); err != nil {
			return nil, err
		}
		cp := NewSet()
		for _, e := range s.elems {
			cp.Add(e)
		}
		return cp, nil
	}
	return nil, newError("AttributeError", "'set' object has no attribute '%s'", name)
}

func callStrMethod(s Str, name string, args []Value) (Value, error) {
	str := string(s)
	argStr := func(i int) (string, error) {
		v, ok := args[i].(Str)
		if !ok {
			return "", newError("TypeError", "str.%s() argument must be str, not '%s'", name, TypeName(args[i]))
		}
		return string(v), nil
	}
	switch name {
	case "upper":
		if err := exactArity("str", name, args, 0); err != nil {
			return nil, err
		}
		return Str(strings.ToUpper(str)), nil
	case "lower":
		if err := exactArity("str", name, args, 0); err != nil {
			return nil, err
		}
		return Str(strings.ToLower(str)), nil
	case "strip", "lstrip", "rstrip":
		if err := methodArity("str", name, args, 0, 1); err != nil {
			return nil, err
		}
		cutset := " \t\n\r\v\f"
		if len(args) == 1 {
			cs, err := argStr(0)
			if err != nil {
				return nil, err
			}
			cutset = cs
		}
		switch name {
		case "strip":
			return Str(strings.Trim(str, cutset)), nil
		case "lstrip":
			return Str(strings.TrimLeft(str, cutset)), nil
		default:
			return Str(strings.TrimRight(str, cutset)), nil
		}
	case "split":
		if err := methodArity("str", name, args, 0, 1); err != nil {
			return nil, err
		}
		var parts []string
		if len(args) == 0 {
			parts = strings.Fields(str)
		} else {
			sep, err := argStr(0)
			if err != nil {
				return nil, err
			}
			if sep == "" {
				return nil, newError("ValueError", "empty separator")
			}
			parts = strings.Split(str, sep)
		}
		items := make([]Value, len(parts))
		for i, p := range parts {
			items[i] = Str(p)
		}
		return &List{Items: items}, nil
	case "join":
		if err := exactArity("str", name, args, 1); err != nil {
			return nil, err
		}
		items, err := iterate(args[0])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(items))
		for i, v := range items {
			sv, ok := v.(Str)
			if !ok {
				return nil, newError("TypeError", "sequence item %d: expected str instance, %s found", i, TypeName(v))
			}
			parts[i] = string(sv)
		}
		return Str(strings.Join(parts, str)), nil
	case "replace":
		if err := exactArity("str", name, args, 2); err != nil {
			return nil, err
		}
		old, err := argStr(0)
		if err != nil {
			return nil, err
		}
		nw, err := argStr(1)
		if err != nil {
			return nil, err
		}
		return Str(strings.ReplaceAll(str, old, nw)), nil
	case "startswith":
		if err := exactArity("str", name, args, 1); err != nil {
			return nil, err
		}
		p, err := argStr(0)
		if err != nil {
			return nil, err
		}
		return Bool(strings.HasPrefix(str, p)), nil
	case "endswith":
		if err := exactArity("str", name, args, 1); err != nil {
			return nil, err
		}
		p, err := argStr(0)
		if err != nil {
			return nil, err
		}
		return Bool(strings.HasSuffix(str, p)), nil
	case "find":
		if err := exactArity("str", name, args, 1); err != nil {
			return nil, err
		}
		p, err := argStr(0)
		if err != nil {
			return nil, err
		}
		return Int(strings.Index(str, p)), nil
	case "index":
		if err := exactArity("str", name, args, 1); err != nil {
			return nil, err
		}
		p, err := argStr(0)
		if err != nil {
			return nil, err
		}
		i := strings.Index(str, p)
		if i < 0 {
			return nil, newError("ValueError", "substring not found")
		}
		return Int(i), nil
	case "count":
		if err := exactArity("str", name, args, 1); err != nil {
			return nil, err
		}
		p, err := argStr(0)
		if err != nil {
			return nil, err
		}
		if p == "" {
			return Int(len([]rune(str)) + 1), nil
		}
		return Int(strings.Count(str, p)), nil
	case "isdigit":
		if err := exactArity("str", name, args, 0); err != nil {
			return nil, err
		}
		if str == "" {
			return Bool(false), nil
		}
		for _, r := range str {
			if r < '0' || r > '9' {
				return Bool(false), nil
			}
		}
		return Bool(true), nil
	case "isalpha":
		if err := exactArity("str", name, args, 0); err != nil {
			return nil, err
		}
		if str == "" {
			return Bool(false), nil
		}
		for _, r := range str {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
				return Bool(false), nil
			}
		}
		return Bool(true), nil
	case "capitalize":
		if err := exactArity("str", name, args, 0); err != nil {
			return nil, err
		}
		if str == "" {
			return Str(""), nil
		}
		return Str(strings.ToUpper(str[:1]) + strings.ToLower(str[1:])), nil
	case "title":
		if err := exactArity("str", name, args, 0); err != nil {
			return nil, err
		}
		var b strings.Builder
		prevAlpha := false
		for _, r := range str {
			isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
			switch {
			case isAlpha && !prevAlpha:
				b.WriteString(strings.ToUpper(string(r)))
			case isAlpha:
				b.WriteString(strings.ToLower(string(r)))
			default:
				b.WriteRune(r)
			}
			prevAlpha = isAlpha
		}
		return Str(b.String()), nil
	}
	return nil, newError("AttributeError", "'str' object has no attribute '%s'", name)
}
