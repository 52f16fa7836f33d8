package trace

import (
	"sort"
	"strconv"

	"github.com/stepscope/backend/internal/guest/interp"
)

// Registry assigns stable reference ids to composite values for one run.
// Identity is the interface value itself (composites are pointers), so two
// names bound to the same list get the same id on every step of the run.
type Registry struct {
	ids  map[interp.Value]string
	next int
}

func NewRegistry() *Registry {
	return &Registry{ids: map[interp.Value]string{}}
}

// IDFor returns the value's reference id, minting one on first sight.
func (r *Registry) IDFor(v interp.Value) string {
	if id, ok := r.ids[v]; ok {
		return id
	}
	r.next++
	id := strconv.Itoa(r.next)
	r.ids[v] = id
	return id
}

// Serialize converts a value into a Descriptor, expanding composites into
// heap. An id already present in heap is referenced, never re-walked, which
// both dedups aliased values and terminates cyclic structures.
func Serialize(v interp.Value, heap map[string]HeapEntry, depth int, reg *Registry) Descriptor {
	if !interp.IsComposite(v) {
		return scalarDescriptor(v)
	}
	if depth >= MaxRefDepth {
		return Descriptor{Type: interp.TypeName(v), Preview: "...", Truncated: true}
	}

	id := reg.IDFor(v)
	desc := Descriptor{Type: interp.TypeName(v), Preview: Format(v), Ref: id}
	if _, seen := heap[id]; seen {
		return desc
	}
	// placeholder first so self-references resolve to the id
	heap[id] = HeapEntry{Type: desc.Type, Kind: "opaque", Preview: desc.Preview}
	heap[id] = expand(v, heap, depth, reg)
	return desc
}

func scalarDescriptor(v interp.Value) Descriptor {
	d := Descriptor{Type: interp.TypeName(v), Preview: Format(v)}
	switch t := v.(type) {
	case interp.Bool:
		n := 0.0
		if t {
			n = 1.0
		}
		d.Number = &n
	case interp.Int:
		n := float64(t)
		d.Number = &n
	case interp.Float:
		n := float64(t)
		d.Number = &n
	case interp.Str:
		l := len([]rune(string(t)))
		d.Length = &l
	}
	return d
}

func expand(v interp.Value, heap map[string]HeapEntry, depth int, reg *Registry) HeapEntry {
	e := HeapEntry{Type: interp.TypeName(v), Preview: Format(v)}
	switch t := v.(type) {
	case *interp.List:
		e.Kind = "sequence"
		e.Items, e.Truncated = serializeItems(t.Items, heap, depth, reg)
		e.Length = len(t.Items)
	case *interp.Tuple:
		e.Kind = "sequence"
		e.Items, e.Truncated = serializeItems(t.Items, heap, depth, reg)
		e.Length = len(t.Items)
	case *interp.Dict:
		e.Kind = "mapping"
		keys := t.Keys()
		vals := t.Values()
		e.Length = len(keys)
		for i := range keys {
			if i == PreviewWidth {
				e.Truncated = true
				break
			}
			e.Entries = append(e.Entries, KeyValue{
				Key:   Serialize(keys[i], heap, depth+1, reg),
				Value: Serialize(vals[i], heap, depth+1, reg),
			})
		}
	case *interp.Set:
		e.Kind = "set"
		elems := append([]interp.Value(nil), t.Elems()...)
		// deterministic order despite unordered storage
		sort.SliceStable(elems, func(i, j int) bool {
			return Format(elems[i]) < Format(elems[j])
		})
		e.Items, e.Truncated = serializeItems(elems, heap, depth, reg)
		e.Length = t.Len()
	case *interp.Exc:
		e.Kind = "object"
		if t.Args != nil {
			e.Length = 1
			e.Attributes = append(e.Attributes, Attribute{
				Name:  "args",
				Value: Serialize(t.Args, heap, depth+1, reg),
			})
		}
	default:
		e.Kind = "opaque"
	}
	return e
}

func serializeItems(items []interp.Value, heap map[string]HeapEntry, depth int, reg *Registry) ([]Descriptor, bool) {
	out := make([]Descriptor, 0, PreviewWidth)
	for i, it := range items {
		if i == PreviewWidth {
			return out, true
		}
		out = append(out, Serialize(it, heap, depth+1, reg))
	}
	return out, false
}
