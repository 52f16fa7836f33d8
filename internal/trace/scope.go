package trace

import (
	"sort"
	"strings"

	"github.com/stepscope/backend/internal/guest/interp"
)

// Snapshot serializes one binding mapping (the locals or globals of a frame)
// into name -> Descriptor, sharing the step's heap table. Internal names are
// dropped, output is capped, and a failure on one binding degrades to a
// placeholder instead of losing the step.
func Snapshot(bindings map[string]interp.Value, heap map[string]HeapEntry, reg *Registry) map[string]Descriptor {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		if hiddenName(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > MaxScopeEntries {
		names = names[:MaxScopeEntries]
	}

	out := make(map[string]Descriptor, len(names))
	for _, name := range names {
		out[name] = safeSerialize(bindings[name], heap, reg)
	}
	return out
}

func safeSerialize(v interp.Value, heap map[string]HeapEntry, reg *Registry) (d Descriptor) {
	defer func() {
		if recover() != nil {
			d = Descriptor{Type: interp.TypeName(v), Preview: "<unrenderable " + interp.TypeName(v) + ">"}
		}
	}()
	return Serialize(v, heap, 0, reg)
}

func hiddenName(name string) bool {
	if name == "__builtins__" {
		return true
	}
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}
