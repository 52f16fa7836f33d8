package trace

import (
	"testing"

	"github.com/stepscope/backend/internal/guest/interp"
)

func TestSerializeScalarInline(t *testing.T) {
	heap := map[string]HeapEntry{}
	reg := NewRegistry()

	d := Serialize(interp.Int(7), heap, 0, reg)
	if d.Ref != "" || d.Number == nil || *d.Number != 7 {
		t.Errorf("int descriptor: %+v", d)
	}
	d = Serialize(interp.Bool(true), heap, 0, reg)
	if d.Number == nil || *d.Number != 1 {
		t.Errorf("bool should carry numeric 1: %+v", d)
	}
	d = Serialize(interp.Str("abc"), heap, 0, reg)
	if d.Length == nil || *d.Length != 3 {
		t.Errorf("string should carry length: %+v", d)
	}
	if len(heap) != 0 {
		t.Errorf("scalars must not touch the heap, got %d entries", len(heap))
	}
}

func TestSerializeDedupsAliases(t *testing.T) {
	heap := map[string]HeapEntry{}
	reg := NewRegistry()
	shared := &interp.List{Items: []interp.Value{interp.Int(1)}}

	d1 := Serialize(shared, heap, 0, reg)
	d2 := Serialize(shared, heap, 0, reg)
	if d1.Ref == "" || d1.Ref != d2.Ref {
		t.Fatalf("aliases got refs %q and %q", d1.Ref, d2.Ref)
	}
	if len(heap) != 1 {
		t.Errorf("heap has %d entries, want 1", len(heap))
	}
}

func TestSerializeCycle(t *testing.T) {
	heap := map[string]HeapEntry{}
	reg := NewRegistry()
	self := &interp.List{}
	self.Items = append(self.Items, self)

	d := Serialize(self, heap, 0, reg)
	entry, ok := heap[d.Ref]
	if !ok {
		t.Fatal("self-referential list missing from heap")
	}
	if len(entry.Items) != 1 || entry.Items[0].Ref != d.Ref {
		t.Errorf("self-reference should serialize as a ref to itself: %+v", entry.Items)
	}
}

func TestSerializeDepthBound(t *testing.T) {
	heap := map[string]HeapEntry{}
	reg := NewRegistry()
	deep := interp.Value(&interp.List{Items: []interp.Value{interp.Int(1)}})
	for i := 0; i < 5; i++ {
		deep = &interp.List{Items: []interp.Value{deep}}
	}

	Serialize(deep, heap, 0, reg)
	// walk down the entries; at MaxRefDepth the child must be a truncated
	// descriptor without a ref
	truncatedSeen := false
	for _, e := range heap {
		for _, item := range e.Items {
			if item.Truncated {
				truncatedSeen = true
				if item.Ref != "" {
					t.Errorf("truncated descriptor must not carry a ref: %+v", item)
				}
			}
		}
	}
	if !truncatedSeen {
		t.Error("no truncated descriptor under the depth bound")
	}
	if len(heap) != MaxRefDepth {
		t.Errorf("heap has %d entries, want %d", len(heap), MaxRefDepth)
	}
}

func TestSerializePreviewBound(t *testing.T) {
	heap := map[string]HeapEntry{}
	reg := NewRegistry()
	items := make([]interp.Value, 10)
	for i := range items {
		items[i] = interp.Int(int64(i))
	}

	d := Serialize(&interp.List{Items: items}, heap, 0, reg)
	entry := heap[d.Ref]
	if len(entry.Items) != PreviewWidth {
		t.Errorf("preview has %d items, want %d", len(entry.Items), PreviewWidth)
	}
	if !entry.Truncated {
		t.Error("entry should be marked truncated")
	}
	if entry.Length != 10 {
		t.Errorf("length = %d, want 10", entry.Length)
	}
}

func TestSerializeSetIsDeterministic(t *testing.T) {
	s := interp.NewSet()
	s.Add(interp.Int(3))
	s.Add(interp.Int(1))
	s.Add(interp.Int(2))

	heap := map[string]HeapEntry{}
	reg := NewRegistry()
	d := Serialize(s, heap, 0, reg)
	entry := heap[d.Ref]
	if entry.Kind != "set" {
		t.Fatalf("kind = %q", entry.Kind)
	}
	got := []string{}
	for _, item := range entry.Items {
		got = append(got, item.Preview)
	}
	want := []string{"1", "2", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("set items = %v, want %v", got, want)
			break
		}
	}
}

func TestSerializeMapping(t *testing.T) {
	d := interp.NewDict()
	d.Set(interp.Str("k"), interp.Int(1))

	heap := map[string]HeapEntry{}
	reg := NewRegistry()
	desc := Serialize(d, heap, 0, reg)
	entry := heap[desc.Ref]
	if entry.Kind != "mapping" || len(entry.Entries) != 1 {
		t.Fatalf("entry: %+v", entry)
	}
	kv := entry.Entries[0]
	if kv.Key.Preview != "'k'" || kv.Value.Preview != "1" {
		t.Errorf("kv: %+v", kv)
	}
}

func TestRegistryIDsAreStableAcrossSteps(t *testing.T) {
	reg := NewRegistry()
	v := &interp.List{}
	id1 := reg.IDFor(v)

	heap1 := map[string]HeapEntry{}
	heap2 := map[string]HeapEntry{}
	d1 := Serialize(v, heap1, 0, reg)
	d2 := Serialize(v, heap2, 0, reg)
	if d1.Ref != id1 || d2.Ref != id1 {
		t.Errorf("ids drifted: %q %q %q", id1, d1.Ref, d2.Ref)
	}
}

func TestSnapshotFiltersAndSorts(t *testing.T) {
	bindings := map[string]interp.Value{
		"__name__":     interp.Str("__main__"),
		"__builtins__": interp.Str("x"),
		"b":            interp.Int(2),
		"a":            interp.Int(1),
	}
	heap := map[string]HeapEntry{}
	out := Snapshot(bindings, heap, NewRegistry())
	if len(out) != 2 {
		t.Fatalf("snapshot has %d entries, want 2: %v", len(out), out)
	}
	if _, ok := out["__name__"]; ok {
		t.Error("dunder name leaked into snapshot")
	}
}

func TestSnapshotCapsEntries(t *testing.T) {
	bindings := map[string]interp.Value{}
	for i := 0; i < MaxScopeEntries+10; i++ {
		bindings[string(rune('a'+i%26))+string(rune('a'+i/26))] = interp.Int(int64(i))
	}
	heap := map[string]HeapEntry{}
	out := Snapshot(bindings, heap, NewRegistry())
	if len(out) != MaxScopeEntries {
		t.Errorf("snapshot has %d entries, want %d", len(out), MaxScopeEntries)
	}
}
