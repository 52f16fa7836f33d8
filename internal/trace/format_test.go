package trace

import (
	"strings"
	"testing"

	"github.com/stepscope/backend/internal/guest/interp"
)

func TestFormatScalars(t *testing.T) {
	cases := []struct {
		v    interp.Value
		want string
	}{
		{interp.None, "None"},
		{interp.Bool(true), "True"},
		{interp.Int(-3), "-3"},
		{interp.Float(2.5), "2.5"},
		{interp.Float(3), "3.0"},
		{interp.Str("hi"), "'hi'"},
	}
	for _, tc := range cases {
		if got := Format(tc.v); got != tc.want {
			t.Errorf("Format(%#v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestFormatLongStringTruncated(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := Format(interp.Str(long))
	want := "'" + strings.Repeat("a", StringCut) + "...'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// at exactly the limit the string is untouched
	exact := strings.Repeat("b", MaxStringPreview)
	if got := Format(interp.Str(exact)); got != "'"+exact+"'" {
		t.Errorf("string at limit was modified: %q", got)
	}
}

func TestFormatPreviewWidth(t *testing.T) {
	items := make([]interp.Value, 10)
	for i := range items {
		items[i] = interp.Int(int64(i))
	}
	got := Format(&interp.List{Items: items})
	if got != "[0, 1, 2, 3, 4, 5, ...]" {
		t.Errorf("got %q", got)
	}
}

func TestFormatDepthBound(t *testing.T) {
	deep := interp.Value(interp.Int(1))
	for i := 0; i < 4; i++ {
		deep = &interp.List{Items: []interp.Value{deep}}
	}
	got := Format(deep)
	if got != "[[[...]]]" {
		t.Errorf("got %q", got)
	}
}

func TestFormatDictAndSet(t *testing.T) {
	d := interp.NewDict()
	d.Set(interp.Str("a"), interp.Int(1))
	if got := Format(d); got != "{'a': 1}" {
		t.Errorf("dict: %q", got)
	}
	s := interp.NewSet()
	if got := Format(s); got != "set()" {
		t.Errorf("empty set: %q", got)
	}
	s.Add(interp.Int(1))
	if got := Format(s); got != "{1}" {
		t.Errorf("set: %q", got)
	}
}

func TestFormatSingleElementTuple(t *testing.T) {
	tu := &interp.Tuple{Items: []interp.Value{interp.Int(1)}}
	if got := Format(tu); got != "(1,)" {
		t.Errorf("got %q", got)
	}
}
