package trace

import (
	"strconv"
	"strings"

	"github.com/stepscope/backend/internal/guest/interp"
)

// Format renders a value as a short, depth-bounded string. It never fails:
// any panic while walking a value is replaced with a typed placeholder.
func Format(v interp.Value) (out string) {
	defer func() {
		if recover() != nil {
			out = "<" + interp.TypeName(v) + ">"
		}
	}()
	return formatDepth(v, 0)
}

func formatDepth(v interp.Value, depth int) string {
	if depth > maxFormatDepth {
		return "..."
	}
	switch t := v.(type) {
	case interp.NoneValue:
		return "None"
	case interp.Bool:
		if t {
			return "True"
		}
		return "False"
	case interp.Int:
		return strconv.FormatInt(int64(t), 10)
	case interp.Float:
		return interp.FormatFloat(float64(t))
	case interp.Str:
		return formatString(string(t))
	case *interp.List:
		return "[" + formatItems(t.Items, depth) + "]"
	case *interp.Tuple:
		if len(t.Items) == 1 {
			return "(" + formatDepth(t.Items[0], depth+1) + ",)"
		}
		return "(" + formatItems(t.Items, depth) + ")"
	case *interp.Dict:
		keys := t.Keys()
		vals := t.Values()
		parts := make([]string, 0, PreviewWidth+1)
		for i := range keys {
			if i == PreviewWidth {
				parts = append(parts, "...")
				break
			}
			parts = append(parts, formatDepth(keys[i], depth+1)+": "+formatDepth(vals[i], depth+1))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *interp.Set:
		if t.Len() == 0 {
			return "set()"
		}
		return "{" + formatItems(t.Elems(), depth) + "}"
	}
	return interp.Repr(v)
}

func formatItems(items []interp.Value, depth int) string {
	parts := make([]string, 0, PreviewWidth+1)
	for i, it := range items {
		if i == PreviewWidth {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, formatDepth(it, depth+1))
	}
	return strings.Join(parts, ", ")
}

// formatString quotes a string, cutting long ones to StringCut characters
// plus an ellipsis inside the quotes.
func formatString(s string) string {
	runes := []rune(s)
	if len(runes) > MaxStringPreview {
		return interp.QuoteString(string(runes[:StringCut]) + "...")
	}
	return interp.QuoteString(s)
}
