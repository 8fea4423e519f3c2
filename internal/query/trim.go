package query

import "fmt"

// Trim shortens every array in v to at most maxItems elements, replacing the
// rest with a single "... (N more items)" marker. v must be a value produced
// by json.Unmarshal into any or by a query over one. It reports whether any
// array was shortened. maxItems <= 0 returns v unchanged.
func Trim(v any, maxItems int) (any, bool) {
	if maxItems <= 0 {
		return v, false
	}
	return trim(v, maxItems)
}

func trim(v any, maxItems int) (any, bool) {
	switch val := v.(type) {
	case []any:
		n := len(val)
		if n > maxItems {
			n = maxItems
		}
		out := make([]any, n, n+1)
		trimmed := n < len(val)
		for i := range n {
			var t bool
			out[i], t = trim(val[i], maxItems)
			trimmed = trimmed || t
		}
		if n < len(val) {
			out = append(out, fmt.Sprintf("... (%d more items)", len(val)-n))
		}
		return out, trimmed
	case map[string]any:
		out := make(map[string]any, len(val))
		trimmed := false
		for k, item := range val {
			var t bool
			out[k], t = trim(item, maxItems)
			trimmed = trimmed || t
		}
		return out, trimmed
	default:
		return v, false
	}
}
