package results

import (
	"encoding/json"
	"strconv"
)

// YearKey renders a year the way metric maps key it.
func YearKey(year int) string {
	return strconv.Itoa(year)
}

// Lookup walks a decoded metric tree along path. The second return value is
// false when any segment is missing or an intermediate node is not a map; it
// never panics on malformed input.
func Lookup(node any, path ...string) (any, bool) {
	cur := node
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		next, present := m[key]
		if !present || next == nil {
			return nil, false
		}
		cur = next
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// LookupMap resolves path to a map node.
func LookupMap(node any, path ...string) (map[string]any, bool) {
	v, ok := Lookup(node, path...)
	if !ok {
		return nil, false
	}
	return asMap(v)
}

// LookupNumber resolves path to a numeric leaf.
func LookupNumber(node any, path ...string) (float64, bool) {
	v, ok := Lookup(node, path...)
	if !ok {
		return 0, false
	}
	return asNumber(v)
}

// Keys returns the keys of the map at path, unordered. Missing nodes yield nil.
func Keys(node any, path ...string) []string {
	m, ok := LookupMap(node, path...)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]float64:
		out := make(map[string]any, len(m))
		for k, n := range m {
			out[k] = n
		}
		return out, true
	case map[string]map[string]float64:
		out := make(map[string]any, len(m))
		for k, n := range m {
			out[k] = n
		}
		return out, true
	default:
		return nil, false
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
