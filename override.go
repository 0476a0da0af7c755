package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// applyOverride applies one KEY[.PATH]:VALUE override string to a key
// tree. Dotted keys descend into nested maps, creating them as needed.
// Values are decoded with JSON typing rules when possible (numbers,
// booleans, null, quoted strings, arrays) and fall back to plain strings
// otherwise.
func applyOverride(tree map[string]interface{}, override string) error {
	key, value, ok := strings.Cut(override, ":")
	if !ok || key == "" {
		return fmt.Errorf("invalid override %q (expected KEY:VALUE or KEY.PATH:VALUE)", override)
	}

	path := strings.Split(key, ".")
	current := tree
	for _, part := range path[:len(path)-1] {
		next, ok := current[part]
		if !ok {
			child := map[string]interface{}{}
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("invalid override %q: %s is not a nested map", override, part)
		}
		current = child
	}
	current[path[len(path)-1]] = parseOverrideValue(value)
	return nil
}

// parseOverrideValue interprets an override value as JSON when it parses
// as JSON, and as a literal string otherwise, so `retries:3` yields a
// number and `name:alpha` yields a string.
func parseOverrideValue(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// shallowMerge copies the top-level keys of src over dst, replacing any
// existing values wholesale.
func shallowMerge(dst, src map[string]interface{}) {
	for k, v := range src {
		dst[k] = v
	}
}
