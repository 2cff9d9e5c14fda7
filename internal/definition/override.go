// internal/definition/override.go
// Package: definition
package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseParameters decodes the JSON object given on the command line to
// replace every subject's parameter sets. An empty string replaces them
// with a single empty set.
func ParseParameters(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := decodeJSON(s, &params); err != nil {
		return nil, fmt.Errorf("could not decode parameters JSON string %q: %w", s, err)
	}
	if params == nil {
		return nil, fmt.Errorf("could not decode parameters JSON string %q: not an object", s)
	}
	return normalize(params).(map[string]any), nil
}

// ParseAssertion decodes one assertion given on the command line, e.g.
// {"kind":"comparator","options":{"stat":"mean","value":10}}. A bare
// options object selects the default kind.
func ParseAssertion(s string) (AssertionDef, error) {
	var raw map[string]any
	if err := decodeJSON(s, &raw); err != nil || raw == nil {
		if err == nil {
			err = fmt.Errorf("not an object")
		}
		return AssertionDef{}, fmt.Errorf("could not decode assertion JSON string %q: %w", s, err)
	}
	raw = normalize(raw).(map[string]any)

	opts, ok := raw["options"].(map[string]any)
	if !ok {
		return AssertionDef{Options: raw}, nil
	}
	ad := AssertionDef{Options: opts}
	if kind, ok := raw["kind"].(string); ok {
		ad.Kind = kind
	}
	return ad, nil
}

func decodeJSON(s string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	return dec.Decode(v)
}

// normalize turns json.Number values into int64 when integral and
// float64 otherwise, matching what the YAML decoder produces.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	}
	return v
}
