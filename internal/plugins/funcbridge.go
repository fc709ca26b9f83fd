package plugins

import (
	"encoding/json"
	"fmt"
	"html/template"

	pluginapi "git.home.luguber.info/inful/sitegen/pkg/plugin"
)

// FuncMap adapts plugin template functions for html/template. Template-side
// calls pass alternating name/value pairs, e.g.
//
//	{{ word_count "text" .Content }}
//
// which arrive at the plugin as a map. Values cross the boundary normalized
// to plain JSON-like shapes in both directions, so plugins never see
// template-internal types and templates never see plugin-defined ones.
func FuncMap(funcs map[string]pluginapi.TemplateFunc) template.FuncMap {
	out := make(template.FuncMap, len(funcs))
	for name, fn := range funcs {
		fn := fn
		funcName := name
		out[name] = func(pairs ...any) (any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("%s: arguments must be name/value pairs, got %d values", funcName, len(pairs))
			}
			args := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("%s: argument name %d is %T, want string", funcName, i/2, pairs[i])
				}
				args[key] = NormalizeValue(pairs[i+1])
			}

			var result any
			err := guard("template func "+funcName, func() error {
				var fnErr error
				result, fnErr = fn(args)
				return fnErr
			})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", funcName, err)
			}
			return NormalizeValue(result), nil
		}
	}
	return out
}

// NormalizeValue converts arbitrary values into the JSON-like subset
// (nil, bool, float64, string, []any, map[string]any). Values that do not
// fit the subset natively go through a JSON round trip; anything not
// marshalable falls back to its string rendering.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = NormalizeValue(item)
		}
		return out
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return out
}
