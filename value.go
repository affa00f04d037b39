package lexicon

import (
	"fmt"
	"maps"
	"strings"
)

// M is a convenience alias for placeholder maps passed to Render.
type M map[string]any

// Value is a stored, renderable value. The resolver treats values as opaque
// apart from the presence check: IsEmpty values are stored but skipped
// during resolution, so an all-empty entry behaves as absent.
type Value interface {
	// Render produces the final string. Placeholder maps are merged left to
	// right; later maps win on duplicate names.
	Render(args ...M) string
	// IsEmpty reports whether the value renders to nothing.
	IsEmpty() bool
}

// Text returns a Value rendered verbatim, with no placeholder substitution.
func Text(s string) Value { return textValue(s) }

// Template returns a Value with %{name} placeholder substitution on Render.
// Placeholders without a matching argument are left unchanged.
func Template(s string) Value { return templateValue(s) }

type textValue string

func (v textValue) Render(_ ...M) string { return string(v) }
func (v textValue) IsEmpty() bool        { return v == "" }

type templateValue string

func (v templateValue) Render(args ...M) string {
	if len(args) == 0 {
		return string(v)
	}
	merged := make(M)
	for _, p := range args {
		maps.Copy(merged, p)
	}
	return ReplacePlaceholders(string(v), merged)
}

func (v templateValue) IsEmpty() bool { return v == "" }

// toValue converts a caller-supplied value into a Value at the storage
// boundary. Strings and fmt.Stringer implementations become templates,
// Value implementations pass through untouched, everything else is rejected.
func toValue(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return Template(val), nil
	case fmt.Stringer:
		return Template(val.String()), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// ReplacePlaceholders replaces placeholders in the template string with
// values from the provided map. Placeholders use the format %{name}.
// If a placeholder is not found in the map, it remains unchanged.
//
// Example:
//
//	template: "Hello, %{name}! You have %{count} messages."
//	placeholders: M{"name": "John", "count": 5}
//	returns: "Hello, John! You have 5 messages."
func ReplacePlaceholders(template string, placeholders M) string {
	if len(placeholders) < 1 {
		return template
	}

	result := template
	for key, value := range placeholders {
		placeholder := fmt.Sprintf("%%{%s}", key)
		replacement := fmt.Sprintf("%v", value)
		result = strings.ReplaceAll(result, placeholder, replacement)
	}

	return result
}
