package synapse

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"
)

// SpecFormatter is implemented by types that render themselves for a
// format specifier taken from a template placeholder or a -Format option.
type SpecFormatter interface {
	FormatSpec(spec string) string
}

// FormatValue converts v to its wire string. The second result is false
// when v is nil or a nil pointer, which callers treat as "omit".
//
// Format specifiers:
//   - SpecFormatter values receive the spec unchanged
//   - time.Time uses the spec as a layout (RFC 3339 when empty)
//   - a spec containing '%' is used as a fmt format
//   - any other non-empty spec is a fmt verb without the '%', e.g. "04d"
func FormatValue(v any, spec string) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		if _, ok := v.(SpecFormatter); !ok {
			if _, ok := v.(fmt.Stringer); !ok {
				return FormatValue(rv.Elem().Interface(), spec)
			}
		}
	}

	if f, ok := v.(SpecFormatter); ok && spec != "" {
		return f.FormatSpec(spec), true
	}

	if t, ok := v.(time.Time); ok {
		if spec == "" || strings.Contains(spec, "%") {
			return t.Format(time.RFC3339), true
		}
		return t.Format(spec), true
	}

	if spec != "" {
		if !strings.Contains(spec, "%") {
			spec = "%" + spec
		}
		return fmt.Sprintf(spec, v), true
	}

	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	return fmt.Sprint(v), true
}

// PathValue formats v for a path segment and escapes it
func PathValue(v any, spec string) string {
	s, _ := FormatValue(v, spec)
	return url.PathEscape(s)
}

// Or returns fallback when v is the zero value of its type. Generated
// methods use it for parameters declared with a -Default literal.
func Or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}
