package synapse

import (
	"fmt"
	"regexp"
	"strings"
)

var schemeRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// Segment is one piece of a URL template: either literal text or a placeholder
type Segment struct {
	Literal string
	Name    string
	Format  string
}

// IsPlaceholder reports whether the segment is a {name} or {name:format} placeholder
func (s Segment) IsPlaceholder() bool {
	return s.Name != ""
}

// Template is a parsed URL template such as /users/{id}/orders/{orderId:04d}
type Template struct {
	Raw      string
	Segments []Segment
}

// ParseTemplate splits a URL template into literal and placeholder segments.
// Placeholder names are matched case-sensitively; the optional :format suffix
// is kept verbatim.
func ParseTemplate(raw string) (*Template, error) {
	t := &Template{Raw: raw}
	rest := raw
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		closeIdx := strings.IndexByte(rest, '}')
		if open < 0 {
			if closeIdx >= 0 {
				return nil, fmt.Errorf("unmatched '}' in template %q", raw)
			}
			t.Segments = append(t.Segments, Segment{Literal: rest})
			break
		}
		if closeIdx >= 0 && closeIdx < open {
			return nil, fmt.Errorf("unmatched '}' in template %q", raw)
		}
		if open > 0 {
			t.Segments = append(t.Segments, Segment{Literal: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unclosed '{' in template %q", raw)
		}
		body := rest[open+1 : open+end]
		if strings.ContainsRune(body, '{') {
			return nil, fmt.Errorf("nested '{' in template %q", raw)
		}
		name, format, _ := strings.Cut(body, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty placeholder in template %q", raw)
		}
		t.Segments = append(t.Segments, Segment{Name: name, Format: format})
		rest = rest[open+end+1:]
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error
func MustParseTemplate(raw string) *Template {
	t, err := ParseTemplate(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Placeholders returns the placeholder segments in template order
func (t *Template) Placeholders() []Segment {
	var out []Segment
	for _, s := range t.Segments {
		if s.IsPlaceholder() {
			out = append(out, s)
		}
	}
	return out
}

// IsAbsolute reports whether the template starts with a URL scheme
func (t *Template) IsAbsolute() bool {
	return IsAbsoluteURL(t.Raw)
}

// IsAbsoluteURL reports whether raw starts with a URL scheme such as https://
func IsAbsoluteURL(raw string) bool {
	return schemeRegex.MatchString(raw)
}

// Expand interpolates values into the template. The template's own format
// specifier is applied to each value; a missing value is an error.
func (t *Template) Expand(values map[string]any) (string, error) {
	var b strings.Builder
	for _, s := range t.Segments {
		if !s.IsPlaceholder() {
			b.WriteString(s.Literal)
			continue
		}
		v, ok := values[s.Name]
		if !ok {
			return "", fmt.Errorf("no value for placeholder {%s}", s.Name)
		}
		b.WriteString(PathValue(v, s.Format))
	}
	return b.String(), nil
}

// Route renders the template with each placeholder replaced by render(name).
// Stub servers use it to translate templates into framework route syntax.
func (t *Template) Route(render func(name string) string) string {
	var b strings.Builder
	for _, s := range t.Segments {
		if s.IsPlaceholder() {
			b.WriteString(render(s.Name))
		} else {
			b.WriteString(s.Literal)
		}
	}
	return b.String()
}
