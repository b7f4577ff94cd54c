package templates

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/toyz/synapse/internal/models"
)

// BindingLines renders the statements that build a method's request: the
// default substitutions, the request itself, then query, header, body and
// token bindings in that order.
func BindingLines(plan *models.MethodPlan) ([]string, error) {
	names := localNames(plan)
	var lines []string

	for _, p := range plan.Exposed {
		if p.Default == "" {
			continue
		}
		lit, err := DefaultLiteral(p)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s = synapse.Or(%s, %s)", p.Name, p.Name, lit))
	}

	path, err := PathExpression(plan)
	if err != nil {
		return nil, err
	}
	lines = append(lines, fmt.Sprintf("%s := synapse.NewRequest(%s, %s, %s)", names.request,
		strconv.Quote(plan.Name), strconv.Quote(plan.Method.Verb), path))

	for _, p := range plan.Query {
		lines = append(lines, queryBinding(names.request, p, false)...)
	}
	for _, p := range plan.ArrayQuery {
		lines = append(lines, queryBinding(names.request, p, true)...)
	}
	for _, p := range plan.Header {
		lines = append(lines, fmt.Sprintf("synapse.HeaderValue(%s, %s, %s, %s)", names.request,
			strconv.Quote(p.Key()), p.Name, strconv.Quote(p.Format)))
	}

	if b := plan.Body; b != nil {
		encode := "JSON"
		if b.Raw {
			encode = "Text"
		}
		lines = append(lines, fmt.Sprintf("%s.%s(%s, %s)", names.request, encode, b.Name, strconv.Quote(plan.ContentType)))
	}

	if plan.Token != nil {
		lines = append(lines, fmt.Sprintf("%s.Authorize(%s, %s.tokens.%s)", names.request, scopeExpr(plan.Scope), names.receiver, plan.AcquireCall))
	}
	return lines, nil
}

// queryBinding renders the query statements of one parameter. Pointer
// sequences and maps are skipped when nil.
func queryBinding(req string, p *models.ParameterDescriptor, repeated bool) []string {
	key := strconv.Quote(p.Key())
	format := strconv.Quote(p.Format)
	value := p.Name
	pointer := strings.HasPrefix(p.Type, "*")

	var stmt string
	switch p.Kind {
	case models.KindSequence:
		if pointer {
			value = "(*" + value + ")"
		}
		if isArrayType(strings.TrimPrefix(p.Type, "*")) {
			value += "[:]"
		}
		sep := "synapse.DefaultQuerySeparator"
		switch {
		case p.Separator != "":
			sep = strconv.Quote(p.Separator)
		case repeated:
			sep = `""`
		}
		stmt = fmt.Sprintf("synapse.QuerySeq(%s, %s, %s, %s, %s)", req, key, value, sep, format)
	case models.KindMap:
		if pointer {
			value = "(*" + value + ")"
		}
		stmt = fmt.Sprintf("synapse.QueryMap(%s, %s, %s)", req, value, format)
	case models.KindObject:
		return []string{fmt.Sprintf("synapse.QueryObject(%s, %s)", req, value)}
	default:
		return []string{fmt.Sprintf("synapse.QueryValue(%s, %s, %s, %s)", req, key, value, format)}
	}

	if !pointer {
		return []string{stmt}
	}
	return []string{
		fmt.Sprintf("if %s != nil {", p.Name),
		"\t" + stmt,
		"}",
	}
}

// locals are the identifiers a generated method declares besides its parameters
type locals struct {
	receiver string
	request  string
	err      string
}

// localNames picks receiver and local names that no parameter shadows
func localNames(plan *models.MethodPlan) locals {
	taken := make(map[string]bool, len(plan.Exposed))
	for _, p := range plan.Exposed {
		taken[p.Name] = true
	}
	pick := func(name string) string {
		for taken[name] {
			name += "_"
		}
		taken[name] = true
		return name
	}
	return locals{receiver: pick("c"), request: pick("req"), err: pick("err")}
}

func isArrayType(t string) bool {
	return strings.HasPrefix(t, "[") && !strings.HasPrefix(t, "[]")
}

// DefaultLiteral renders a parameter's -Default value as a Go expression of
// its type. Numbers and booleans are used verbatim, durations are parsed,
// and anything else is a string constant unless already quoted.
func DefaultLiteral(p *models.ParameterDescriptor) (string, error) {
	raw := strings.TrimSpace(p.Default)
	if raw == "" {
		return "", fmt.Errorf("parameter %s has no default", p.Name)
	}

	if p.Type == "time.Duration" {
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return "time.Duration(" + raw + ")", nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return "", fmt.Errorf("default %q of %s is not a duration: %w", raw, p.Name, err)
		}
		return DurationLiteral(d), nil
	}

	switch p.Type {
	case "bool":
		if _, err := strconv.ParseBool(raw); err != nil {
			return "", fmt.Errorf("default %q of %s is not a bool", raw, p.Name)
		}
		return raw, nil
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "byte", "rune":
		if _, err := strconv.ParseInt(raw, 0, 64); err != nil {
			if _, uerr := strconv.ParseUint(raw, 0, 64); uerr != nil {
				return "", fmt.Errorf("default %q of %s is not an integer", raw, p.Name)
			}
		}
		return raw, nil
	case "float32", "float64":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return "", fmt.Errorf("default %q of %s is not a number", raw, p.Name)
		}
		return raw, nil
	case "string":
		return quoteLiteral(raw), nil
	}

	// named types: untyped constants convert to the parameter's type
	if raw == "true" || raw == "false" {
		return raw, nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return raw, nil
	}
	return quoteLiteral(raw), nil
}

func quoteLiteral(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' && raw[len(raw)-1] == '"' || raw[0] == '`' && raw[len(raw)-1] == '`') {
		return raw
	}
	return strconv.Quote(raw)
}

// DurationLiteral renders d in the largest whole unit
func DurationLiteral(d time.Duration) string {
	units := []struct {
		size time.Duration
		name string
	}{
		{time.Hour, "time.Hour"},
		{time.Minute, "time.Minute"},
		{time.Second, "time.Second"},
		{time.Millisecond, "time.Millisecond"},
	}
	if d == 0 {
		return "0"
	}
	for _, u := range units {
		if d%u.size == 0 {
			return fmt.Sprintf("%d * %s", int64(d/u.size), u.name)
		}
	}
	return fmt.Sprintf("time.Duration(%d)", int64(d))
}

func scopeExpr(scope models.TokenScope) string {
	switch scope {
	case models.ScopeTenant:
		return "synapse.ScopeTenant"
	case models.ScopeUser:
		return "synapse.ScopeUser"
	case models.ScopeEither:
		return "synapse.ScopeEither"
	}
	return "synapse.ScopeNone"
}

func responseExpr(kind models.ResponseKind) string {
	switch kind {
	case models.ResponseFile:
		return "synapse.ResponseFile"
	case models.ResponseBytes:
		return "synapse.ResponseBytes"
	case models.ResponseJSON:
		return "synapse.ResponseJSON"
	}
	return "synapse.ResponseNone"
}
