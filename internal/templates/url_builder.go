package templates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/synapse/internal/models"
)

// PathExpression renders the Go expression that builds a method's request
// path: literal segments are quoted, placeholders are escaped values.
//
//	/users/{id}/orders/{n:04d} -> "/users/" + synapse.PathValue(id, "") + "/orders/" + synapse.PathValue(n, "04d")
func PathExpression(plan *models.MethodPlan) (string, error) {
	if plan.Template == nil || len(plan.Template.Segments) == 0 {
		return `""`, nil
	}

	byKey := make(map[string]*models.ParameterDescriptor, len(plan.Path))
	for _, p := range plan.Path {
		byKey[p.Key()] = p
	}

	parts := make([]string, 0, len(plan.Template.Segments))
	for _, seg := range plan.Template.Segments {
		if !seg.IsPlaceholder() {
			parts = append(parts, strconv.Quote(seg.Literal))
			continue
		}
		param, ok := byKey[seg.Name]
		if !ok {
			return "", fmt.Errorf("placeholder {%s} of %s has no path parameter", seg.Name, plan.Name)
		}
		format := seg.Format
		if format == "" {
			format = param.Format
		}
		parts = append(parts, fmt.Sprintf("synapse.PathValue(%s, %s)", param.Name, strconv.Quote(format)))
	}
	return strings.Join(parts, " + "), nil
}

// RoutePattern is the template as recorded in the registry, with formats dropped
func RoutePattern(plan *models.MethodPlan) string {
	if plan.Template == nil {
		return ""
	}
	return plan.Template.Route(func(name string) string { return "{" + name + "}" })
}
