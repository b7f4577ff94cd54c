package planner

import (
	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/pkg/synapse"
)

// inferRole picks the role of a parameter without a declared one:
// context.Context is the cancellation signal, a name used by the template
// is a path segment, anything else is plain.
func inferRole(param *models.ParameterDescriptor, placeholders map[string]bool) models.Role {
	if param.Role != "" {
		return param.Role
	}
	switch {
	case param.Kind == models.KindContext:
		return models.RoleCancellation
	case placeholders[param.Key()]:
		return models.RolePath
	}
	return models.RolePlain
}

// bindParameters resolves every parameter's role into a copy and sorts the
// copies into the plan's binding groups. The descriptor is left untouched.
func bindParameters(iface *models.InterfaceDescriptor, m *models.MethodDescriptor, tmpl *synapse.Template, plan *models.MethodPlan) error {
	placeholders := make(map[string]bool)
	for _, seg := range tmpl.Placeholders() {
		placeholders[seg.Name] = true
	}

	fail := func(rule errors.DefinitionRule, format string, args ...interface{}) *errors.DefinitionError {
		return errors.NewDefinitionErrorf(rule, iface.Name, m.Name, format, args...).
			WithLocation(errors.SourceLocation{File: iface.File, Line: lineOf(iface, m)})
	}

	bound := make(map[string]bool)
	for _, declared := range m.Params {
		param := *declared
		param.Role = inferRole(&param, placeholders)
		if param.Default != "" && (param.Kind != models.KindScalar || param.Nullable) {
			return fail(errors.RuleParameter, "-Default applies only to non-pointer scalar parameters, '%s' is %s", param.Name, param.Type)
		}

		switch param.Role {
		case models.RolePath:
			plan.Path = append(plan.Path, &param)
			bound[param.Key()] = true
		case models.RoleQuery, models.RolePlain:
			plan.Query = append(plan.Query, &param)
		case models.RoleArrayQuery:
			if param.Kind != models.KindSequence {
				return fail(errors.RuleArrayQuery, "arrayQuery parameter '%s' must be a slice or array, got %s", param.Name, param.Type)
			}
			plan.ArrayQuery = append(plan.ArrayQuery, &param)
		case models.RoleHeader:
			plan.Header = append(plan.Header, &param)
		case models.RoleBody:
			if plan.Body != nil {
				return fail(errors.RuleMultipleBody, "more than one body parameter: '%s' and '%s'", plan.Body.Name, param.Name).
					WithSuggestion("Send a single struct that wraps both values")
			}
			plan.Body = &param
		case models.RoleToken:
			if plan.Token != nil {
				return fail(errors.RuleMultipleToken, "more than one token parameter: '%s' and '%s'", plan.Token.Name, param.Name)
			}
			plan.Token = &param
		case models.RoleFilePath:
			if plan.File != nil {
				return fail(errors.RuleParameter, "more than one filePath parameter: '%s' and '%s'", plan.File.Name, param.Name)
			}
			if param.Type != "string" {
				return fail(errors.RuleParameter, "filePath parameter '%s' must be a string, got %s", param.Name, param.Type)
			}
			if param.BufferSize == 0 {
				param.BufferSize = synapse.DefaultBufferSize
			}
			plan.File = &param
		case models.RoleCancellation:
			if plan.Cancellation != nil {
				return fail(errors.RuleSignature, "more than one context parameter: '%s' and '%s'", plan.Cancellation.Name, param.Name)
			}
			if param.Kind != models.KindContext {
				return fail(errors.RuleParameter, "cancellation parameter '%s' must be a context.Context, got %s", param.Name, param.Type)
			}
			plan.Cancellation = &param
		}

		if param.Role != models.RoleToken {
			plan.Exposed = append(plan.Exposed, &param)
		}
	}

	for _, seg := range tmpl.Placeholders() {
		if !bound[seg.Name] {
			return fail(errors.RuleUnmatchedPlaceholder, "template placeholder {%s} has no matching path parameter", seg.Name).
				WithSuggestion("Add a parameter named " + seg.Name + " or rename the placeholder")
		}
	}
	return nil
}
