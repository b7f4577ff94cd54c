package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/synapse/internal/errors"
)

// bind checks a parsed line against its schema and converts option values.
// All problems on the line are reported together.
func bind(ast *annotationAST, schema AnnotationSchema, loc SourceLocation) (*ParsedAnnotation, error) {
	kind := schema.Type.Kind()
	collector := errors.NewAnnotationErrorCollector(0)
	parsed := &ParsedAnnotation{
		Type:       schema.Type,
		Parameters: make(map[string]interface{}),
		Location:   loc,
	}

	if len(ast.Args) > len(schema.Positional) {
		extra := ast.Args[len(schema.Positional)]
		collector.Add(errors.NewAnnotationSchemaError(
			fmt.Sprintf("unexpected argument '%s'", extra), loc, kind))
	}
	for i, name := range schema.Positional {
		if i >= len(ast.Args) {
			break
		}
		setParameter(parsed, collector, name, schema.Parameters[name], ast.Args[i], loc)
	}

	for _, flag := range ast.Flags {
		name, spec, ok := lookupOption(schema, strings.TrimPrefix(flag.Name, "-"))
		if !ok {
			collector.Add(errors.NewAnnotationSchemaError(
				fmt.Sprintf("unknown option '%s'", flag.Name), loc, kind).WithParameterName(flag.Name))
			continue
		}
		if parsed.HasParameter(name) {
			collector.Add(errors.NewAnnotationSchemaError(
				fmt.Sprintf("duplicate option '-%s'", name), loc, kind).WithParameterName(name))
			continue
		}

		value, err := ConvertValue(spec.Type, flag.Value)
		if err != nil {
			actual := "no value"
			if flag.Value != nil {
				actual = "'" + *flag.Value + "'"
			}
			verr := errors.NewAnnotationValidationError(name, spec.Type.String(), actual, loc, kind)
			verr.BaseError.WithCause(err)
			collector.Add(verr)
			continue
		}
		checkParameter(parsed, collector, name, spec, value, loc)
	}

	for i, name := range schema.Positional {
		spec := schema.Parameters[name]
		if parsed.HasParameter(name) {
			continue
		}
		if spec.Required && i >= len(ast.Args) {
			collector.Add(errors.NewAnnotationSchemaError(
				fmt.Sprintf("missing required argument '%s'", name), loc, kind).WithParameterName(name))
		}
	}

	if !collector.IsEmpty() {
		return nil, firstOrAll(collector)
	}

	applyDefaults(parsed, schema)

	for _, validate := range schema.Validators {
		if err := validate(parsed); err != nil {
			return nil, errors.NewAnnotationSchemaError(err.Error(), loc, kind)
		}
	}
	return parsed, nil
}

func setParameter(parsed *ParsedAnnotation, collector *errors.AnnotationErrorCollector, name string, spec ParameterSpec, raw string, loc SourceLocation) {
	value, err := ConvertValue(spec.Type, &raw)
	if err != nil {
		collector.Add(errors.NewAnnotationValidationError(name, spec.Type.String(), raw, loc, parsed.Type.Kind()))
		return
	}
	checkParameter(parsed, collector, name, spec, value, loc)
}

func checkParameter(parsed *ParsedAnnotation, collector *errors.AnnotationErrorCollector, name string, spec ParameterSpec, value interface{}, loc SourceLocation) {
	if spec.Validator != nil {
		if err := spec.Validator(value); err != nil {
			verr := errors.NewAnnotationValidationError(name, describe(spec), fmt.Sprintf("'%v'", value), loc, parsed.Type.Kind())
			verr.BaseError.WithCause(err)
			collector.Add(verr)
			return
		}
	}
	parsed.Parameters[name] = value
}

// lookupOption matches an option name, case-insensitively as a fallback
func lookupOption(schema AnnotationSchema, name string) (string, ParameterSpec, bool) {
	if spec, ok := schema.Parameters[name]; ok && !isPositional(schema, name) {
		return name, spec, true
	}
	for candidate, spec := range schema.Parameters {
		if strings.EqualFold(candidate, name) && !isPositional(schema, candidate) {
			return candidate, spec, true
		}
	}
	return "", ParameterSpec{}, false
}

func isPositional(schema AnnotationSchema, name string) bool {
	for _, p := range schema.Positional {
		if p == name {
			return true
		}
	}
	return false
}

func applyDefaults(parsed *ParsedAnnotation, schema AnnotationSchema) {
	for name, spec := range schema.Parameters {
		if spec.DefaultValue == nil || parsed.HasParameter(name) {
			continue
		}
		parsed.Parameters[name] = spec.DefaultValue
	}
}

func describe(spec ParameterSpec) string {
	if spec.Description != "" {
		return strings.ToLower(spec.Description[:1]) + spec.Description[1:]
	}
	return spec.Type.String()
}

func firstOrAll(collector *errors.AnnotationErrorCollector) error {
	if collector.Count() == 1 {
		return collector.Errors[0]
	}
	return collector.MultipleErrors
}
