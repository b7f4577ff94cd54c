package planner

import (
	stderrors "errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
)

// newValidator returns a validator that knows the goident tag
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// validateInterface checks the interface-level fields. Methods are checked
// one at a time so a bad method only drops itself.
func (p *Planner) validateInterface(d *models.InterfaceDescriptor) error {
	shallow := *d
	shallow.Methods = nil
	return p.definitionErrors(p.validate.Struct(&shallow), d, nil)
}

func (p *Planner) validateMethod(d *models.InterfaceDescriptor, m *models.MethodDescriptor) error {
	return p.definitionErrors(p.validate.Struct(m), d, m)
}

// validGroup reports whether name can key a registry block
func (p *Planner) validGroup(name string) bool {
	return p.validate.Var(name, "goident") == nil
}

// definitionErrors maps validator output to DefinitionErrors
func (p *Planner) definitionErrors(err error, d *models.InterfaceDescriptor, m *models.MethodDescriptor) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	method := ""
	if m != nil {
		method = m.Name
	}
	multi := errors.NewMultipleErrors()
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		def := errors.NewDefinitionErrorf(ruleFor(fe), d.Name, method, "%s %s", field, describeFieldError(fe)).
			WithLocation(errors.SourceLocation{File: d.File, Line: lineOf(d, m)})
		multi.Add(def)
	}
	if multi.Count() == 1 {
		return multi.Errors[0]
	}
	return multi
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func ruleFor(fe validator.FieldError) errors.DefinitionRule {
	ns := fe.Namespace()
	switch {
	case fe.Field() == "Verb":
		return errors.RuleVerb
	case fe.Field() == "Scope":
		return errors.RuleScope
	case strings.Contains(ns, ".Params["):
		return errors.RuleParameter
	case fe.Field() == "BaseAddress":
		return errors.RuleTemplate
	}
	return errors.RuleSignature
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "goident":
		return fmt.Sprintf("'%v' is not a Go identifier", fe.Value())
	case "oneof":
		return fmt.Sprintf("'%v' must be one of: %s", fe.Value(), fe.Param())
	case "url":
		return fmt.Sprintf("'%v' must be an absolute URL", fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func lineOf(d *models.InterfaceDescriptor, m *models.MethodDescriptor) int {
	if m != nil && m.Line > 0 {
		return m.Line
	}
	return d.Line
}
