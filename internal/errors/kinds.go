package errors

import "fmt"

// SyntaxError is an annotation line that does not match the grammar
type SyntaxError struct {
	*BaseError
	Token    string // the token that caused the error
	Position int    // column within the annotation
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{BaseError: New(SyntaxErrorCode, message)}
}

// NewSyntaxErrorWithToken creates a syntax error pointing at a token
func NewSyntaxErrorWithToken(message, token string, position int) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
		Position:  position,
	}
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a fix suggestion
func (e *SyntaxError) WithSuggestion(suggestion string) *SyntaxError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// ValidationError is an annotation option with a value of the wrong shape
type ValidationError struct {
	*BaseError
	Field    string
	Expected string
	Actual   string
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	return &ValidationError{
		BaseError: Newf(ValidationErrorCode, "invalid value for '%s': expected %s, got %s", field, expected, actual),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a fix suggestion
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SchemaError is an annotation kind or option the schema registry does not know
type SchemaError struct {
	*BaseError
	SchemaName    string
	ParameterName string
}

// NewSchemaError creates a new schema error
func NewSchemaError(message string) *SchemaError {
	return &SchemaError{BaseError: New(SchemaErrorCode, message)}
}

// WithSchemaName sets the annotation kind
func (e *SchemaError) WithSchemaName(name string) *SchemaError {
	e.SchemaName = name
	return e
}

// WithParameterName sets the option that caused the error
func (e *SchemaError) WithParameterName(name string) *SchemaError {
	e.ParameterName = name
	return e
}

// WithLocation adds location information to the error
func (e *SchemaError) WithLocation(loc SourceLocation) *SchemaError {
	e.BaseError.WithLocation(loc)
	return e
}

// DefinitionRule names the contract rule a DefinitionError violates
type DefinitionRule string

const (
	RuleUnmatchedPlaceholder DefinitionRule = "unmatched-placeholder"
	RuleTemplate             DefinitionRule = "template"
	RuleMultipleBody         DefinitionRule = "multiple-body"
	RuleMultipleToken        DefinitionRule = "multiple-token"
	RuleArrayQuery           DefinitionRule = "array-query"
	RuleGroup                DefinitionRule = "group"
	RuleScope                DefinitionRule = "scope"
	RuleSignature            DefinitionRule = "signature"
	RuleVerb                 DefinitionRule = "verb"
	RuleInheritance          DefinitionRule = "inheritance"
	RuleParameter            DefinitionRule = "parameter"
)

// DefinitionError is a contract that cannot be planned. It is fatal to the
// affected method (or registry block) and never to the whole run.
type DefinitionError struct {
	*BaseError
	Interface string
	Method    string // empty for interface-level errors
	Rule      DefinitionRule
}

// NewDefinitionError creates a definition error for iface.method
func NewDefinitionError(rule DefinitionRule, iface, method, message string) *DefinitionError {
	subject := iface
	if method != "" {
		subject = iface + "." + method
	}
	return &DefinitionError{
		BaseError: Newf(DefinitionErrorCode, "%s: %s", subject, message).
			WithContext("rule", string(rule)),
		Interface: iface,
		Method:    method,
		Rule:      rule,
	}
}

// NewDefinitionErrorf creates a definition error with a formatted message
func NewDefinitionErrorf(rule DefinitionRule, iface, method, format string, args ...interface{}) *DefinitionError {
	return NewDefinitionError(rule, iface, method, fmt.Sprintf(format, args...))
}

// WithLocation adds location information to the error
func (e *DefinitionError) WithLocation(loc SourceLocation) *DefinitionError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a fix suggestion
func (e *DefinitionError) WithSuggestion(suggestion string) *DefinitionError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// GenerationError is a failure while rendering or writing generated code
type GenerationError struct {
	*BaseError
	TargetFile string
	Stage      string // render, format, write
}

// NewGenerationError creates a new generation error
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{BaseError: New(GenerationErrorCode, message)}
}

// WithTargetFile sets the file being generated
func (e *GenerationError) WithTargetFile(targetFile string) *GenerationError {
	e.TargetFile = targetFile
	return e
}

// WithStage sets the generation stage
func (e *GenerationError) WithStage(stage string) *GenerationError {
	e.Stage = stage
	return e
}
