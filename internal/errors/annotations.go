package errors

import (
	"fmt"
	"strings"
)

// AnnotationKind identifies a synapse annotation
type AnnotationKind int

const (
	UnknownAnnotation AnnotationKind = iota
	ClientAnnotation
	HTTPAnnotation
	ParamAnnotation
)

// String returns the annotation keyword
func (a AnnotationKind) String() string {
	switch a {
	case ClientAnnotation:
		return "client"
	case HTTPAnnotation:
		return "http"
	case ParamAnnotation:
		return "param"
	default:
		return "unknown"
	}
}

// NewAnnotationSyntaxError creates a located syntax error with a fix suggestion
func NewAnnotationSyntaxError(message string, loc SourceLocation, kind AnnotationKind) *SyntaxError {
	err := NewSyntaxError(message).WithLocation(loc)
	err.BaseError.WithContext("annotation", kind.String())
	return err.WithSuggestion(syntaxSuggestion(message, kind))
}

// NewAnnotationValidationError creates a located validation error for an annotation option
func NewAnnotationValidationError(option, expected, actual string, loc SourceLocation, kind AnnotationKind) *ValidationError {
	err := NewValidationError(option, expected, actual).WithLocation(loc)
	err.BaseError.WithContext("annotation", kind.String())
	return err.WithSuggestion(validationSuggestion(option, expected, actual))
}

// NewAnnotationSchemaError creates a located schema error
func NewAnnotationSchemaError(message string, loc SourceLocation, kind AnnotationKind) *SchemaError {
	err := NewSchemaError(message).WithLocation(loc).WithSchemaName(kind.String())
	err.BaseError.WithSuggestion(schemaSuggestion(message, kind))
	return err
}

// AnnotationErrorCollector collects annotation errors up to a limit
type AnnotationErrorCollector struct {
	*MultipleErrors
	maxErrors int
}

// NewAnnotationErrorCollector creates a collector. maxErrors <= 0 means 100.
func NewAnnotationErrorCollector(maxErrors int) *AnnotationErrorCollector {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &AnnotationErrorCollector{MultipleErrors: NewMultipleErrors(), maxErrors: maxErrors}
}

// Add appends err unless the limit was reached
func (c *AnnotationErrorCollector) Add(err SynapseError) {
	if c.Count() >= c.maxErrors {
		return
	}
	c.MultipleErrors.Add(err)
}

// AnnotationErrorSummary counts collected errors by code
type AnnotationErrorSummary struct {
	Syntax     int
	Validation int
	Schema     int
	Other      int
}

// Summarize counts errs by code
func Summarize(errs []SynapseError) AnnotationErrorSummary {
	var s AnnotationErrorSummary
	for _, err := range errs {
		switch err.ErrorCode() {
		case SyntaxErrorCode:
			s.Syntax++
		case ValidationErrorCode:
			s.Validation++
		case SchemaErrorCode:
			s.Schema++
		default:
			s.Other++
		}
	}
	return s
}

// String returns a one-line summary
func (s AnnotationErrorSummary) String() string {
	total := s.Syntax + s.Validation + s.Schema + s.Other
	if total == 0 {
		return "No errors found"
	}

	var parts []string
	for _, p := range []struct {
		n    int
		name string
	}{{s.Syntax, "syntax"}, {s.Validation, "validation"}, {s.Schema, "schema"}, {s.Other, "other"}} {
		if p.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s error(s)", p.n, p.name))
		}
	}
	return fmt.Sprintf("Found %d total error(s): %s", total, strings.Join(parts, ", "))
}

func syntaxSuggestion(msg string, kind AnnotationKind) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "missing annotation"):
		return "Try: //synapse::client or //synapse::http GET /path"
	case strings.Contains(msg, "prefix"):
		return "Annotations must start with '//synapse::' (note the double colon)"
	case strings.Contains(msg, "unterminated") || strings.Contains(msg, "quote"):
		return "Close quoted values with a matching double quote"
	}

	switch kind {
	case HTTPAnnotation:
		return "Format: //synapse::http VERB /path/{name} [-ContentType=mime] [-IgnoreImplementation] [-IgnoreWrapper]"
	case ParamAnnotation:
		return "Format: //synapse::param name -Role=query|arrayQuery|path|header|body|token|filePath [-Alias=a] [-Separator=s]"
	case ClientAnnotation:
		return "Format: //synapse::client [-BaseAddress=url] [-Timeout=30s] [-Group=Name] [-Header=K:V]"
	}
	return "Options use '-Name=Value', or '-Name' for boolean flags"
}

func validationSuggestion(option, expected, actual string) string {
	switch option {
	case "verb":
		return "HTTP verb must be one of: GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS"
	case "Role":
		return "Role must be one of: path, query, arrayQuery, header, body, token, filePath, cancellation, plain"
	case "Scope":
		return "Scope must be tenant, user or either. Example: -Scope=either"
	case "Timeout":
		return "Timeout is a Go duration. Example: -Timeout=30s"
	case "BufferSize":
		return "BufferSize is a positive byte count. Example: -BufferSize=65536"
	case "Header", "Query":
		return fmt.Sprintf("%s takes comma-separated key:value pairs. Example: -%s=X-Api-Version:2", option, option)
	}
	return fmt.Sprintf("Option '%s' should be %s, not '%s'", option, expected, actual)
}

func schemaSuggestion(msg string, kind AnnotationKind) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "unknown annotation"):
		return "Supported annotations: client, http, param"
	case strings.Contains(msg, "unknown option"):
		switch kind {
		case ClientAnnotation:
			return "client supports: BaseAddress, Timeout, ContentType, Group, TokenManager, TenantCall, UserCall, TokenHeader, TokenScheme, Header, Query, Abstract"
		case HTTPAnnotation:
			return "http supports: ContentType, IgnoreImplementation, IgnoreWrapper"
		case ParamAnnotation:
			return "param supports: Role, Alias, Separator, Format, ContentType, Raw, BufferSize, Scope, Default"
		}
	}
	return ""
}
