package annotations

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/toyz/synapse/internal/errors"
)

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	ClientAnnotation AnnotationType = iota
	HTTPAnnotation
	ParamAnnotation
)

// String returns the annotation keyword
func (a AnnotationType) String() string {
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

// Kind maps the type onto the error package's annotation kind
func (a AnnotationType) Kind() errors.AnnotationKind {
	switch a {
	case ClientAnnotation:
		return errors.ClientAnnotation
	case HTTPAnnotation:
		return errors.HTTPAnnotation
	case ParamAnnotation:
		return errors.ParamAnnotation
	}
	return errors.UnknownAnnotation
}

// ParseAnnotationType converts an annotation keyword to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "client":
		return ClientAnnotation, nil
	case "http":
		return HTTPAnnotation, nil
	case "param":
		return ParamAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation is where an annotation was found
type SourceLocation = errors.SourceLocation

// KeyValue is one entry of a -Header or -Query list
type KeyValue struct {
	Key   string
	Value string
}

// ParsedAnnotation represents a fully parsed annotation with typed parameters.
// Positional arguments are stored under the names the schema gives them.
type ParsedAnnotation struct {
	Type       AnnotationType
	Parameters map[string]interface{}
	Location   SourceLocation
	Raw        string
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer parameter value with optional default
func (p *ParsedAnnotation) GetInt(paramName string, defaultValue ...int) int {
	if value, exists := p.Parameters[paramName]; exists {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetDuration returns a duration parameter value, or zero
func (p *ParsedAnnotation) GetDuration(paramName string) time.Duration {
	d, _ := p.Parameters[paramName].(time.Duration)
	return d
}

// GetKeyValues returns a key:value list parameter, or nil
func (p *ParsedAnnotation) GetKeyValues(paramName string) []KeyValue {
	kv, _ := p.Parameters[paramName].([]KeyValue)
	return kv
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	DurationType
	KeyValueType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case DurationType:
		return "duration"
	case KeyValueType:
		return "key:value list"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType
	Required     bool
	DefaultValue interface{}
	Description  string
	Validator    func(interface{}) error
}

// CustomValidator is run against the whole annotation after its parameters converted
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType
	Description string

	// Positional names the leading arguments in order; each must also
	// appear in Parameters.
	Positional []string

	Parameters map[string]ParameterSpec
	Validators []CustomValidator
	Examples   []string
}

// ConvertValue converts the raw text of an option to the parameter type.
// A nil raw value means the option was given as a bare flag.
func ConvertValue(paramType ParameterType, raw *string) (interface{}, error) {
	if raw == nil {
		if paramType == BoolType {
			return true, nil
		}
		return nil, fmt.Errorf("requires a value")
	}

	switch paramType {
	case StringType:
		return *raw, nil
	case BoolType:
		return parseBoolString(*raw)
	case IntType:
		n, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %s", *raw)
		}
		return n, nil
	case DurationType:
		return parseDuration(*raw)
	case KeyValueType:
		return ParseKeyValues(*raw)
	}
	return nil, fmt.Errorf("unknown parameter type %d", paramType)
}

// ParseKeyValues parses "K1:V1,K2:V2". Values may contain further colons.
func ParseKeyValues(s string) ([]KeyValue, error) {
	var out []KeyValue
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key:value, got '%s'", part)
		}
		out = append(out, KeyValue{Key: k, Value: strings.TrimSpace(v)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty key:value list")
	}
	return out, nil
}

func parseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s", s)
	}
}

// parseDuration accepts Go durations and bare integers as seconds
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration: %s", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration: %s", s)
	}
	return d, nil
}
