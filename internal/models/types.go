package models

import "strings"

// Role is the binding category of a method parameter
type Role string

const (
	RolePath         Role = "path"
	RoleQuery        Role = "query"
	RoleArrayQuery   Role = "arrayQuery"
	RoleHeader       Role = "header"
	RoleBody         Role = "body"
	RoleToken        Role = "token"
	RoleFilePath     Role = "filePath"
	RoleCancellation Role = "cancellation"
	RolePlain        Role = "plain"
)

// Roles lists every role in declaration order
var Roles = []Role{RolePath, RoleQuery, RoleArrayQuery, RoleHeader, RoleBody, RoleToken, RoleFilePath, RoleCancellation, RolePlain}

// ParseRole matches a role name case-insensitively
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// ReturnRole describes what a method hands back to its caller
type ReturnRole string

const (
	ReturnVoid       ReturnRole = "void"
	ReturnValue      ReturnRole = "value"
	ReturnAsyncValue ReturnRole = "asyncValue"
	ReturnAsyncVoid  ReturnRole = "asyncVoid"
)

// HasValue reports whether the role carries a result besides the error
func (r ReturnRole) HasValue() bool {
	return r == ReturnValue || r == ReturnAsyncValue
}

// IsAsync reports whether the method takes a caller context
func (r ReturnRole) IsAsync() bool {
	return r == ReturnAsyncValue || r == ReturnAsyncVoid
}

// TokenScope selects the acquisition call of a token parameter
type TokenScope string

const (
	ScopeNone   TokenScope = ""
	ScopeTenant TokenScope = "tenant"
	ScopeUser   TokenScope = "user"
	ScopeEither TokenScope = "either"
)

// ResponseKind is how a successful response is mapped
type ResponseKind string

const (
	ResponseNone  ResponseKind = "none"
	ResponseFile  ResponseKind = "file"
	ResponseBytes ResponseKind = "bytes"
	ResponseJSON  ResponseKind = "json"
)

// TypeKind is the coarse shape of a parameter or result type
type TypeKind int

const (
	KindScalar TypeKind = iota
	KindSequence
	KindBytes
	KindObject
	KindContext
	KindMap
)

func (k TypeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindBytes:
		return "bytes"
	case KindObject:
		return "object"
	case KindContext:
		return "context"
	case KindMap:
		return "map"
	}
	return "unknown"
}

var scalarTypes = map[string]bool{
	"string": true, "bool": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true,
	"time.Time": true, "time.Duration": true,
	"uuid.UUID": true, "json.Number": true,
}

// IsScalarType reports whether a Go type expression names a type that
// formats to a single query or header value.
func IsScalarType(expr string) bool {
	return scalarTypes[strings.TrimPrefix(expr, "*")]
}

// TypeInfo is the classification of a Go type expression
type TypeInfo struct {
	Kind     TypeKind
	Elem     string // element type for sequences
	Nullable bool
}

// ClassifyType classifies a Go type expression as written in source,
// e.g. "*User", "[]int", "[4]string", "context.Context", "[]byte".
func ClassifyType(expr string) TypeInfo {
	expr = strings.TrimSpace(expr)
	info := TypeInfo{}

	base := expr
	if strings.HasPrefix(base, "*") {
		info.Nullable = true
		base = strings.TrimPrefix(base, "*")
	}

	switch {
	case base == "context.Context":
		info.Kind = KindContext
		info.Nullable = true
	case base == "[]byte" || base == "[]uint8" || base == "json.RawMessage":
		info.Kind = KindBytes
		info.Nullable = true
	case strings.HasPrefix(base, "[]"):
		info.Kind = KindSequence
		info.Elem = base[2:]
		info.Nullable = true
	case strings.HasPrefix(base, "["):
		if end := strings.IndexByte(base, ']'); end > 0 {
			info.Kind = KindSequence
			info.Elem = base[end+1:]
		} else {
			info.Kind = KindObject
		}
	case strings.HasPrefix(base, "map["):
		info.Kind = KindMap
		info.Nullable = true
	case base == "any" || base == "interface{}" || base == "error":
		info.Kind = KindObject
		info.Nullable = true
	case IsScalarType(base):
		info.Kind = KindScalar
	default:
		info.Kind = KindObject
	}
	return info
}
