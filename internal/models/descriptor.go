package models

import "time"

// KeyValue is one interface-level default header or query entry
type KeyValue struct {
	Key   string `yaml:"key" validate:"required"`
	Value string `yaml:"value"`
}

// TokenManager describes the provider a client acquires tokens from
type TokenManager struct {
	// Type is the Go type of the provider field, e.g. synapse.TokenProvider or *auth.Manager
	Type string `yaml:"type"`

	// TenantCall and UserCall are the acquisition method names on Type
	TenantCall string `yaml:"tenant_call" validate:"omitempty,goident"`
	UserCall   string `yaml:"user_call" validate:"omitempty,goident"`

	// Header and Scheme control how the token is sent
	Header string `yaml:"header"`
	Scheme string `yaml:"scheme"`

	// Explicit is set when the annotation named a token manager
	Explicit bool `yaml:"-"`
}

// Default token manager settings
const (
	DefaultTokenType   = "synapse.TokenProvider"
	DefaultTenantCall  = "TenantToken"
	DefaultUserCall    = "UserToken"
	DefaultTokenHeader = "Authorization"
	DefaultTokenScheme = "Bearer"
)

// WithDefaults returns a copy with empty fields set to the defaults
func (t TokenManager) WithDefaults() TokenManager {
	if t.Type == "" {
		t.Type = DefaultTokenType
	}
	if t.TenantCall == "" {
		t.TenantCall = DefaultTenantCall
	}
	if t.UserCall == "" {
		t.UserCall = DefaultUserCall
	}
	return t
}

// InterfaceDescriptor is one annotated interface or contract entry
type InterfaceDescriptor struct {
	Name    string `yaml:"name" validate:"required,goident"`
	Package string `yaml:"-"`
	File    string `yaml:"-"`
	Line    int    `yaml:"-"`

	Methods []*MethodDescriptor `yaml:"methods" validate:"dive"`

	Headers []KeyValue `yaml:"headers" validate:"dive"`
	Query   []KeyValue `yaml:"query" validate:"dive"`

	BaseAddress string        `yaml:"base_address" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
	ContentType string        `yaml:"content_type"`

	// Group is the registry group; validated separately so an invalid
	// group only drops the registration block.
	Group string `yaml:"group"`

	Token TokenManager `yaml:"token"`

	Abstract bool     `yaml:"abstract"`
	Inherits []string `yaml:"inherits"`
}

// ClientName is the generated struct name
func (d *InterfaceDescriptor) ClientName() string {
	return d.Name + "Client"
}

// MethodByName returns the method with the given name, or nil
func (d *InterfaceDescriptor) MethodByName(name string) *MethodDescriptor {
	for _, m := range d.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ReturnSpec is a method's result shape
type ReturnSpec struct {
	Role ReturnRole `yaml:"role" validate:"oneof=void value asyncValue asyncVoid"`
	Type string     `yaml:"type"` // inner type, empty for void roles
}

// MethodDescriptor is one remote-callable method
type MethodDescriptor struct {
	Name     string                 `yaml:"name" validate:"required,goident"`
	Verb     string                 `yaml:"verb" validate:"required,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	Template string                 `yaml:"path"`
	Return   ReturnSpec             `yaml:"returns"`
	Params   []*ParameterDescriptor `yaml:"params" validate:"dive"`

	ContentType          string `yaml:"content_type"`
	IgnoreImplementation bool   `yaml:"ignore_implementation"`
	IgnoreWrapper        bool   `yaml:"ignore_wrapper"`

	// Inherited is set on methods copied from an abstract parent
	Inherited string `yaml:"-"`

	Line int `yaml:"-"`
}

// Param returns the parameter with the given name, or nil
func (m *MethodDescriptor) Param(name string) *ParameterDescriptor {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ParameterDescriptor is one declared method parameter
type ParameterDescriptor struct {
	Name     string   `yaml:"name" validate:"required,goident"`
	Type     string   `yaml:"type" validate:"required"`
	Kind     TypeKind `yaml:"-"`
	Elem     string   `yaml:"-"`
	Nullable bool     `yaml:"-"`

	// Role is empty until inferred
	Role Role `yaml:"role" validate:"omitempty,oneof=path query arrayQuery header body token filePath cancellation plain"`

	Alias       string     `yaml:"alias"`
	Separator   string     `yaml:"separator"`
	Format      string     `yaml:"format"`
	ContentType string     `yaml:"content_type"`
	Raw         bool       `yaml:"raw"`
	BufferSize  int        `yaml:"buffer_size" validate:"gte=0"`
	Scope       TokenScope `yaml:"scope" validate:"omitempty,oneof=tenant user either"`
	Default     string     `yaml:"default"`

	// Variadic marks a trailing ...T parameter; Type then holds []T
	Variadic bool `yaml:"-"`
}

// Key returns the query or header key of the parameter
func (p *ParameterDescriptor) Key() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// Classify fills Kind, Elem and Nullable from Type
func (p *ParameterDescriptor) Classify() {
	info := ClassifyType(p.Type)
	p.Kind, p.Elem, p.Nullable = info.Kind, info.Elem, info.Nullable
}
