package models

import "time"

// InterfaceBuilder provides a fluent interface for building descriptors,
// used by the contract loader and tests.
type InterfaceBuilder struct {
	desc *InterfaceDescriptor
}

// NewInterfaceBuilder starts a descriptor for the named interface
func NewInterfaceBuilder(name string) *InterfaceBuilder {
	return &InterfaceBuilder{desc: &InterfaceDescriptor{Name: name}}
}

// WithBaseAddress sets the base address
func (b *InterfaceBuilder) WithBaseAddress(addr string) *InterfaceBuilder {
	b.desc.BaseAddress = addr
	return b
}

// WithTimeout sets the client timeout
func (b *InterfaceBuilder) WithTimeout(d time.Duration) *InterfaceBuilder {
	b.desc.Timeout = d
	return b
}

// WithContentType sets the default body content type
func (b *InterfaceBuilder) WithContentType(ct string) *InterfaceBuilder {
	b.desc.ContentType = ct
	return b
}

// WithGroup sets the registry group
func (b *InterfaceBuilder) WithGroup(group string) *InterfaceBuilder {
	b.desc.Group = group
	return b
}

// WithHeader adds a default header
func (b *InterfaceBuilder) WithHeader(key, value string) *InterfaceBuilder {
	b.desc.Headers = append(b.desc.Headers, KeyValue{Key: key, Value: value})
	return b
}

// WithQuery adds a default query entry
func (b *InterfaceBuilder) WithQuery(key, value string) *InterfaceBuilder {
	b.desc.Query = append(b.desc.Query, KeyValue{Key: key, Value: value})
	return b
}

// WithTokenManager sets an explicit token manager
func (b *InterfaceBuilder) WithTokenManager(tm TokenManager) *InterfaceBuilder {
	tm.Explicit = true
	b.desc.Token = tm
	return b
}

// Abstract marks the interface as abstract
func (b *InterfaceBuilder) Abstract() *InterfaceBuilder {
	b.desc.Abstract = true
	return b
}

// Inherits records parent interfaces
func (b *InterfaceBuilder) Inherits(parents ...string) *InterfaceBuilder {
	b.desc.Inherits = append(b.desc.Inherits, parents...)
	return b
}

// Method adds a method and returns a builder for it
func (b *InterfaceBuilder) Method(name, verb, template string) *MethodBuilder {
	m := &MethodDescriptor{Name: name, Verb: verb, Template: template, Return: ReturnSpec{Role: ReturnVoid}}
	b.desc.Methods = append(b.desc.Methods, m)
	return &MethodBuilder{parent: b, method: m}
}

// Build returns the descriptor
func (b *InterfaceBuilder) Build() *InterfaceDescriptor {
	return b.desc
}

// MethodBuilder configures one method of an InterfaceBuilder
type MethodBuilder struct {
	parent *InterfaceBuilder
	method *MethodDescriptor
}

// Returns sets the result type. An empty type means error-only.
func (b *MethodBuilder) Returns(typ string) *MethodBuilder {
	b.method.Return.Type = typ
	b.method.Return.Role = ReturnRoleFor(typ != "", b.hasContext())
	return b
}

// Param adds a parameter; opts adjust it after classification
func (b *MethodBuilder) Param(name, typ string, role Role, opts ...func(*ParameterDescriptor)) *MethodBuilder {
	p := &ParameterDescriptor{Name: name, Type: typ, Role: role}
	p.Classify()
	for _, opt := range opts {
		opt(p)
	}
	b.method.Params = append(b.method.Params, p)
	b.method.Return.Role = ReturnRoleFor(b.method.Return.Type != "", b.hasContext())
	return b
}

// Context adds a context.Context cancellation parameter
func (b *MethodBuilder) Context() *MethodBuilder {
	return b.Param("ctx", "context.Context", RoleCancellation)
}

// ContentType sets the method content type
func (b *MethodBuilder) ContentType(ct string) *MethodBuilder {
	b.method.ContentType = ct
	return b
}

// IgnoreWrapper excludes the method from registration
func (b *MethodBuilder) IgnoreWrapper() *MethodBuilder {
	b.method.IgnoreWrapper = true
	return b
}

// IgnoreImplementation skips emitting the method
func (b *MethodBuilder) IgnoreImplementation() *MethodBuilder {
	b.method.IgnoreImplementation = true
	return b
}

// Done returns to the interface builder
func (b *MethodBuilder) Done() *InterfaceBuilder {
	return b.parent
}

func (b *MethodBuilder) hasContext() bool {
	for _, p := range b.method.Params {
		if p.Kind == KindContext {
			return true
		}
	}
	return false
}

// ReturnRoleFor derives the return role from the result and context presence
func ReturnRoleFor(hasValue, async bool) ReturnRole {
	switch {
	case hasValue && async:
		return ReturnAsyncValue
	case hasValue:
		return ReturnValue
	case async:
		return ReturnAsyncVoid
	}
	return ReturnVoid
}

// Parameter options for MethodBuilder.Param

func Alias(a string) func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.Alias = a }
}

func Separator(s string) func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.Separator = s }
}

func Format(f string) func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.Format = f }
}

func Scope(s TokenScope) func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.Scope = s }
}

func Default(v string) func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.Default = v }
}

func Raw() func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.Raw = true }
}

func BodyContentType(ct string) func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.ContentType = ct }
}

func BufferSize(n int) func(*ParameterDescriptor) {
	return func(p *ParameterDescriptor) { p.BufferSize = n }
}
