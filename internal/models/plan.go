package models

import "github.com/toyz/synapse/pkg/synapse"

// MethodPlan is one concrete emission unit. A descriptor yields one plan, or
// two when its token scope is either.
type MethodPlan struct {
	Name      string
	Method    *MethodDescriptor
	Interface *InterfaceDescriptor

	Template *synapse.Template
	Absolute bool

	// Scope and AcquireCall are empty when the method is unauthenticated
	Scope       TokenScope
	AcquireCall string

	Path         []*ParameterDescriptor
	Query        []*ParameterDescriptor
	ArrayQuery   []*ParameterDescriptor
	Header       []*ParameterDescriptor
	Body         *ParameterDescriptor
	File         *ParameterDescriptor
	Cancellation *ParameterDescriptor
	Token        *ParameterDescriptor

	// Exposed is the generated signature: the declared parameters minus the token
	Exposed []*ParameterDescriptor

	Response    ResponseKind
	ContentType string
}

// Diverges reports whether the generated signature differs from the
// declared one, in which case the client cannot satisfy the interface.
func (p *MethodPlan) Diverges() bool {
	return p.Name != p.Method.Name || len(p.Exposed) != len(p.Method.Params)
}

// ClientPlan is everything needed to emit one client
type ClientPlan struct {
	Interface *InterfaceDescriptor
	Methods   []*MethodPlan

	// Parents are concrete parent clients embedded in this one
	Parents []*ClientPlan

	// Token is the resolved token manager, including one inherited from a parent
	Token     TokenManager
	UsesToken bool

	// Register is set when the client has a valid group and at least one wrapped operation
	Register bool

	// Required lists every method the Go interface declares, including those
	// of abstract parents. Nil means the interface's own methods.
	Required []string

	// Opaque is set when the interface embeds something the planner could not
	// see into, so the method set is unknown.
	Opaque bool
}

// Name is the generated client struct name
func (c *ClientPlan) Name() string {
	return c.Interface.ClientName()
}

// Implements reports whether the client satisfies its interface, i.e. every
// declared method has a plan with an unchanged signature.
func (c *ClientPlan) Implements() bool {
	if c.Interface.Abstract || c.Opaque {
		return false
	}
	planned := make(map[string]bool)
	for _, p := range c.Methods {
		if p.Diverges() {
			return false
		}
		planned[p.Name] = true
	}
	for _, parent := range c.Parents {
		if !parent.Implements() {
			return false
		}
		for _, p := range parent.Methods {
			planned[p.Name] = true
		}
	}
	required := c.Required
	if required == nil {
		for _, m := range c.Interface.Methods {
			required = append(required, m.Name)
		}
	}
	for _, name := range required {
		if !planned[name] {
			return false
		}
	}
	return true
}

// Operations lists the registry entries of the client's own wrapped plans
func (c *ClientPlan) Operations() []*MethodPlan {
	var ops []*MethodPlan
	for _, p := range c.Methods {
		if !p.Method.IgnoreWrapper {
			ops = append(ops, p)
		}
	}
	return ops
}
