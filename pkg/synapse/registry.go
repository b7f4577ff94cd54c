package synapse

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

var groupNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OperationInfo describes one generated method
type OperationInfo struct {
	// Name is the generated method name, e.g. FetchReport_Tenant_Async
	Name string

	// Method is the HTTP verb
	Method string

	// Path is the URL template with placeholders, e.g. /reports/{id}
	Path string

	// Scope is the token scope, empty when the operation is unauthenticated
	Scope Scope

	// Response is how the response body is mapped
	Response ResponseKind
}

// Registration is the batch-registration record of one generated client
type Registration struct {
	Group      string
	Interface  string
	Client     string
	Operations []OperationInfo
}

// Registry collects generated clients by group
type Registry struct {
	mu     sync.RWMutex
	groups map[string][]Registration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string][]Registration)}
}

// DefaultRegistry receives the registrations made by generated init functions
var DefaultRegistry = NewRegistry()

// ValidGroupName reports whether name can be used as a registry group
func ValidGroupName(name string) bool {
	return groupNameRegex.MatchString(name)
}

// Register adds reg to its group. The group must be a valid identifier and
// an interface may only be registered once per group.
func (r *Registry) Register(reg Registration) error {
	if !ValidGroupName(reg.Group) {
		return fmt.Errorf("synapse: invalid group name %q", reg.Group)
	}
	if reg.Interface == "" {
		return fmt.Errorf("synapse: registration in group %q has no interface name", reg.Group)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.groups[reg.Group] {
		if existing.Interface == reg.Interface {
			return fmt.Errorf("synapse: %s already registered in group %q", reg.Interface, reg.Group)
		}
	}
	r.groups[reg.Group] = append(r.groups[reg.Group], reg)
	return nil
}

// MustRegister is Register that panics on error, for generated init functions
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Group returns the registrations of a group in registration order
func (r *Registry) Group(name string) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regs := r.groups[name]
	out := make([]Registration, len(regs))
	copy(out, regs)
	return out
}

// Groups returns all group names, sorted
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Operations flattens the operations of every client in a group
func (r *Registry) Operations(group string) []OperationInfo {
	var ops []OperationInfo
	for _, reg := range r.Group(group) {
		ops = append(ops, reg.Operations...)
	}
	return ops
}
