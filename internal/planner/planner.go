// Package planner turns interface descriptors into client plans. It checks
// the contract rules, resolves parameter roles, forks dual-scope methods and
// applies interface inheritance. Descriptors are never modified.
package planner

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/pkg/synapse"
)

// Planner plans the clients of one package
type Planner struct {
	validate *validator.Validate
}

// Result is the outcome of planning a package
type Result struct {
	// Clients holds one plan per concrete interface, in declaration order
	Clients []*models.ClientPlan

	// Warnings are non-fatal findings such as unknown parents
	Warnings []string
}

// New creates a planner
func New() *Planner {
	return &Planner{validate: newValidator()}
}

// planRun is the state of one Plan call
type planRun struct {
	*Planner
	metadata *models.PackageMetadata
	problems *errors.MultipleErrors
	result   *Result

	rejected map[string]bool
	clients  map[string]*models.ClientPlan
	tokens   map[string]models.TokenManager
	visiting map[string]bool
}

// Plan plans every concrete interface in metadata. Definition errors drop
// the affected method, registry block or interface and are returned
// together as a *errors.MultipleErrors; the result is always non-nil.
func (p *Planner) Plan(metadata *models.PackageMetadata) (*Result, error) {
	run := &planRun{
		Planner:  p,
		metadata: metadata,
		problems: errors.NewMultipleErrors(),
		result:   &Result{},
		rejected: make(map[string]bool),
		clients:  make(map[string]*models.ClientPlan),
		tokens:   make(map[string]models.TokenManager),
		visiting: make(map[string]bool),
	}

	for _, iface := range metadata.Interfaces {
		if err := p.validateInterface(iface); err != nil {
			run.addProblem(err)
			run.rejected[iface.Name] = true
		}
	}

	for _, iface := range metadata.Interfaces {
		if iface.Abstract || run.rejected[iface.Name] {
			continue
		}
		if plan := run.planClient(iface); plan != nil {
			run.result.Clients = append(run.result.Clients, plan)
		}
	}

	return run.result, run.problems.ErrorOrNil()
}

func (r *planRun) planClient(iface *models.InterfaceDescriptor) *models.ClientPlan {
	if plan, ok := r.clients[iface.Name]; ok {
		return plan
	}
	if r.visiting[iface.Name] {
		r.addProblem(errors.NewDefinitionError(errors.RuleInheritance, iface.Name, "", "inheritance cycle").
			WithLocation(errors.SourceLocation{File: iface.File, Line: iface.Line}))
		return nil
	}
	r.visiting[iface.Name] = true
	defer delete(r.visiting, iface.Name)

	plan := &models.ClientPlan{Interface: iface, Token: r.resolveToken(iface)}

	for _, parentName := range iface.Inherits {
		parent := r.metadata.Interface(parentName)
		if parent == nil {
			r.warn("%s embeds %s, which is not a synapse client in this package; skipped", iface.Name, parentName)
			plan.Opaque = true
			continue
		}
		if r.rejected[parentName] {
			plan.Opaque = true
			continue
		}
		if parent.Abstract {
			continue
		}
		parentPlan := r.planClient(parent)
		if parentPlan == nil {
			plan.Opaque = true
			continue
		}
		if parentPlan.UsesToken && parentPlan.Token.Type != plan.Token.Type {
			r.addProblem(errors.NewDefinitionErrorf(errors.RuleInheritance, iface.Name, "",
				"embedded client %s needs token manager %s, %s uses %s",
				parent.Name, parentPlan.Token.Type, iface.Name, plan.Token.Type).
				WithLocation(errors.SourceLocation{File: iface.File, Line: iface.Line}))
			plan.Opaque = true
			continue
		}
		plan.Parents = append(plan.Parents, parentPlan)
		plan.UsesToken = plan.UsesToken || parentPlan.UsesToken
	}

	seen := make(map[string]bool)
	plan.Required = []string{}
	for _, m := range r.collectMethods(iface, map[string]bool{}) {
		plan.Required = append(plan.Required, m.Name)
		if err := r.validateMethod(iface, m); err != nil {
			r.addProblem(err)
			continue
		}
		if m.IgnoreImplementation {
			continue
		}

		plans, err := r.planMethod(iface, m, plan.Token)
		if err != nil {
			r.addProblem(err)
			continue
		}
		for _, mp := range plans {
			if seen[mp.Name] {
				r.addProblem(errors.NewDefinitionErrorf(errors.RuleSignature, iface.Name, m.Name,
					"generated method %s is already declared", mp.Name).
					WithLocation(errors.SourceLocation{File: iface.File, Line: lineOf(iface, m)}))
				continue
			}
			seen[mp.Name] = true
			plan.Methods = append(plan.Methods, mp)
			plan.UsesToken = plan.UsesToken || mp.Token != nil
		}
	}

	if iface.Group != "" {
		if r.validGroup(iface.Group) && synapse.ValidGroupName(iface.Group) {
			plan.Register = len(plan.Operations()) > 0
		} else {
			r.addProblem(errors.NewDefinitionErrorf(errors.RuleGroup, iface.Name, "",
				"group '%s' is not a valid identifier; registration skipped", iface.Group).
				WithLocation(errors.SourceLocation{File: iface.File, Line: iface.Line}))
		}
	}

	r.clients[iface.Name] = plan
	return plan
}

// collectMethods returns the interface's own methods followed by the
// methods of its abstract parents. An own method shadows an inherited one
// of the same name.
func (r *planRun) collectMethods(iface *models.InterfaceDescriptor, stack map[string]bool) []*models.MethodDescriptor {
	stack[iface.Name] = true
	defer delete(stack, iface.Name)

	methods := append([]*models.MethodDescriptor(nil), iface.Methods...)
	names := make(map[string]bool, len(methods))
	for _, m := range methods {
		names[m.Name] = true
	}

	for _, parentName := range iface.Inherits {
		parent := r.metadata.Interface(parentName)
		if parent == nil || !parent.Abstract || r.rejected[parentName] {
			continue
		}
		if stack[parentName] {
			r.addProblem(errors.NewDefinitionErrorf(errors.RuleInheritance, iface.Name, "",
				"inheritance cycle through %s", parentName).
				WithLocation(errors.SourceLocation{File: iface.File, Line: iface.Line}))
			continue
		}
		for _, m := range r.collectMethods(parent, stack) {
			if names[m.Name] {
				continue
			}
			names[m.Name] = true
			inherited := *m
			if inherited.Inherited == "" {
				inherited.Inherited = parent.Name
			}
			methods = append(methods, &inherited)
		}
	}
	return methods
}

// resolveToken fills the token manager field by field from the first parent
// that sets each field, then applies the defaults.
func (r *planRun) resolveToken(iface *models.InterfaceDescriptor) models.TokenManager {
	if tm, ok := r.tokens[iface.Name]; ok {
		return tm
	}
	tm := r.inheritedToken(iface, map[string]bool{}).WithDefaults()
	r.tokens[iface.Name] = tm
	return tm
}

func (r *planRun) inheritedToken(iface *models.InterfaceDescriptor, stack map[string]bool) models.TokenManager {
	tm := iface.Token
	stack[iface.Name] = true
	for _, parentName := range iface.Inherits {
		parent := r.metadata.Interface(parentName)
		if parent == nil || stack[parentName] {
			continue
		}
		pt := r.inheritedToken(parent, stack)
		if tm.Type == "" {
			tm.Type = pt.Type
		}
		if tm.TenantCall == "" {
			tm.TenantCall = pt.TenantCall
		}
		if tm.UserCall == "" {
			tm.UserCall = pt.UserCall
		}
		if tm.Header == "" {
			tm.Header = pt.Header
		}
		if tm.Scheme == "" {
			tm.Scheme = pt.Scheme
		}
		tm.Explicit = tm.Explicit || pt.Explicit
	}
	return tm
}

// planMethod builds the plans of one method
func (r *planRun) planMethod(iface *models.InterfaceDescriptor, m *models.MethodDescriptor, tm models.TokenManager) ([]*models.MethodPlan, error) {
	tmpl, err := synapse.ParseTemplate(m.Template)
	if err != nil {
		return nil, errors.NewDefinitionError(errors.RuleTemplate, iface.Name, m.Name, err.Error()).
			WithLocation(errors.SourceLocation{File: iface.File, Line: lineOf(iface, m)})
	}

	plan := &models.MethodPlan{
		Name:      m.Name,
		Method:    m,
		Interface: iface,
		Template:  tmpl,
		Absolute:  tmpl.IsAbsolute(),
	}
	if err := bindParameters(iface, m, tmpl, plan); err != nil {
		return nil, err
	}
	plan.Response = selectResponse(m, plan.File)
	plan.ContentType = resolveContentType(iface, m, plan.Body)

	return resolveTokens(iface, m, tm, plan)
}

func (r *planRun) addProblem(err error) {
	switch e := err.(type) {
	case *errors.MultipleErrors:
		r.problems.Merge(e)
	case errors.SynapseError:
		r.problems.Add(e)
	default:
		r.problems.Add(errors.Wrap(errors.DefinitionErrorCode, "planning failed", err))
	}
}

func (r *planRun) warn(format string, args ...interface{}) {
	r.result.Warnings = append(r.result.Warnings, fmt.Sprintf(format, args...))
}
