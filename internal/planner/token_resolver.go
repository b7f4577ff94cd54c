package planner

import (
	"strings"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
)

const asyncSuffix = "Async"

// ScopedName names the plan of one scope of a dual-scope method.
// FetchReportAsync becomes FetchReport_Tenant_Async; Fetch becomes Tenant_Fetch.
func ScopedName(name string, scope models.TokenScope) string {
	marker := "Tenant"
	if scope == models.ScopeUser {
		marker = "User"
	}
	if base, ok := strings.CutSuffix(name, asyncSuffix); ok && base != "" {
		return base + "_" + marker + "_" + asyncSuffix
	}
	return marker + "_" + name
}

// resolveTokens forks a bound plan by token scope. A method without a token
// parameter yields the plan unchanged; scope either yields a tenant and a
// user plan.
func resolveTokens(iface *models.InterfaceDescriptor, m *models.MethodDescriptor, tm models.TokenManager, plan *models.MethodPlan) ([]*models.MethodPlan, error) {
	if plan.Token == nil {
		return []*models.MethodPlan{plan}, nil
	}

	switch plan.Token.Scope {
	case models.ScopeUser:
		plan.Scope, plan.AcquireCall = models.ScopeUser, tm.UserCall
		return []*models.MethodPlan{plan}, nil

	case models.ScopeEither:
		if tm.TenantCall == tm.UserCall {
			return nil, errors.NewDefinitionErrorf(errors.RuleScope, iface.Name, m.Name,
				"scope either needs distinct tenant and user calls, both are '%s'", tm.TenantCall).
				WithLocation(errors.SourceLocation{File: iface.File, Line: lineOf(iface, m)}).
				WithSuggestion("Set -TenantCall and -UserCall on the client annotation")
		}
		tenant, user := *plan, *plan
		tenant.Name, tenant.Scope, tenant.AcquireCall = ScopedName(m.Name, models.ScopeTenant), models.ScopeTenant, tm.TenantCall
		user.Name, user.Scope, user.AcquireCall = ScopedName(m.Name, models.ScopeUser), models.ScopeUser, tm.UserCall
		return []*models.MethodPlan{&tenant, &user}, nil
	}

	// tenant, and any empty or unknown scope
	plan.Scope, plan.AcquireCall = models.ScopeTenant, tm.TenantCall
	return []*models.MethodPlan{plan}, nil
}
