package planner

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
)

func pkg(ifaces ...*models.InterfaceDescriptor) *models.PackageMetadata {
	return &models.PackageMetadata{PackageName: "api", Interfaces: ifaces}
}

func planOne(t *testing.T, iface *models.InterfaceDescriptor) (*models.ClientPlan, error) {
	t.Helper()
	result, err := New().Plan(pkg(iface))
	require.NotNil(t, result)
	require.Len(t, result.Clients, 1)
	return result.Clients[0], err
}

func rulesOf(err error) []errors.DefinitionRule {
	var rules []errors.DefinitionRule
	var multi *errors.MultipleErrors
	if !stderrors.As(err, &multi) {
		return nil
	}
	for _, e := range multi.Errors {
		var def *errors.DefinitionError
		if stderrors.As(e, &def) {
			rules = append(rules, def.Rule)
		}
	}
	return rules
}

func TestPlan_PathQueryAndRoles(t *testing.T) {
	iface := models.NewInterfaceBuilder("Orders").
		Method("GetOrder", "GET", "/users/{userId}/orders/{orderId:04d}").
		Context().
		Param("userId", "int", "").
		Param("orderId", "int", "").
		Param("expand", "[]string", "").
		Param("ids", "[]int", models.RoleArrayQuery).
		Param("trace", "string", models.RoleHeader, models.Alias("X-Trace")).
		Returns("*Order").
		Done().
		Build()

	client, err := planOne(t, iface)
	require.NoError(t, err)
	require.Len(t, client.Methods, 1)

	plan := client.Methods[0]
	assert.Equal(t, "GetOrder", plan.Name)
	assert.False(t, plan.Absolute)
	assert.Len(t, plan.Path, 2)
	assert.Equal(t, "ctx", plan.Cancellation.Name)
	require.Len(t, plan.Query, 1)
	assert.Equal(t, "expand", plan.Query[0].Name)
	assert.Equal(t, models.RolePlain, plan.Query[0].Role)
	require.Len(t, plan.ArrayQuery, 1)
	assert.Equal(t, "X-Trace", plan.Header[0].Key())
	assert.Equal(t, models.ResponseJSON, plan.Response)
	assert.Empty(t, plan.Scope)
	assert.Len(t, plan.Exposed, 6)
	assert.False(t, plan.Diverges())
	assert.True(t, client.Implements())

	assert.Empty(t, iface.Methods[0].Param("userId").Role, "descriptor is not modified")
}

func TestPlan_DualScope(t *testing.T) {
	iface := models.NewInterfaceBuilder("Reports").
		Method("FetchReportAsync", "GET", "/reports/{id}").
		Context().
		Param("token", "string", models.RoleToken, models.Scope(models.ScopeEither)).
		Param("id", "string", "").
		Returns("*Report").
		Done().
		Method("Fetch", "GET", "/reports").
		Param("token", "string", models.RoleToken, models.Scope(models.ScopeEither)).
		Done().
		Build()

	client, err := planOne(t, iface)
	require.NoError(t, err)
	require.Len(t, client.Methods, 4)

	names := []string{}
	for _, p := range client.Methods {
		names = append(names, p.Name)
		for _, exposed := range p.Exposed {
			assert.NotEqual(t, models.RoleToken, exposed.Role, p.Name)
		}
	}
	assert.Equal(t, []string{"FetchReport_Tenant_Async", "FetchReport_User_Async", "Tenant_Fetch", "User_Fetch"}, names)

	tenant, user := client.Methods[0], client.Methods[1]
	assert.Equal(t, models.ScopeTenant, tenant.Scope)
	assert.Equal(t, models.DefaultTenantCall, tenant.AcquireCall)
	assert.Equal(t, models.ScopeUser, user.Scope)
	assert.Equal(t, models.DefaultUserCall, user.AcquireCall)
	assert.Len(t, tenant.Exposed, 2)
	assert.True(t, client.UsesToken)
	assert.False(t, client.Implements(), "split methods diverge from the interface")
}

func TestPlan_SingleScopeFallsBackToTenant(t *testing.T) {
	iface := models.NewInterfaceBuilder("Me").
		WithTokenManager(models.TokenManager{Type: "*auth.Manager", TenantCall: "Service", UserCall: "Person"}).
		Method("Profile", "GET", "/me").
		Param("tok", "string", models.RoleToken, models.Scope(models.ScopeUser)).
		Done().
		Method("Status", "GET", "/status").
		Param("tok", "string", models.RoleToken).
		Done().
		Build()

	client, err := planOne(t, iface)
	require.NoError(t, err)
	assert.Equal(t, "Person", client.Methods[0].AcquireCall)
	assert.Equal(t, "Service", client.Methods[1].AcquireCall)
	assert.Equal(t, models.ScopeTenant, client.Methods[1].Scope)
	assert.Equal(t, "*auth.Manager", client.Token.Type)
}

func TestPlan_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name   string
		method func(b *models.InterfaceBuilder) *models.InterfaceBuilder
		rule   errors.DefinitionRule
	}{
		{
			name: "unmatched placeholder",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("Get", "GET", "/users/{id}").Param("userId", "int", models.RolePath).Done()
			},
			rule: errors.RuleUnmatchedPlaceholder,
		},
		{
			name: "multiple bodies",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("Create", "POST", "/users").
					Param("a", "User", models.RoleBody).Param("b", "User", models.RoleBody).Done()
			},
			rule: errors.RuleMultipleBody,
		},
		{
			name: "multiple tokens",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("Create", "POST", "/users").
					Param("a", "string", models.RoleToken).Param("b", "string", models.RoleToken).Done()
			},
			rule: errors.RuleMultipleToken,
		},
		{
			name: "scalar array query",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("List", "GET", "/users").Param("ids", "int", models.RoleArrayQuery).Done()
			},
			rule: errors.RuleArrayQuery,
		},
		{
			name: "unknown verb",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("Fetch", "FETCH", "/users").Done()
			},
			rule: errors.RuleVerb,
		},
		{
			name: "bad template",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("Get", "GET", "/users/{id").Param("id", "int", "").Done()
			},
			rule: errors.RuleTemplate,
		},
		{
			name: "either with one call",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.WithTokenManager(models.TokenManager{TenantCall: "Token", UserCall: "Token"}).
					Method("Get", "GET", "/x").
					Param("tok", "string", models.RoleToken, models.Scope(models.ScopeEither)).Done()
			},
			rule: errors.RuleScope,
		},
		{
			name: "bad scope value",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("Get", "GET", "/x").
					Param("tok", "string", models.RoleToken, models.Scope("global")).Done()
			},
			rule: errors.RuleScope,
		},
		{
			name: "file path must be a string",
			method: func(b *models.InterfaceBuilder) *models.InterfaceBuilder {
				return b.Method("Download", "GET", "/x").Param("dest", "int", models.RoleFilePath).Done()
			},
			rule: errors.RuleParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := models.NewInterfaceBuilder("Users")
			b = tt.method(b).Method("Ping", "GET", "/ping").Done()

			client, err := planOne(t, b.Build())
			require.Error(t, err)
			assert.Equal(t, []errors.DefinitionRule{tt.rule}, rulesOf(err))

			require.Len(t, client.Methods, 1, "the broken method is dropped, the rest survive")
			assert.Equal(t, "Ping", client.Methods[0].Name)
			assert.False(t, client.Implements())
		})
	}
}

func TestPlan_BindingErrorsCarryHints(t *testing.T) {
	iface := models.NewInterfaceBuilder("Users").
		Method("Get", "GET", "/users/{id}").Param("userId", "int", models.RolePath).Done().
		Method("Create", "POST", "/users").
		Param("a", "User", models.RoleBody).Param("b", "User", models.RoleBody).Done().
		Method("Ping", "GET", "/ping").Done().
		Build()

	_, err := planOne(t, iface)
	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	require.Len(t, multi.Errors, 2)

	hints := map[errors.DefinitionRule]string{}
	for _, e := range multi.Errors {
		var def *errors.DefinitionError
		require.True(t, stderrors.As(e, &def))
		require.Len(t, def.Suggestions(), 1)
		hints[def.Rule] = def.Suggestions()[0]
	}
	assert.Equal(t, "Add a parameter named id or rename the placeholder", hints[errors.RuleUnmatchedPlaceholder])
	assert.Equal(t, "Send a single struct that wraps both values", hints[errors.RuleMultipleBody])
}

func TestPlan_InvalidGroupDropsRegistrationOnly(t *testing.T) {
	iface := models.NewInterfaceBuilder("Users").
		WithGroup("user-api").
		Method("List", "GET", "/users").Done().
		Build()

	client, err := planOne(t, iface)
	assert.Equal(t, []errors.DefinitionRule{errors.RuleGroup}, rulesOf(err))
	assert.False(t, client.Register)
	assert.Len(t, client.Methods, 1)
	assert.True(t, client.Implements())
}

func TestPlan_Registration(t *testing.T) {
	wrapped := models.NewInterfaceBuilder("Users").
		WithGroup("Core").
		Method("List", "GET", "/users").Done().
		Build()
	client, err := planOne(t, wrapped)
	require.NoError(t, err)
	assert.True(t, client.Register)

	unwrapped := models.NewInterfaceBuilder("Users").
		WithGroup("Core").
		Method("List", "GET", "/users").IgnoreWrapper().Done().
		Build()
	client, err = planOne(t, unwrapped)
	require.NoError(t, err)
	assert.False(t, client.Register, "no wrapped operation left to register")
}

func TestPlan_IgnoreImplementation(t *testing.T) {
	iface := models.NewInterfaceBuilder("Users").
		Method("List", "GET", "/users").Done().
		Method("Custom", "GET", "/custom").IgnoreImplementation().Done().
		Build()

	client, err := planOne(t, iface)
	require.NoError(t, err)
	require.Len(t, client.Methods, 1)
	assert.False(t, client.Implements())
}

func TestPlan_Responses(t *testing.T) {
	iface := models.NewInterfaceBuilder("Files").
		Method("Download", "GET", "/files/{id}").
		Context().
		Param("id", "string", "").
		Param("dest", "string", models.RoleFilePath).
		Returns("*Meta").
		Done().
		Method("Raw", "GET", "/raw").Returns("[]byte").Done().
		Method("Delete", "DELETE", "/files").Done().
		Method("Meta", "GET", "/meta").Returns("json.RawMessage").Done().
		Build()

	client, err := planOne(t, iface)
	require.NoError(t, err)

	got := map[string]models.ResponseKind{}
	for _, p := range client.Methods {
		got[p.Name] = p.Response
	}
	assert.Equal(t, map[string]models.ResponseKind{
		"Download": models.ResponseFile,
		"Raw":      models.ResponseBytes,
		"Delete":   models.ResponseNone,
		"Meta":     models.ResponseJSON,
	}, got)

	download := client.Methods[0]
	assert.Equal(t, 81920, download.File.BufferSize)
}

func TestPlan_ContentTypePrecedence(t *testing.T) {
	iface := models.NewInterfaceBuilder("Docs").
		WithContentType("application/vnd.docs+json").
		Method("Put", "PUT", "/a").Param("doc", "Doc", models.RoleBody, models.BodyContentType("application/xml")).Done().
		Method("Patch", "PATCH", "/a").ContentType("application/merge-patch+json").Param("doc", "Doc", models.RoleBody).Done().
		Method("Post", "POST", "/a").Param("doc", "Doc", models.RoleBody).Done().
		Method("Get", "GET", "/a").Done().
		Build()

	client, err := planOne(t, iface)
	require.NoError(t, err)
	assert.Equal(t, "application/xml", client.Methods[0].ContentType)
	assert.Equal(t, "application/merge-patch+json", client.Methods[1].ContentType)
	assert.Equal(t, "application/vnd.docs+json", client.Methods[2].ContentType)
	assert.Empty(t, client.Methods[3].ContentType)
}

func TestPlan_Inheritance(t *testing.T) {
	base := models.NewInterfaceBuilder("Base").
		Abstract().
		WithTokenManager(models.TokenManager{Type: "*auth.Manager"}).
		Method("Health", "GET", "/health").Done().
		Method("List", "GET", "/base").Done().
		Build()
	accounts := models.NewInterfaceBuilder("Accounts").
		Method("Balance", "GET", "/balance").Param("tok", "string", models.RoleToken).Done().
		Build()
	billing := models.NewInterfaceBuilder("Billing").
		Inherits("Base", "Accounts", "auth.Scoped").
		Method("List", "GET", "/invoices").Done().
		Build()

	result, err := New().Plan(pkg(base, accounts, billing))
	assert.Equal(t, []errors.DefinitionRule{errors.RuleInheritance}, rulesOf(err), "token types differ, Accounts cannot be embedded")
	require.Len(t, result.Clients, 2, "abstract interfaces get no client")
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "auth.Scoped")

	accountsPlan, billingPlan := result.Clients[0], result.Clients[1]
	assert.Equal(t, "*auth.Manager", billingPlan.Token.Type, "token manager inherited from Base")
	assert.Equal(t, models.DefaultTokenType, accountsPlan.Token.Type)

	require.Len(t, billingPlan.Methods, 2)
	assert.Equal(t, "/invoices", billingPlan.Methods[0].Method.Template, "own method shadows the inherited one")
	assert.Equal(t, "Health", billingPlan.Methods[1].Name)
	assert.Equal(t, "Base", billingPlan.Methods[1].Method.Inherited)
	assert.Empty(t, base.Methods[0].Inherited)

	assert.True(t, billingPlan.Opaque)
	assert.False(t, billingPlan.Implements())
	assert.Empty(t, billingPlan.Parents)
}

func TestPlan_EmbedsConcreteParent(t *testing.T) {
	accounts := models.NewInterfaceBuilder("Accounts").
		Method("Balance", "GET", "/balance").Param("tok", "string", models.RoleToken).Done().
		Build()
	billing := models.NewInterfaceBuilder("Billing").
		Inherits("Accounts").
		Method("Invoices", "GET", "/invoices").Done().
		Build()

	result, err := New().Plan(pkg(billing, accounts))
	require.NoError(t, err)
	require.Len(t, result.Clients, 2)

	billingPlan := result.Clients[0]
	require.Len(t, billingPlan.Parents, 1)
	assert.Same(t, result.Clients[1], billingPlan.Parents[0])
	assert.True(t, billingPlan.UsesToken)
	assert.False(t, billingPlan.Implements(), "the embedded Balance drops its token parameter")
}

func TestPlan_RejectsInvalidInterface(t *testing.T) {
	bad := models.NewInterfaceBuilder("Bad").WithBaseAddress("not a url").Method("A", "GET", "/a").Done().Build()
	good := models.NewInterfaceBuilder("Good").Method("A", "GET", "/a").Done().Build()

	result, err := New().Plan(pkg(bad, good))
	require.Error(t, err)
	assert.Equal(t, []errors.DefinitionRule{errors.RuleTemplate}, rulesOf(err))
	require.Len(t, result.Clients, 1)
	assert.Equal(t, "Good", result.Clients[0].Interface.Name)
}

func TestScopedName(t *testing.T) {
	tests := []struct {
		name  string
		scope models.TokenScope
		want  string
	}{
		{"FetchReportAsync", models.ScopeTenant, "FetchReport_Tenant_Async"},
		{"FetchReportAsync", models.ScopeUser, "FetchReport_User_Async"},
		{"Fetch", models.ScopeTenant, "Tenant_Fetch"},
		{"Fetch", models.ScopeUser, "User_Fetch"},
		{"Async", models.ScopeUser, "User_Async"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopedName(tt.name, tt.scope))
		})
	}
}
