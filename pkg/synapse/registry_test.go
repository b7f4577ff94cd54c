package synapse

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidGroupName(t *testing.T) {
	valid := []string{"Billing", "_internal", "v2Clients", "a"}
	invalid := []string{"", "2fast", "billing-api", "has space", "dot.name"}

	for _, name := range valid {
		assert.True(t, ValidGroupName(name), name)
	}
	for _, name := range invalid {
		assert.False(t, ValidGroupName(name), name)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	users := Registration{
		Group:     "Core",
		Interface: "UserService",
		Client:    "UserServiceClient",
		Operations: []OperationInfo{
			{Name: "GetUser", Method: http.MethodGet, Path: "/users/{id}", Response: ResponseJSON},
		},
	}
	orders := Registration{
		Group:     "Core",
		Interface: "OrderService",
		Client:    "OrderServiceClient",
		Operations: []OperationInfo{
			{Name: "ListOrders", Method: http.MethodGet, Path: "/orders", Scope: ScopeTenant, Response: ResponseJSON},
			{Name: "DeleteOrder", Method: http.MethodDelete, Path: "/orders/{id}", Scope: ScopeTenant, Response: ResponseNone},
		},
	}
	require.NoError(t, r.Register(users))
	require.NoError(t, r.Register(orders))
	require.NoError(t, r.Register(Registration{Group: "Admin", Interface: "AuditService"}))

	assert.Equal(t, []string{"Admin", "Core"}, r.Groups())
	assert.Len(t, r.Group("Core"), 2)
	assert.Len(t, r.Operations("Core"), 3)
	assert.Empty(t, r.Group("Unknown"))

	t.Run("duplicate interface", func(t *testing.T) {
		assert.Error(t, r.Register(users))
	})

	t.Run("invalid group", func(t *testing.T) {
		assert.Error(t, r.Register(Registration{Group: "not-valid", Interface: "X"}))
	})

	t.Run("missing interface", func(t *testing.T) {
		assert.Error(t, r.Register(Registration{Group: "Core"}))
	})

	t.Run("group is a copy", func(t *testing.T) {
		regs := r.Group("Core")
		regs[0].Interface = "Mutated"
		assert.Equal(t, "UserService", r.Group("Core")[0].Interface)
	})
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(Registration{Group: "1bad", Interface: "X"})
	})
}
