package stub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/synapse/pkg/synapse"
	"github.com/toyz/synapse/pkg/synapse/stub"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type order struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
}

var orderOps = []synapse.OperationInfo{
	{Name: "GetOrder", Method: http.MethodGet, Path: "/users/{id}/orders/{orderId:04d}", Response: synapse.ResponseJSON},
	{Name: "DeleteOrder", Method: http.MethodDelete, Path: "/orders/{orderId}", Response: synapse.ResponseNone},
}

var orderHandlers = map[string]stub.Handler{
	"GetOrder": func(r *http.Request, params map[string]string) stub.Response {
		return stub.Response{Body: order{UserID: params["id"], OrderID: params["orderId"]}}
	},
	"DeleteOrder": stub.Status(http.StatusConflict, "order locked"),
}

func TestServers(t *testing.T) {
	servers := []func() stub.Server{
		func() stub.Server { return stub.NewEcho() },
		func() stub.Server { return stub.NewGin() },
		func() stub.Server { return stub.NewFiber() },
	}

	for _, newServer := range servers {
		s := newServer()
		t.Run(s.Name(), func(t *testing.T) {
			require.NoError(t, stub.Mount(s, orderOps, orderHandlers))
			srv := httptest.NewServer(s)
			defer srv.Close()

			c := synapse.New("Orders", synapse.WithBaseURL(srv.URL))

			req := synapse.NewRequest("GetOrder", http.MethodGet,
				"/users/"+synapse.PathValue("u1", "")+"/orders/"+synapse.PathValue(7, "04d"))
			got, err := synapse.Invoke(context.Background(), c, req, synapse.JSON[order]())
			require.NoError(t, err)
			assert.Equal(t, order{UserID: "u1", OrderID: "0007"}, got)

			_, err = synapse.Invoke(context.Background(), c,
				synapse.NewRequest("DeleteOrder", http.MethodDelete, "/orders/1"), synapse.None())
			require.Error(t, err)
			assert.True(t, synapse.IsStatus(err, http.StatusConflict))

			var te *synapse.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "order locked", te.Body)
		})
	}
}

func TestMount_MissingHandler(t *testing.T) {
	err := stub.Mount(stub.NewEcho(), orderOps, map[string]stub.Handler{
		"GetOrder": stub.JSON(http.StatusOK, nil),
	})
	assert.Error(t, err)
}

func TestRoutePath(t *testing.T) {
	testCases := []struct {
		template string
		want     string
	}{
		{"/users/{id}", "/users/:id"},
		{"/users/{id}/orders/{orderId:04d}", "/users/:id/orders/:orderId"},
		{"users", "/users"},
		{"https://api.example.com/v1/items/{sku}", "/v1/items/:sku"},
		{"/search?q=all", "/search"},
	}

	for _, tc := range testCases {
		t.Run(tc.template, func(t *testing.T) {
			got, err := stub.RoutePath(tc.template)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := stub.RoutePath("/users/{id")
	assert.Error(t, err)
}
