package stub

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/toyz/synapse/pkg/synapse"
)

// FiberServer stubs operations on a Fiber v2 app. Fiber is fasthttp based,
// so requests are bridged through the adaptor middleware.
type FiberServer struct {
	app     *fiber.App
	handler http.HandlerFunc
}

// NewFiber creates a stub server on a fresh Fiber app
func NewFiber() *FiberServer {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	return &FiberServer{app: app, handler: adaptor.FiberApp(app)}
}

// Handle mounts h for op
func (s *FiberServer) Handle(op synapse.OperationInfo, h Handler) error {
	path, err := RoutePath(op.Path)
	if err != nil {
		return err
	}
	s.app.Add(op.Method, path, func(c *fiber.Ctx) error {
		req, err := adaptor.ConvertRequest(c, false)
		if err != nil {
			return err
		}
		status, header, body, err := encode(h(req, c.AllParams()))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		for k, vs := range header {
			for _, v := range vs {
				c.Append(k, v)
			}
		}
		c.Status(status)
		if body == nil {
			return nil
		}
		return c.Send(body)
	})
	return nil
}

// ServeHTTP implements http.Handler
func (s *FiberServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

// Name returns the adapter name
func (s *FiberServer) Name() string {
	return "Fiber"
}

// App returns the underlying Fiber app
func (s *FiberServer) App() *fiber.App {
	return s.app
}
