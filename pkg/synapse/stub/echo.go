package stub

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toyz/synapse/pkg/synapse"
)

// EchoServer stubs operations on an Echo v4 router
type EchoServer struct {
	engine *echo.Echo
}

// NewEcho creates a stub server on a fresh Echo instance
func NewEcho() *EchoServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoServer{engine: e}
}

// Handle mounts h for op
func (s *EchoServer) Handle(op synapse.OperationInfo, h Handler) error {
	path, err := RoutePath(op.Path)
	if err != nil {
		return err
	}
	s.engine.Add(op.Method, path, func(c echo.Context) error {
		params := make(map[string]string, len(c.ParamNames()))
		for _, name := range c.ParamNames() {
			params[name] = c.Param(name)
		}
		write(c.Response(), h(c.Request(), params))
		return nil
	})
	return nil
}

// ServeHTTP implements http.Handler
func (s *EchoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Name returns the adapter name
func (s *EchoServer) Name() string {
	return "Echo"
}

// Engine returns the underlying Echo instance
func (s *EchoServer) Engine() *echo.Echo {
	return s.engine
}
