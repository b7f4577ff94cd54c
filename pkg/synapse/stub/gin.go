package stub

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toyz/synapse/pkg/synapse"
)

// GinServer stubs operations on a Gin engine
type GinServer struct {
	engine *gin.Engine
}

// NewGin creates a stub server on a Gin engine without default middleware
func NewGin() *GinServer {
	return &GinServer{engine: gin.New()}
}

// Handle mounts h for op
func (s *GinServer) Handle(op synapse.OperationInfo, h Handler) error {
	path, err := RoutePath(op.Path)
	if err != nil {
		return err
	}
	s.engine.Handle(op.Method, path, func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		write(c.Writer, h(c.Request, params))
	})
	return nil
}

// ServeHTTP implements http.Handler
func (s *GinServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Name returns the adapter name
func (s *GinServer) Name() string {
	return "Gin"
}

// Engine returns the underlying Gin engine
func (s *GinServer) Engine() *gin.Engine {
	return s.engine
}
