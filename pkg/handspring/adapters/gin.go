package adapters

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/toyz/handspring/pkg/handspring"
)

// GinAdapter serves a front controller through Gin's NoRoute handler
type GinAdapter struct {
	engine *gin.Engine
	server httpServer
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a Gin adapter with the recovery middleware
func NewDefaultGinAdapter() *GinAdapter {
	g := gin.New()
	g.Use(gin.Recovery())
	return NewGinAdapter(g)
}

// Mount routes every unmatched request to front
func (ga *GinAdapter) Mount(front *handspring.FrontController) {
	ga.engine.NoRoute(func(c *gin.Context) {
		resp := front.HandleWithID(c.Request.Method, c.Request.URL.EscapedPath(), c.GetHeader(handspring.HeaderRequestID))
		c.Header(handspring.HeaderRequestID, resp.RequestID)
		c.Data(resp.Status, resp.ContentType, []byte(resp.Body))
	})
}

// Start starts the Gin server
func (ga *GinAdapter) Start(addr string) error {
	return ga.server.listen(addr, ga.engine)
}

// Stop gracefully shuts the server down
func (ga *GinAdapter) Stop(ctx context.Context) error {
	return ga.server.shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}
