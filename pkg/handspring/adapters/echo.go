package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/toyz/handspring/pkg/handspring"
)

// EchoAdapter serves a front controller through an Echo catch-all route
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates an Echo adapter with the recover middleware
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	return NewEchoAdapter(e)
}

// Mount routes every method and path to front
func (ea *EchoAdapter) Mount(front *handspring.FrontController) {
	ea.engine.Any("/*", func(c echo.Context) error {
		req := c.Request()
		resp := front.HandleWithID(req.Method, req.URL.EscapedPath(), req.Header.Get(handspring.HeaderRequestID))
		c.Response().Header().Set(handspring.HeaderRequestID, resp.RequestID)
		return c.Blob(resp.Status, resp.ContentType, []byte(resp.Body))
	})
}

// Start starts the Echo server
func (ea *EchoAdapter) Start(addr string) error {
	if err := ea.engine.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}
