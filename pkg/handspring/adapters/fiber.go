package adapters

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/handspring/pkg/handspring"
)

// FiberAdapter serves a front controller through a Fiber middleware
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter
func NewFiberAdapter(app *fiber.App) *FiberAdapter {
	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a Fiber adapter with the recover middleware
func NewDefaultFiberAdapter() *FiberAdapter {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			c.Set(fiber.HeaderContentType, handspring.ContentTypeHTML)
			return c.Status(code).SendString("500: " + err.Error())
		},
	})
	app.Use(recover.New())
	return NewFiberAdapter(app)
}

// Mount routes every method and path to front
func (fa *FiberAdapter) Mount(front *handspring.FrontController) {
	fa.app.Use(func(c *fiber.Ctx) error {
		resp := front.HandleWithID(c.Method(), c.Path(), c.Get(handspring.HeaderRequestID))
		c.Set(handspring.HeaderRequestID, resp.RequestID)
		c.Set(fiber.HeaderContentType, resp.ContentType)
		return c.Status(resp.Status).SendString(resp.Body)
	})
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}
