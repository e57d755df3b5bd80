package adapters

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/toyz/handspring/pkg/handspring"
)

// ChiAdapter serves a front controller through a chi catch-all route
type ChiAdapter struct {
	router chi.Router
	server httpServer
}

// NewChiAdapter creates a new chi adapter
func NewChiAdapter(r chi.Router) *ChiAdapter {
	return &ChiAdapter{router: r}
}

// NewDefaultChiAdapter creates a chi adapter with the recoverer middleware
func NewDefaultChiAdapter() *ChiAdapter {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	return NewChiAdapter(r)
}

// Mount routes every method and path to front
func (ca *ChiAdapter) Mount(front *handspring.FrontController) {
	ca.router.HandleFunc("/*", front.ServeHTTP)
}

// Start starts the chi server
func (ca *ChiAdapter) Start(addr string) error {
	return ca.server.listen(addr, ca.router)
}

// Stop gracefully shuts the server down
func (ca *ChiAdapter) Stop(ctx context.Context) error {
	return ca.server.shutdown(ctx)
}

// Name returns the adapter name
func (ca *ChiAdapter) Name() string {
	return "Chi"
}

// GetRouter returns the underlying chi router
func (ca *ChiAdapter) GetRouter() chi.Router {
	return ca.router
}
