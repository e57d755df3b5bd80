// Package adapters mounts a handspring front controller on an HTTP engine.
// Every adapter routes all methods and paths to the front controller and
// recovers from panics raised outside the dispatcher.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/toyz/handspring/pkg/handspring"
)

// Server is an HTTP engine serving one front controller
type Server interface {
	// Mount routes every request to front. Call it before Start.
	Mount(front *handspring.FrontController)

	Start(addr string) error
	Stop(ctx context.Context) error

	Name() string
}

var engines = map[string]func() Server{
	"gin":   func() Server { return NewDefaultGinAdapter() },
	"echo":  func() Server { return NewDefaultEchoAdapter() },
	"fiber": func() Server { return NewDefaultFiberAdapter() },
	"chi":   func() Server { return NewDefaultChiAdapter() },
}

// Engines returns the names accepted by ForEngine
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForEngine creates the default adapter for a server.engine value
func ForEngine(name string) (Server, error) {
	factory, ok := engines[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown server engine '%s' (expected one of %s)", name, strings.Join(Engines(), ", "))
	}
	return factory(), nil
}

// httpServer runs a plain http.Handler so engines without their own
// lifecycle can still be shut down
type httpServer struct {
	mu  sync.Mutex
	srv *http.Server
}

func (s *httpServer) listen(addr string, h http.Handler) error {
	s.mu.Lock()
	s.srv = &http.Server{Addr: addr, Handler: h}
	srv := s.srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *httpServer) shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
