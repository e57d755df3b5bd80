package handspring

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/utils"
)

// Dispatcher resolves request paths against a finished route table. It is
// safe for concurrent use; handler thread safety is up to the handlers.
type Dispatcher struct {
	table       *RouteTable
	contextPath string
	diag        *utils.DiagnosticSystem
}

// NewDispatcher creates a dispatcher over table. contextPath is stripped from
// every request path before lookup.
func NewDispatcher(table *RouteTable, contextPath string, diag *Diagnostics) *Dispatcher {
	if table == nil {
		table = NewRouteTable()
	}
	if diag == nil {
		diag = utils.NewSilentDiagnostics()
	}
	return &Dispatcher{
		table:       table,
		contextPath: normalizeContextPath(contextPath),
		diag:        diag,
	}
}

// Routes returns the route table
func (d *Dispatcher) Routes() *RouteTable {
	return d.table
}

// ContextPath returns the normalized context prefix, empty for none
func (d *Dispatcher) ContextPath() string {
	return d.contextPath
}

// Resolve turns a request path into its lookup key: a literal query or
// fragment is cut, runs of '/' are collapsed the way patterns are, and the
// context prefix is stripped. Escapes are left alone, so an encoded '?' stays
// part of the path.
func (d *Dispatcher) Resolve(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	key := CollapseSlashes("/" + path)
	if d.contextPath != "" && strings.HasPrefix(key, d.contextPath) {
		rest := key[len(d.contextPath):]
		if rest == "" || rest[0] == '/' {
			key = "/" + rest
		}
	}
	return CollapseSlashes(key)
}

// Dispatch invokes the route bound to path and returns its first result.
// An unknown path yields a *RouteNotFoundError; a handler error or panic is
// wrapped in a *HandlerInvocationError. Dispatch never panics.
func (d *Dispatcher) Dispatch(path string) (result any, err error) {
	key := d.Resolve(path)

	route, ok := d.table.Lookup(key)
	if !ok {
		d.diag.Debug("no route for '%s'", key)
		return nil, errors.NewRouteNotFound(key)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewHandlerInvocation(route.Pattern, route.BeanName, route.Method, fmt.Errorf("panic: %v", r), debug.Stack())
		}
	}()

	result, err = route.Invoke()
	if err != nil {
		return nil, errors.NewHandlerInvocation(route.Pattern, route.BeanName, route.Method, err, nil)
	}
	return result, nil
}

func normalizeContextPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.TrimRight(CollapseSlashes("/"+p), "/")
	return p
}
