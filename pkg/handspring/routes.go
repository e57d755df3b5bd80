package handspring

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"

	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/models"
)

var (
	slashRun  = regexp.MustCompile(`/+`)
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// NormalizePattern builds "/" + base + "/" + sub and collapses runs of '/'
func NormalizePattern(base, sub string) string {
	return CollapseSlashes("/" + base + "/" + sub)
}

// CollapseSlashes replaces every run of '/' with a single one
func CollapseSlashes(p string) string {
	return slashRun.ReplaceAllString(p, "/")
}

// Route binds a pattern to a method of a controller bean
type Route struct {
	Pattern  string
	BeanName string
	Bean     any
	Method   string

	fn        reflect.Value
	returnErr bool // last result is an error
}

// Invoke calls the bound method and returns its first result. A trailing
// error result is returned as err; a sole error result yields a nil value.
func (r *Route) Invoke() (any, error) {
	out := r.fn.Call(nil)

	var (
		value any
		err   error
	)
	switch len(out) {
	case 0:
	case 1:
		if r.returnErr {
			err, _ = out[0].Interface().(error)
		} else {
			value = out[0].Interface()
		}
	default:
		value = out[0].Interface()
		err, _ = out[1].Interface().(error)
	}
	return value, err
}

// String returns "pattern -> bean.Method"
func (r *Route) String() string {
	return fmt.Sprintf("%s -> %s.%s", r.Pattern, r.BeanName, r.Method)
}

// RouteTable maps exact patterns to routes. Built once, read-only afterwards.
type RouteTable struct {
	routes map[string]*Route
}

// NewRouteTable creates an empty table
func NewRouteTable() *RouteTable {
	return &RouteTable{routes: make(map[string]*Route)}
}

// Lookup returns the route bound to pattern
func (t *RouteTable) Lookup(pattern string) (*Route, bool) {
	r, ok := t.routes[pattern]
	return r, ok
}

// Routes returns the routes sorted by pattern
func (t *RouteTable) Routes() []*Route {
	out := make([]*Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

// Len returns the number of patterns
func (t *RouteTable) Len() int {
	return len(t.routes)
}

// BuildRoutes binds the route-marked methods of every controller bean.
// Methods that cannot be bound are reported and skipped; a later pattern
// replaces an earlier identical one.
func BuildRoutes(c *Container) (*RouteTable, []error) {
	table := NewRouteTable()
	var problems []error

	for _, bean := range c.Beans() {
		if bean.Alias || bean.Descriptor == nil || !bean.Descriptor.IsController() {
			continue
		}
		base := bean.Descriptor.BasePath()

		for _, method := range bean.Descriptor.Routes() {
			pattern := NormalizePattern(base, method.Mapping.Path())
			route, err := bind(bean, method, pattern)
			if err != nil {
				c.diag.Problem(err)
				problems = append(problems, err)
				continue
			}
			if previous, exists := table.routes[pattern]; exists {
				c.diag.Warn("route '%s' rebound from %s.%s to %s.%s", pattern, previous.BeanName, previous.Method, route.BeanName, route.Method)
			}
			table.routes[pattern] = route
			c.diag.Info("mapped %s", route)
		}
	}

	return table, problems
}

func bind(bean *Bean, method models.MethodDescriptor, pattern string) (*Route, error) {
	if !method.Exported {
		return nil, errors.RouteBinding(bean.Name, method.Name, pattern, "method is not exported")
	}

	fn := reflect.ValueOf(bean.Instance).MethodByName(method.Name)
	if !fn.IsValid() {
		return nil, errors.RouteBinding(bean.Name, method.Name, pattern, "method not found on the bean instance")
	}

	returnErr, err := checkSignature(fn.Type())
	if err != nil {
		return nil, errors.RouteBinding(bean.Name, method.Name, pattern, err.Error())
	}

	return &Route{
		Pattern:   pattern,
		BeanName:  bean.Name,
		Bean:      bean.Instance,
		Method:    method.Name,
		fn:        fn,
		returnErr: returnErr,
	}, nil
}

// checkSignature accepts func(), func() T, func() error and func() (T, error)
func checkSignature(t reflect.Type) (returnErr bool, err error) {
	if t.NumIn() != 0 {
		return false, fmt.Errorf("handlers take no arguments, got %d", t.NumIn())
	}
	switch t.NumOut() {
	case 0:
		return false, nil
	case 1:
		return t.Out(0) == errorType, nil
	case 2:
		if t.Out(1) != errorType {
			return false, fmt.Errorf("second result must be error, got %s", t.Out(1))
		}
		return true, nil
	default:
		return false, fmt.Errorf("handlers return at most a value and an error, got %d results", t.NumOut())
	}
}

// StaticRoute is a route derived from descriptors alone, without instances
type StaticRoute struct {
	Pattern    string
	Controller string // qualified type name
	BeanName   string
	Method     string
	Location   string
}

// PlanRoutes derives the route table from scan results without
// instantiating anything, applying the same binding rules by declaration.
func PlanRoutes(descs []*models.TypeDescriptor) ([]StaticRoute, []error) {
	byPattern := make(map[string]StaticRoute)
	var problems []error

	for _, desc := range descs {
		if !desc.IsController() {
			continue
		}
		for _, method := range desc.Routes() {
			pattern := NormalizePattern(desc.BasePath(), method.Mapping.Path())
			var reason string
			switch {
			case !method.Exported:
				reason = "method is not exported"
			case method.Params != 0:
				reason = fmt.Sprintf("handlers take no arguments, got %d", method.Params)
			case method.Results > 2:
				reason = fmt.Sprintf("handlers return at most a value and an error, got %d results", method.Results)
			}
			if reason != "" {
				problems = append(problems, errors.RouteBinding(desc.BeanName(), method.Name, pattern, reason))
				continue
			}
			byPattern[pattern] = StaticRoute{
				Pattern:    pattern,
				Controller: desc.QualifiedName,
				BeanName:   desc.BeanName(),
				Method:     method.Name,
				Location:   method.Position(),
			}
		}
	}

	out := make([]StaticRoute, 0, len(byPattern))
	for _, r := range byPattern {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out, problems
}
