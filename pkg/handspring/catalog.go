// Package handspring is the runtime of the handspring IoC container: it turns
// scanned //hand:: markers into live beans, wires them and dispatches request
// paths to controller methods.
package handspring

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/toyz/handspring/internal/models"
)

// Provider constructs one bean instance
type Provider func() (any, error)

// Capability is an interface type the container may alias service beans under
type Capability struct {
	QualifiedName string
	Type          reflect.Type
}

// BeanName is the alias name services implementing the capability register under
func (c Capability) BeanName() string {
	name := c.QualifiedName
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return models.DeriveBeanName(name)
}

// Catalog maps qualified type names to providers. Go cannot instantiate a
// type from its name, so the catalog stands in for a class loader; it is
// normally generated by `handspring gen`.
type Catalog struct {
	providers    map[string]Provider
	capabilities []Capability
	capIndex     map[string]int
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		providers: make(map[string]Provider),
		capIndex:  make(map[string]int),
	}
}

// Provide registers the provider for a qualified type name. A later call for
// the same name replaces the provider.
func (c *Catalog) Provide(qualifiedName string, p Provider) *Catalog {
	c.providers[qualifiedName] = p
	return c
}

// Interface registers a capability interface. Registration order decides
// which service claims an interface alias first. It panics when t is not an
// interface type.
func (c *Catalog) Interface(qualifiedName string, t reflect.Type) *Catalog {
	if t == nil || t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("handspring: %s is not an interface type", qualifiedName))
	}
	if i, ok := c.capIndex[qualifiedName]; ok {
		c.capabilities[i].Type = t
		return c
	}
	c.capIndex[qualifiedName] = len(c.capabilities)
	c.capabilities = append(c.capabilities, Capability{QualifiedName: qualifiedName, Type: t})
	return c
}

// Provider returns the provider registered for qualifiedName
func (c *Catalog) Provider(qualifiedName string) (Provider, bool) {
	p, ok := c.providers[qualifiedName]
	return p, ok
}

// Capabilities returns the registered interfaces in registration order
func (c *Catalog) Capabilities() []Capability {
	return append([]Capability(nil), c.capabilities...)
}

// Len returns the number of providers
func (c *Catalog) Len() int {
	return len(c.providers)
}

// Zero provides a fresh zero-valued *T
func Zero[T any]() Provider {
	return func() (any, error) {
		return new(T), nil
	}
}

// Constructor adapts a zero-argument constructor
func Constructor[T any](fn func() T) Provider {
	return func() (any, error) {
		return fn(), nil
	}
}

// ConstructorErr adapts a zero-argument constructor that may fail
func ConstructorErr[T any](fn func() (T, error)) Provider {
	return func() (any, error) {
		return fn()
	}
}

// InterfaceOf returns the reflect.Type of the interface I
func InterfaceOf[I any]() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}
