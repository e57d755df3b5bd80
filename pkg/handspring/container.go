package handspring

import (
	"fmt"
	"reflect"

	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/models"
	"github.com/toyz/handspring/internal/utils"
)

// Bean is a live instance owned by the container
type Bean struct {
	Name       string
	Instance   any
	Descriptor *models.TypeDescriptor
	// Alias is set for entries registered under a capability interface name
	Alias bool
	// Interface is the qualified capability name of an alias entry
	Interface string
}

// Container is the bean registry. It is populated once during boot and only
// read afterwards.
type Container struct {
	catalog *Catalog
	diag    *utils.DiagnosticSystem
	beans   map[string]*Bean
	order   []string
}

// NewContainer creates an empty container backed by catalog
func NewContainer(catalog *Catalog, diag *Diagnostics) *Container {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if diag == nil {
		diag = utils.NewSilentDiagnostics()
	}
	return &Container{
		catalog: catalog,
		diag:    diag,
		beans:   make(map[string]*Bean),
	}
}

// RegisterAll registers every descriptor in order and returns the construction problems
func (c *Container) RegisterAll(descs []*models.TypeDescriptor) []error {
	var problems []error
	for _, desc := range descs {
		if err := c.Register(desc); err != nil {
			problems = append(problems, err)
		}
	}
	return problems
}

// Register instantiates a controller or service descriptor through the
// catalog and stores it under its bean name. Services are also aliased under
// the name of every capability interface they implement that is still free.
// Descriptors without a component marker are ignored.
func (c *Container) Register(desc *models.TypeDescriptor) error {
	if desc == nil || !desc.IsComponent() {
		return nil
	}

	instance, err := c.construct(desc)
	if err != nil {
		c.diag.Problem(err)
		return err
	}

	name := desc.BeanName()
	c.put(&Bean{Name: name, Instance: instance, Descriptor: desc})
	c.diag.Verbose("registered %s as '%s'", desc.QualifiedName, name)

	if desc.IsService() {
		c.alias(instance, desc)
	}
	return nil
}

func (c *Container) construct(desc *models.TypeDescriptor) (instance any, err error) {
	provider, ok := c.catalog.Provider(desc.QualifiedName)
	if !ok {
		return nil, errors.BeanConstruction(desc.QualifiedName, fmt.Errorf("no provider in catalog")).
			WithSuggestion("run `handspring gen` to regenerate the catalog")
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = errors.BeanConstruction(desc.QualifiedName, fmt.Errorf("provider panicked: %v", r))
		}
	}()

	instance, err = provider()
	if err != nil {
		return nil, errors.BeanConstruction(desc.QualifiedName, err)
	}
	if isNil(instance) {
		return nil, errors.BeanConstruction(desc.QualifiedName, fmt.Errorf("provider returned nil"))
	}

	// Values are moved behind a pointer so their fields stay settable
	if v := reflect.ValueOf(instance); v.Kind() == reflect.Struct {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		instance = ptr.Interface()
	}
	return instance, nil
}

// alias registers instance under every capability it implements, first implementer wins
func (c *Container) alias(instance any, desc *models.TypeDescriptor) {
	t := reflect.TypeOf(instance)
	for _, capability := range c.catalog.Capabilities() {
		if capability.Type.NumMethod() == 0 || !t.Implements(capability.Type) {
			continue
		}
		name := capability.BeanName()
		if existing, taken := c.beans[name]; taken {
			c.diag.Debug("'%s' already claimed by %s, %s not aliased", name, existing.describe(), desc.QualifiedName)
			continue
		}
		c.put(&Bean{Name: name, Instance: instance, Descriptor: desc, Alias: true, Interface: capability.QualifiedName})
		c.diag.Verbose("aliased %s as '%s' (%s)", desc.QualifiedName, name, capability.QualifiedName)
	}
}

func (c *Container) put(bean *Bean) {
	if existing, ok := c.beans[bean.Name]; ok {
		c.diag.Warn("bean '%s' (%s) replaced by %s", bean.Name, existing.describe(), bean.describe())
	} else {
		c.order = append(c.order, bean.Name)
	}
	c.beans[bean.Name] = bean
}

// Get returns the instance registered under name
func (c *Container) Get(name string) (any, bool) {
	bean, ok := c.beans[name]
	if !ok {
		return nil, false
	}
	return bean.Instance, true
}

// Bean returns the registry entry for name
func (c *Container) Bean(name string) (*Bean, bool) {
	bean, ok := c.beans[name]
	return bean, ok
}

// Beans returns every entry, aliases included, in first-registration order
func (c *Container) Beans() []*Bean {
	out := make([]*Bean, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.beans[name])
	}
	return out
}

// Names returns the registered names in first-registration order
func (c *Container) Names() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of registered names
func (c *Container) Len() int {
	return len(c.order)
}

func (b *Bean) describe() string {
	if b.Descriptor == nil {
		return fmt.Sprintf("%T", b.Instance)
	}
	return b.Descriptor.QualifiedName
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
