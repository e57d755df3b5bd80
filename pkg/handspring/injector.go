package handspring

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/models"
)

// Inject resolves every injection point of every registered instance against
// the container. Missing targets and unassignable beans are reported and leave
// the field untouched. There is no ordering and no cycle detection; cycles
// resolve because beans are shared by reference. Running it again is safe.
//
// A bean exposing SetField(dep) for an injected field receives the
// dependency through that setter; otherwise the field is assigned directly,
// unexported fields included.
func Inject(c *Container) []error {
	var problems []error

	// an instance may sit under several names; it is injected once, through
	// whichever entry comes first, even if its own name was since replaced
	seen := make(map[any]bool)
	for _, bean := range c.Beans() {
		if bean.Descriptor == nil {
			continue
		}
		if reflect.ValueOf(bean.Instance).Kind() == reflect.Ptr {
			if seen[bean.Instance] {
				continue
			}
			seen[bean.Instance] = true
		} else if bean.Alias {
			continue
		}
		for _, field := range bean.Descriptor.InjectionPoints() {
			if err := c.injectField(bean, field); err != nil {
				c.diag.Problem(err)
				problems = append(problems, err)
			}
		}
	}

	return problems
}

func (c *Container) injectField(bean *Bean, field models.FieldDescriptor) error {
	target := field.TargetName()

	dep, ok := c.Get(target)
	if !ok {
		return errors.InjectionTargetMissing(bean.Name, field.Name, target)
	}

	v := reflect.ValueOf(bean.Instance)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.InjectionField(bean.Name, field.Name, "bean is not a pointer to a struct")
	}

	sf, ok := v.Elem().Type().FieldByName(field.Name)
	if !ok {
		return errors.InjectionField(bean.Name, field.Name, "no such field on "+v.Type().String())
	}
	fv, err := v.Elem().FieldByIndexErr(sf.Index)
	if err != nil {
		return errors.InjectionField(bean.Name, field.Name, err.Error())
	}

	depValue := reflect.ValueOf(dep)
	if !depValue.Type().AssignableTo(fv.Type()) {
		return errors.InjectionTypeMismatch(bean.Name, field.Name, target, fv.Type().String(), depValue.Type().String())
	}

	if setter := setterFor(v, field.Name, depValue.Type()); setter.IsValid() {
		setter.Call([]reflect.Value{depValue})
		c.diag.Debug("injected '%s' into %s via %s", target, bean.Name, setterName(field.Name))
		return nil
	}

	if !fv.CanSet() {
		// unexported field of an addressable struct
		fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
	}
	fv.Set(depValue)

	c.diag.Debug("injected '%s' into %s.%s", target, bean.Name, field.Name)
	return nil
}

func setterFor(v reflect.Value, field string, dep reflect.Type) reflect.Value {
	m := v.MethodByName(setterName(field))
	if !m.IsValid() {
		return reflect.Value{}
	}
	t := m.Type()
	if t.NumIn() != 1 || t.NumOut() != 0 || !dep.AssignableTo(t.In(0)) {
		return reflect.Value{}
	}
	return m
}

func setterName(field string) string {
	return "Set" + strings.ToUpper(field[:1]) + field[1:]
}
