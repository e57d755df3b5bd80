package handspring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/handspring/internal/annotations"
	"github.com/toyz/handspring/internal/models"
)

type needsGreeter struct {
	Greeter Greeter
	missing Greeter
}

type withSetter struct {
	greeter Greeter
	calls   int
}

func (w *withSetter) SetGreeter(g Greeter) {
	w.calls++
	w.greeter = g
}

type aliasedGreeter struct {
	french *FrenchService
}

func (g *aliasedGreeter) Greet() string { return g.french.Greet() }

type cycleA struct {
	b *cycleB
}

type cycleB struct {
	a *cycleA
}

type needsCount struct {
	Count int
}

func TestInject_ResolvesFieldsByName(t *testing.T) {
	c := wired(t)

	got, ok := c.Get("helloController")
	require.True(t, ok)
	hello := got.(*HelloController)

	english, _ := c.Get("englishService")
	french, _ := c.Get("frenchService")

	assert.Same(t, english, hello.greeter, "unexported field resolved through the interface alias")
	assert.Same(t, french, hello.Named, "tag name wins over the field name")
	assert.Equal(t, "hello", hello.Greet())
	assert.Equal(t, "bonjour", hello.Formal())
}

func TestInject_IsRepeatable(t *testing.T) {
	c := wired(t)
	assert.Empty(t, Inject(c))

	got, _ := c.Get("helloController")
	assert.Equal(t, "hello", got.(*HelloController).Greet())
}

func TestInject_MissingTarget(t *testing.T) {
	cat := NewCatalog().Provide("x.NeedsGreeter", Zero[needsGreeter]())
	c := NewContainer(cat, nil)
	require.Empty(t, c.RegisterAll([]*models.TypeDescriptor{
		component("x.NeedsGreeter", annotations.ServiceAnnotation, injected("missing", "nowhere")),
	}))

	problems := Inject(c)
	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], ErrInjectionTargetMissing)
	assert.Contains(t, problems[0].Error(), "bean not found: nowhere")

	got, _ := c.Get("needsGreeter")
	assert.Nil(t, got.(*needsGreeter).missing, "field left untouched")
}

func TestInject_TypeMismatch(t *testing.T) {
	cat := NewCatalog().
		Provide("x.NeedsCount", Zero[needsCount]()).
		Provide("x.EnglishService", Zero[EnglishService]())
	c := NewContainer(cat, nil)
	require.Empty(t, c.RegisterAll([]*models.TypeDescriptor{
		component("x.NeedsCount", annotations.ServiceAnnotation, injected("Count", "englishService")),
		component("x.EnglishService", annotations.ServiceAnnotation),
	}))

	problems := Inject(c)
	require.Len(t, problems, 1)
	assert.ErrorIs(t, problems[0], ErrInjectionTypeMismatch)

	got, _ := c.Get("needsCount")
	assert.Equal(t, 0, got.(*needsCount).Count)
}

func TestInject_UnknownField(t *testing.T) {
	cat := NewCatalog().
		Provide("x.NeedsGreeter", Zero[needsGreeter]()).
		Provide("x.EnglishService", Zero[EnglishService]())
	c := NewContainer(cat, nil)
	require.Empty(t, c.RegisterAll([]*models.TypeDescriptor{
		component("x.NeedsGreeter", annotations.ServiceAnnotation, injected("Renamed", "englishService")),
		component("x.EnglishService", annotations.ServiceAnnotation),
	}))

	problems := Inject(c)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Error(), "no such field")
}

func TestInject_DefaultsToFieldName(t *testing.T) {
	cat := NewCatalog().
		Provide("x.NeedsGreeter", Zero[needsGreeter]()).
		Provide("x.Greeter", Constructor(func() *FrenchService { return &FrenchService{} }))
	c := NewContainer(cat, nil)

	greeterBean := component("x.Greeter", annotations.ServiceAnnotation)
	greeterBean.Markers[0].Value = "Greeter"
	require.Empty(t, c.RegisterAll([]*models.TypeDescriptor{
		component("x.NeedsGreeter", annotations.ServiceAnnotation, injected("Greeter", "")),
		greeterBean,
	}))

	assert.Empty(t, Inject(c), "unnamed marker resolves the field name")
	got, _ := c.Get("needsGreeter")
	assert.NotNil(t, got.(*needsGreeter).Greeter)
}

func TestInject_PrefersSetter(t *testing.T) {
	cat := NewCatalog().
		Provide("x.WithSetter", Zero[withSetter]()).
		Provide("x.EnglishService", Constructor(func() *EnglishService { return &EnglishService{greeting: "hi"} }))
	c := NewContainer(cat, nil)
	require.Empty(t, c.RegisterAll([]*models.TypeDescriptor{
		component("x.WithSetter", annotations.ServiceAnnotation, injected("greeter", "englishService")),
		component("x.EnglishService", annotations.ServiceAnnotation),
	}))

	require.Empty(t, Inject(c))

	got, _ := c.Get("withSetter")
	w := got.(*withSetter)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, "hi", w.greeter.Greet())
}

func TestInject_ReachesInstancesOnlyHeldByAlias(t *testing.T) {
	aliased := component("x.AliasedGreeter", annotations.ServiceAnnotation, injected("french", "frenchService"))
	aliased.Markers[0].Value = "foo"
	replacement := component("x.NeedsCount", annotations.ServiceAnnotation)
	replacement.Markers[0].Value = "foo"

	cat := NewCatalog().
		Provide("x.AliasedGreeter", Zero[aliasedGreeter]()).
		Provide("x.NeedsCount", Zero[needsCount]()).
		Provide("x.FrenchService", Zero[FrenchService]()).
		Interface("x.Greeter", InterfaceOf[Greeter]())
	c := NewContainer(cat, nil)
	require.Empty(t, c.RegisterAll([]*models.TypeDescriptor{
		aliased,
		replacement,
		component("x.FrenchService", annotations.ServiceAnnotation),
	}))

	foo, _ := c.Get("foo")
	require.IsType(t, &needsCount{}, foo, "name taken over by the later bean")

	require.Empty(t, Inject(c))

	got, ok := c.Get("greeter")
	require.True(t, ok)
	french, _ := c.Get("frenchService")
	assert.Same(t, french, got.(*aliasedGreeter).french)
	assert.Equal(t, "bonjour", got.(Greeter).Greet())
}

func TestInject_CyclesResolveByReference(t *testing.T) {
	cat := NewCatalog().
		Provide("x.CycleA", Zero[cycleA]()).
		Provide("x.CycleB", Zero[cycleB]())
	c := NewContainer(cat, nil)
	require.Empty(t, c.RegisterAll([]*models.TypeDescriptor{
		component("x.CycleA", annotations.ServiceAnnotation, injected("b", "cycleB")),
		component("x.CycleB", annotations.ServiceAnnotation, injected("a", "cycleA")),
	}))

	require.Empty(t, Inject(c))

	gotA, _ := c.Get("cycleA")
	gotB, _ := c.Get("cycleB")
	a := gotA.(*cycleA)
	b := gotB.(*cycleB)
	assert.Same(t, b, a.b)
	assert.Same(t, a, b.a)
	assert.Same(t, a, a.b.a)
}
