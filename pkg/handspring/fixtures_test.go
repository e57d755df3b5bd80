package handspring

import (
	stderrors "errors"
	"testing/fstest"

	"github.com/toyz/handspring/internal/annotations"
	"github.com/toyz/handspring/internal/models"
)

// Sources describing the Go types below. The scanner only reads the
// sources; the catalog maps their qualified names onto the real types.

const helloControllerSrc = `package controller

import "example.com/app/web/service"

//hand::controller
//hand::mapping hello
type HelloController struct {
	//hand::autowired
	greeter service.Greeter

	Named service.Greeter ` + "`autowired:\"frenchService\"`" + `
}

//hand::mapping greet
func (c *HelloController) Greet() string { return c.greeter.Greet() }

//hand::mapping /formal
func (c *HelloController) Formal() string { return c.Named.Greet() }

//hand::mapping fail
func (c *HelloController) Fail() (string, error) { return "", nil }

//hand::mapping panic
func (c *HelloController) Panic() string { return "" }

//hand::mapping nothing
func (c *HelloController) Nothing() {}

//hand::mapping status
func (c *HelloController) Status() error { return nil }

//hand::mapping count
func (c *HelloController) Count() int { return 0 }
`

const greeterSrc = `package service

type Greeter interface {
	Greet() string
}
`

const englishSrc = `package service

//hand::service
type EnglishService struct {
	greeting string
}

func (s *EnglishService) Greet() string { return s.greeting }
`

const frenchSrc = `package service

//hand::service frenchService
type FrenchService struct{}

func (s *FrenchService) Greet() string { return "bonjour" }
`

const configSrc = `scan-package: web
context-path: /app
debug: true
log:
  level: silent
`

func sources() fstest.MapFS {
	return fstest.MapFS{
		"web/controller/hello.go": {Data: []byte(helloControllerSrc)},
		"web/service/english.go":  {Data: []byte(englishSrc)},
		"web/service/french.go":   {Data: []byte(frenchSrc)},
		"web/service/greeter.go":  {Data: []byte(greeterSrc)},
		"application.yaml":        {Data: []byte(configSrc)},
	}
}

type Greeter interface {
	Greet() string
}

type EnglishService struct {
	greeting string
}

func (s *EnglishService) Greet() string { return s.greeting }

type FrenchService struct{}

func (s *FrenchService) Greet() string { return "bonjour" }

type HelloController struct {
	greeter Greeter
	Named   Greeter
	calls   int
}

func (c *HelloController) Greet() string {
	c.calls++
	return c.greeter.Greet()
}

func (c *HelloController) Formal() string { return c.Named.Greet() }

func (c *HelloController) Fail() (string, error) { return "", stderrors.New("boom") }

func (c *HelloController) Panic() string { panic("kaboom") }

func (c *HelloController) Nothing() {}

func (c *HelloController) Status() error { return nil }

func (c *HelloController) Count() int { return c.calls }

func catalog() *Catalog {
	return NewCatalog().
		Provide("web.controller.HelloController", Zero[HelloController]()).
		Provide("web.service.EnglishService", Constructor(func() *EnglishService {
			return &EnglishService{greeting: "hello"}
		})).
		Provide("web.service.FrenchService", Constructor(func() FrenchService {
			return FrenchService{}
		})).
		Interface("web.service.Greeter", InterfaceOf[Greeter]())
}

func marker(kind annotations.AnnotationType, value string) *annotations.Marker {
	return &annotations.Marker{Type: kind, Value: value, Parameters: map[string]string{}}
}

func component(qualifiedName string, kind annotations.AnnotationType, fields ...models.FieldDescriptor) *models.TypeDescriptor {
	name := qualifiedName
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			name = name[i+1:]
			break
		}
	}
	return &models.TypeDescriptor{
		QualifiedName: qualifiedName,
		Name:          name,
		Kind:          models.KindStruct,
		Markers:       []*annotations.Marker{marker(kind, "")},
		Fields:        fields,
	}
}

func injected(field, target string) models.FieldDescriptor {
	return models.FieldDescriptor{
		Name:      field,
		Autowired: marker(annotations.AutowiredAnnotation, target),
	}
}
