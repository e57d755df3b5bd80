package scanner

import (
	stderrors "errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/handspring/internal/annotations"
	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/models"
)

const indexController = `package controller

import "example.com/hello/web/service"

// IndexController serves /index.
//
//hand::controller
//hand::mapping index
type IndexController struct {
	//hand::autowired indexService
	iService service.IService

	Repo  service.IService ` + "`autowired:\"\"`" + `
	cache map[string]int
}

//hand::mapping /getName
func (c *IndexController) GetName() string {
	return c.iService.GetName()
}

func (c *IndexController) helper() {}
`

const iservice = `package service

type IService interface {
	GetName() string
}

type Marker interface{}
`

const indexService = `package service

//hand::service indexService
type IndexService struct{}

func NewIndexService() (*IndexService, error) { return &IndexService{}, nil }

func (s *IndexService) GetName() string { return "index" }
`

func fixture() fstest.MapFS {
	return fstest.MapFS{
		"web/controller/index_controller.go": {Data: []byte(indexController)},
		"web/service/iservice.go":            {Data: []byte(iservice)},
		"web/service/index_service.go":       {Data: []byte(indexService)},
		"web/service/index_service_test.go":  {Data: []byte("package service\n\ntype ShouldNotAppear struct{}\n")},
		"web/service/autogen_catalog.go":     {Data: []byte("package service\n\ntype Generated struct{}\n")},
		"web/README.md":                      {Data: []byte("# not go")},
		"web/.hidden/skip.go":                {Data: []byte("package hidden\n\ntype Hidden struct{}\n")},
		"application.yaml":                   {Data: []byte("scan-package: web\n")},
	}
}

func names(r *Result) []string {
	var out []string
	for _, t := range r.Types {
		out = append(out, t.QualifiedName)
	}
	return out
}

func TestScan_DiscoversTypesRecursively(t *testing.T) {
	result, err := Scan(fixture(), "web")
	require.NoError(t, err)
	assert.Empty(t, result.Problems)

	assert.ElementsMatch(t, []string{
		"web.controller.IndexController",
		"web.service.IService",
		"web.service.Marker",
		"web.service.IndexService",
	}, names(result))
}

func TestScan_Subnamespace(t *testing.T) {
	result, err := Scan(fixture(), "web.service")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"web.service.IService",
		"web.service.Marker",
		"web.service.IndexService",
	}, names(result))
}

func TestScan_ControllerDescriptor(t *testing.T) {
	result, err := Scan(fixture(), "web")
	require.NoError(t, err)

	td, ok := result.Lookup("web.controller.IndexController")
	require.True(t, ok)

	assert.Equal(t, models.KindStruct, td.Kind)
	assert.Equal(t, "controller", td.Package)
	assert.Equal(t, "web/controller", td.Dir)
	assert.True(t, td.IsController())
	assert.Equal(t, "index", td.BasePath())
	assert.Equal(t, "indexController", td.BeanName())
	assert.Equal(t, "web/controller/index_controller.go", td.File)

	points := td.InjectionPoints()
	require.Len(t, points, 2)
	assert.Equal(t, "iService", points[0].Name)
	assert.Equal(t, "service.IService", points[0].Type)
	assert.Equal(t, "indexService", points[0].TargetName())
	assert.False(t, points[0].Tagged)
	assert.Equal(t, "Repo", points[1].TargetName())
	assert.True(t, points[1].Tagged)

	routes := td.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "GetName", routes[0].Name)
	assert.Equal(t, "/getName", routes[0].Mapping.Path())
	assert.True(t, routes[0].PtrReceiver)
	assert.Equal(t, 0, routes[0].Params)
	assert.Equal(t, 1, routes[0].Results)
	assert.Len(t, td.Methods, 2)
}

func TestScan_ServiceAndInterfaces(t *testing.T) {
	result, err := Scan(fixture(), "web")
	require.NoError(t, err)

	svc, ok := result.Lookup("web.service.IndexService")
	require.True(t, ok)
	assert.True(t, svc.IsService())
	assert.Equal(t, "indexService", svc.BeanName())
	assert.Equal(t, "NewIndexService", svc.Constructor)
	assert.True(t, svc.ConstructorErr)

	iface, ok := result.Lookup("web.service.IService")
	require.True(t, ok)
	assert.Equal(t, models.KindInterface, iface.Kind)
	assert.Equal(t, 1, iface.MethodCount)

	ifaces := result.Interfaces()
	require.Len(t, ifaces, 1)
	assert.Equal(t, "IService", ifaces[0].Name)

	assert.Len(t, result.Components(), 2)
}

func TestScan_ConstructorMustBuildItsType(t *testing.T) {
	fsys := fstest.MapFS{
		"app/svc.go": &fstest.MapFile{Data: []byte(`package app

//hand::service
type Foo struct{}

//hand::service
type Bar struct{}

//hand::service
type Baz struct{}

//hand::service
type Qux struct{}

func NewFoo() *Bar { return &Bar{} }

func NewBar() error { return nil }

func NewBaz() Baz { return Baz{} }

func NewQux() (q *Qux, err error) { return &Qux{}, nil }
`)},
	}

	result, err := Scan(fsys, "app")
	require.NoError(t, err)

	tests := []struct {
		qualifiedName string
		constructor   string
		withErr       bool
	}{
		{"app.Foo", "", false},
		{"app.Bar", "", false},
		{"app.Baz", "NewBaz", false},
		{"app.Qux", "NewQux", true},
	}

	for _, tt := range tests {
		t.Run(tt.qualifiedName, func(t *testing.T) {
			td, ok := result.Lookup(tt.qualifiedName)
			require.True(t, ok)
			assert.Equal(t, tt.constructor, td.Constructor)
			assert.Equal(t, tt.withErr, td.ConstructorErr)
		})
	}
}

func TestScan_MissingNamespaceIsFatal(t *testing.T) {
	_, err := Scan(fixture(), "web.missing")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrScanPath))
	assert.True(t, errors.CodeOf(err).IsFatal())

	_, err = Scan(fstest.MapFS{"app": {Data: []byte("x")}}, "app")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrScanPath))
	assert.Contains(t, err.Error(), "does not resolve")
}

func TestScan_ReportsBrokenEntriesAndContinues(t *testing.T) {
	fsys := fixture()
	fsys["web/broken/bad.go"] = &fstest.MapFile{Data: []byte("package broken\n\nfunc {")}
	fsys["web/broken/ok.go"] = &fstest.MapFile{Data: []byte("package broken\n\ntype Fine struct{}\n")}

	result, err := Scan(fsys, "web")
	require.NoError(t, err)

	require.Len(t, result.Problems, 1)
	assert.True(t, stderrors.Is(result.Problems[0], errors.ErrScanEntry))
	assert.Contains(t, result.Problems[0].Error(), "web/broken/bad.go")
	assert.Contains(t, names(result), "web.broken.Fine")
}

func TestScan_ReportsMalformedMarkers(t *testing.T) {
	fsys := fstest.MapFS{
		"app/bad.go": {Data: []byte(`package app

//hand::controller
//hand::mapping
type Bad struct{}

//hand::service
type NotAStruct interface{ Do() }

//hand::mapping /x /y
func (b *Bad) Two() {}
`)},
	}

	result, err := Scan(fsys, "app")
	require.NoError(t, err)
	require.Len(t, result.Problems, 3)
	for _, p := range result.Problems {
		assert.True(t, stderrors.Is(p, errors.ErrAnnotationSyntax), p.Error())
	}

	bad, ok := result.Lookup("app.Bad")
	require.True(t, ok)
	assert.True(t, bad.IsController())
	assert.Equal(t, "", bad.BasePath())
	assert.Empty(t, bad.Routes())

	iface, ok := result.Lookup("app.NotAStruct")
	require.True(t, ok)
	assert.False(t, iface.IsService())
	assert.Nil(t, iface.Marker(annotations.ServiceAnnotation))
}

func TestScan_RootNamespace(t *testing.T) {
	fsys := fstest.MapFS{
		"main.go": {Data: []byte("package main\n\n//hand::controller\ntype Root struct{}\n")},
	}
	result, err := Scan(fsys, "")
	require.NoError(t, err)
	require.Len(t, result.Types, 1)
	assert.Equal(t, "Root", result.Types[0].QualifiedName)
	assert.Equal(t, "root", result.Types[0].BeanName())
}

func TestGetTypeString(t *testing.T) {
	fsys := fstest.MapFS{
		"t/t.go": {Data: []byte(`package t

type All struct {
	A *pkg.Thing
	B []string
	C map[string][]*int
	D chan<- error
	E [4]byte
	F interface{}
	G func()
	List[int]
}
`)},
	}
	result, err := Scan(fsys, "t")
	require.NoError(t, err)
	require.Len(t, result.Types, 1)

	var got []string
	for _, f := range result.Types[0].Fields {
		got = append(got, f.Name+" "+f.Type)
	}
	assert.Equal(t, []string{
		"A *pkg.Thing",
		"B []string",
		"C map[string][]*int",
		"D chan<- error",
		"E [4]byte",
		"F interface{}",
		"G func(...)",
		"List List[int]",
	}, got)
}
