// Package generator writes the catalog file that maps scanned type names to
// constructors, the piece of the container Go cannot derive at runtime.
package generator

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/models"
	"github.com/toyz/handspring/internal/utils"
)

// RuntimeImport is the import path of the runtime package
const RuntimeImport = "github.com/toyz/handspring/pkg/handspring"

// Options configures the generated file
type Options struct {
	// Package is the package clause of the output, "main" when empty
	Package string
	// ModulePath is the import path of the scanned root directory
	ModulePath string
	// Namespace is the scanned namespace, used in the doc comment only
	Namespace string
	// Dir is the output directory relative to the scanned root, "." when
	// empty. Types declared there are referenced without an import.
	Dir string
	// FileName is used when formatting, GeneratedFileName when empty
	FileName string
}

type providerEntry struct {
	QualifiedName string
	Expr          string
}

type interfaceEntry struct {
	QualifiedName string
	Type          string
}

type fileData struct {
	Package    string
	Namespace  string
	Runtime    string
	Imports    []Import
	Providers  []providerEntry
	Interfaces []interfaceEntry
}

var catalogTemplate = template.Must(template.New("catalog").Parse(`// Code generated by handspring gen. DO NOT EDIT.

package {{.Package}}

import (
	{{.Runtime}} "` + RuntimeImport + `"
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)

// Catalog maps every component and capability found under '{{.Namespace}}'
// to its provider.
func Catalog() *{{.Runtime}}.Catalog {
	return {{.Runtime}}.NewCatalog(){{range .Providers}}.
		Provide("{{.QualifiedName}}", {{.Expr}}){{end}}{{range .Interfaces}}.
		Interface("{{.QualifiedName}}", {{$.Runtime}}.InterfaceOf[{{.Type}}]()){{end}}
}
`))

// Generator renders catalog files
type Generator struct {
	opts     Options
	problems []error
}

// New creates a generator
func New(opts Options) *Generator {
	if opts.Package == "" {
		opts.Package = "main"
	}
	opts.Dir = path.Clean(filepath.ToSlash(opts.Dir))
	if opts.FileName == "" {
		opts.FileName = utils.GeneratedFileName
	}
	return &Generator{opts: opts}
}

// Generate renders the catalog for descs. Types that cannot be referenced
// from the generated package are skipped and reported through Problems.
func (g *Generator) Generate(descs []*models.TypeDescriptor) ([]byte, error) {
	g.problems = nil
	if err := utils.IsValidGoIdentifier("package")(g.opts.Package); err != nil {
		return nil, errors.WrapGenerateError("catalog", err)
	}

	imports := NewImportManager("handspring")
	data := fileData{
		Package:   g.opts.Package,
		Namespace: g.opts.Namespace,
		Runtime:   "handspring",
	}

	for _, desc := range descs {
		switch {
		case desc.IsComponent():
			if !g.referable(desc) {
				continue
			}
			typ := g.typeExpr(desc, imports)
			data.Providers = append(data.Providers, providerEntry{
				QualifiedName: desc.QualifiedName,
				Expr:          providerExpr(desc, typ),
			})
		case desc.Kind == models.KindInterface && desc.MethodCount > 0:
			if desc.Generic || g.foreignMain(desc) || (!desc.Exported && !g.local(desc)) {
				continue
			}
			data.Interfaces = append(data.Interfaces, interfaceEntry{
				QualifiedName: desc.QualifiedName,
				Type:          g.typeExpr(desc, imports),
			})
		}
	}
	data.Imports = imports.Imports()

	var buf bytes.Buffer
	if err := catalogTemplate.Execute(&buf, data); err != nil {
		return nil, errors.WrapGenerateError("catalog", err)
	}

	out, err := utils.FormatGoCode(g.opts.FileName, buf.Bytes())
	if err != nil {
		return nil, errors.WrapGenerateError("catalog", err)
	}
	return out, nil
}

// Problems returns the types skipped by the last Generate
func (g *Generator) Problems() []error {
	return append([]error(nil), g.problems...)
}

// Generate renders a catalog with a one-off generator
func Generate(descs []*models.TypeDescriptor, opts Options) ([]byte, error) {
	return New(opts).Generate(descs)
}

func (g *Generator) referable(desc *models.TypeDescriptor) bool {
	var reason string
	switch {
	case desc.Generic:
		reason = "generic types cannot be instantiated by name"
	case !desc.Exported && !g.local(desc):
		reason = "type is not exported"
	case g.foreignMain(desc):
		reason = "package main cannot be imported"
	}
	if reason == "" {
		return true
	}
	g.problems = append(g.problems, errors.WrapGenerateError(desc.QualifiedName, fmt.Errorf("%s", reason)).
		WithLocation(errors.SourceLocation{File: desc.File, Line: desc.Line}))
	return false
}

// local reports whether desc lives in the directory of the generated file
func (g *Generator) local(desc *models.TypeDescriptor) bool {
	return path.Clean(filepath.ToSlash(desc.Dir)) == g.opts.Dir
}

func (g *Generator) foreignMain(desc *models.TypeDescriptor) bool {
	return desc.Package == "main" && !g.local(desc)
}

func (g *Generator) typeExpr(desc *models.TypeDescriptor, imports *ImportManager) string {
	if g.local(desc) {
		return desc.Name
	}
	alias := imports.Alias(utils.JoinImportPath(g.opts.ModulePath, desc.Dir))
	return alias + "." + desc.Name
}

func providerExpr(desc *models.TypeDescriptor, typ string) string {
	if desc.Constructor == "" {
		return fmt.Sprintf("handspring.Zero[%s]()", typ)
	}

	ctor := desc.Constructor
	if i := strings.LastIndex(typ, "."); i >= 0 {
		ctor = typ[:i+1] + ctor
	}
	if desc.ConstructorErr {
		return fmt.Sprintf("handspring.ConstructorErr(%s)", ctor)
	}
	return fmt.Sprintf("handspring.Constructor(%s)", ctor)
}
