// Package scanner discovers types and their //hand:: markers in Go source
// held by an fs.FS.
package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"reflect"
	"strconv"
	"strings"

	"github.com/toyz/handspring/internal/annotations"
	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/models"
	"github.com/toyz/handspring/internal/utils"
)

// TagKey is the struct tag that marks a field for injection
const TagKey = "autowired"

// Result is the outcome of a scan
type Result struct {
	// Types in discovery order. Consumers must not depend on the order.
	Types []*models.TypeDescriptor
	// Problems are the recoverable entry and marker errors met on the way
	Problems []error
}

// Components returns the types carrying a controller or service marker
func (r *Result) Components() []*models.TypeDescriptor {
	var out []*models.TypeDescriptor
	for _, t := range r.Types {
		if t.IsComponent() {
			out = append(out, t)
		}
	}
	return out
}

// Interfaces returns the interface types declaring at least one method
func (r *Result) Interfaces() []*models.TypeDescriptor {
	var out []*models.TypeDescriptor
	for _, t := range r.Types {
		if t.Kind == models.KindInterface && t.MethodCount > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the descriptor with the given qualified name
func (r *Result) Lookup(qualifiedName string) (*models.TypeDescriptor, bool) {
	for _, t := range r.Types {
		if t.QualifiedName == qualifiedName {
			return t, true
		}
	}
	return nil, false
}

// Scanner walks namespaces and builds type descriptors
type Scanner struct {
	markers *annotations.ParticipleParser
	fset    *token.FileSet
}

// New creates a scanner using the built-in marker schemas
func New() *Scanner {
	return &Scanner{
		markers: annotations.NewDefaultParser(),
		fset:    token.NewFileSet(),
	}
}

// Scan walks basePackage in fsys with a fresh scanner
func Scan(fsys fs.FS, basePackage string) (*Result, error) {
	return New().Scan(fsys, basePackage)
}

// Scan maps the dotted basePackage onto a directory of fsys and descends it
// recursively. A namespace that does not resolve to a directory is fatal;
// unreadable directories, unparsable files and malformed markers are
// collected in Result.Problems.
func (s *Scanner) Scan(fsys fs.FS, basePackage string) (*Result, error) {
	namespace := strings.Trim(strings.TrimSpace(basePackage), ".")
	dir := models.NamespaceDir(namespace)

	if !fs.ValidPath(dir) {
		return nil, errors.ScanPath(basePackage, dir, fs.ErrInvalid)
	}

	info, err := fs.Stat(fsys, dir)
	if err != nil {
		return nil, errors.ScanPath(basePackage, dir, err)
	}
	if !info.IsDir() {
		return nil, errors.ScanPath(basePackage, dir, fs.ErrInvalid).
			WithSuggestion("scan-package must name a directory, not a file")
	}

	result := &Result{}
	s.walk(fsys, dir, namespace, result)
	return result, nil
}

// dirUnit collects the declarations of one directory before methods and
// constructors are attached to their types.
type dirUnit struct {
	types   []*models.TypeDescriptor
	byName  map[string]*models.TypeDescriptor
	methods map[string][]models.MethodDescriptor
	ctors   map[string]ctor
}

// ctor is a parameterless New<T> function
type ctor struct {
	result  string // first result as written, e.g. "*IndexService"
	withErr bool
}

// builds reports whether c returns name or *name
func (c ctor) builds(name string) bool {
	return c.result == name || c.result == "*"+name
}

func (s *Scanner) walk(fsys fs.FS, dir, namespace string, result *Result) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		result.Problems = append(result.Problems, errors.ScanEntry(dir, err))
		if len(entries) == 0 {
			return
		}
	}

	unit := &dirUnit{
		byName:  make(map[string]*models.TypeDescriptor),
		methods: make(map[string][]models.MethodDescriptor),
		ctors:   make(map[string]ctor),
	}

	var subdirs []fs.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			if !utils.SkipDirectory(entry.Name()) {
				subdirs = append(subdirs, entry)
			}
			continue
		}
		if !utils.IsSourceFile(entry.Name()) {
			continue
		}
		s.scanFile(fsys, path.Join(dir, entry.Name()), dir, namespace, unit, result)
	}

	for _, td := range unit.types {
		td.Methods = unit.methods[td.Name]
		if c, ok := unit.ctors["New"+td.Name]; ok && td.Kind == models.KindStruct && c.builds(td.Name) {
			td.Constructor = "New" + td.Name
			td.ConstructorErr = c.withErr
		}
		result.Types = append(result.Types, td)
	}

	for _, sub := range subdirs {
		s.walk(fsys, path.Join(dir, sub.Name()), models.QualifiedName(namespace, sub.Name()), result)
	}
}

func (s *Scanner) scanFile(fsys fs.FS, file, dir, namespace string, unit *dirUnit, result *Result) {
	src, err := fs.ReadFile(fsys, file)
	if err != nil {
		result.Problems = append(result.Problems, errors.ScanEntry(file, err))
		return
	}

	parsed, err := parser.ParseFile(s.fset, file, src, parser.ParseComments)
	if err != nil {
		result.Problems = append(result.Problems, errors.ScanEntry(file, err))
		return
	}

	for _, decl := range parsed.Decls {
		switch node := decl.(type) {
		case *ast.GenDecl:
			if node.Tok != token.TYPE {
				continue
			}
			for _, spec := range node.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil && len(node.Specs) == 1 {
					doc = node.Doc
				}
				td := s.describeType(typeSpec, doc, file, dir, namespace, parsed.Name.Name, result)
				unit.types = append(unit.types, td)
				unit.byName[td.Name] = td
			}
		case *ast.FuncDecl:
			if node.Recv == nil {
				s.recordConstructor(node, unit)
				continue
			}
			recv, ptr := receiverName(node.Recv)
			if recv == "" {
				continue
			}
			unit.methods[recv] = append(unit.methods[recv], s.describeMethod(node, ptr, file, result))
		}
	}
}

func (s *Scanner) describeType(spec *ast.TypeSpec, doc *ast.CommentGroup, file, dir, namespace, pkg string, result *Result) *models.TypeDescriptor {
	td := &models.TypeDescriptor{
		QualifiedName: models.QualifiedName(namespace, spec.Name.Name),
		Namespace:     namespace,
		Dir:           dir,
		Package:       pkg,
		Name:          spec.Name.Name,
		Exported:      spec.Name.IsExported(),
		Generic:       spec.TypeParams != nil && len(spec.TypeParams.List) > 0,
		SourceTrait:   s.source(file, spec.Pos()),
	}

	switch t := spec.Type.(type) {
	case *ast.StructType:
		if spec.Assign == 0 {
			td.Kind = models.KindStruct
			td.Fields = s.describeFields(t, file, result)
		}
	case *ast.InterfaceType:
		td.Kind = models.KindInterface
		if t.Methods != nil {
			for _, m := range t.Methods.List {
				if _, isFunc := m.Type.(*ast.FuncType); isFunc {
					td.MethodCount += len(m.Names)
				} else {
					// embedded interface or type constraint
					td.MethodCount++
				}
			}
		}
	}

	td.Markers = s.parseMarkers(doc, file, annotations.TypeTarget, result)

	if td.IsComponent() && td.Kind != models.KindStruct {
		raw := td.Marker(annotations.ControllerAnnotation)
		if raw == nil {
			raw = td.Marker(annotations.ServiceAnnotation)
		}
		loc := errors.SourceLocation{File: file, Line: td.Line}
		result.Problems = append(result.Problems, errors.AnnotationSyntax(loc, raw.Raw,
			fmt.Errorf("%s is a %s, component markers require a struct type", td.Name, td.Kind)))
		td.Markers = dropComponentMarkers(td.Markers)
	}

	return td
}

func (s *Scanner) describeFields(st *ast.StructType, file string, result *Result) []models.FieldDescriptor {
	var fields []models.FieldDescriptor
	if st.Fields == nil {
		return fields
	}

	for _, field := range st.Fields.List {
		typeName := getTypeString(field.Type)

		var marker *annotations.Marker
		if ms := s.parseMarkers(field.Doc, file, annotations.FieldTarget, result); len(ms) > 0 {
			marker = ms[0]
		}
		if ms := s.parseMarkers(field.Comment, file, annotations.FieldTarget, result); marker == nil && len(ms) > 0 {
			marker = ms[0]
		}

		tagged := false
		if marker == nil && field.Tag != nil {
			if name, ok := lookupTag(field.Tag.Value); ok {
				marker = &annotations.Marker{
					Type:       annotations.AutowiredAnnotation,
					Value:      name,
					Parameters: map[string]string{},
					Location:   annotations.SourceLocation{File: file, Line: s.fset.Position(field.Pos()).Line},
					Raw:        field.Tag.Value,
				}
				tagged = true
			}
		}

		names := field.Names
		if len(names) == 0 {
			// embedded field, named after its type
			names = []*ast.Ident{ast.NewIdent(embeddedName(field.Type))}
		}
		for _, name := range names {
			fields = append(fields, models.FieldDescriptor{
				Name:        name.Name,
				Type:        typeName,
				Exported:    ast.IsExported(name.Name),
				Autowired:   marker,
				Tagged:      tagged,
				SourceTrait: s.source(file, field.Pos()),
			})
		}
	}

	return fields
}

func (s *Scanner) describeMethod(fn *ast.FuncDecl, ptr bool, file string, result *Result) models.MethodDescriptor {
	md := models.MethodDescriptor{
		Name:        fn.Name.Name,
		Exported:    fn.Name.IsExported(),
		PtrReceiver: ptr,
		Params:      countFields(fn.Type.Params),
		Results:     countFields(fn.Type.Results),
		SourceTrait: s.source(file, fn.Pos()),
	}
	if ms := s.parseMarkers(fn.Doc, file, annotations.MethodTarget, result); len(ms) > 0 {
		md.Mapping = ms[0]
	}
	return md
}

func (s *Scanner) recordConstructor(fn *ast.FuncDecl, unit *dirUnit) {
	name := fn.Name.Name
	if !strings.HasPrefix(name, "New") || fn.Type.TypeParams != nil {
		return
	}
	if countFields(fn.Type.Params) != 0 {
		return
	}
	var types []string
	if fn.Type.Results != nil {
		for _, field := range fn.Type.Results.List {
			typ := getTypeString(field.Type)
			for i := 0; i < max(len(field.Names), 1); i++ {
				types = append(types, typ)
			}
		}
	}
	switch {
	case len(types) == 1:
		unit.ctors[name] = ctor{result: types[0]}
	case len(types) == 2 && types[1] == "error":
		unit.ctors[name] = ctor{result: types[0], withErr: true}
	}
}

// parseMarkers parses every //hand:: line of a comment group. Malformed
// markers are reported and dropped.
func (s *Scanner) parseMarkers(doc *ast.CommentGroup, file string, target annotations.Target, result *Result) []*annotations.Marker {
	if doc == nil {
		return nil
	}

	var markers []*annotations.Marker
	for _, c := range doc.List {
		if !annotations.IsMarker(c.Text) {
			continue
		}
		pos := s.fset.Position(c.Pos())
		loc := annotations.SourceLocation{File: file, Line: pos.Line, Column: pos.Column}
		marker, err := s.markers.Parse(c.Text, loc, target)
		if err != nil {
			result.Problems = append(result.Problems, err)
			continue
		}
		markers = append(markers, marker)
	}
	return markers
}

func (s *Scanner) source(file string, pos token.Pos) models.SourceTrait {
	return models.SourceTrait{File: file, Line: s.fset.Position(pos).Line}
}

func dropComponentMarkers(markers []*annotations.Marker) []*annotations.Marker {
	var out []*annotations.Marker
	for _, m := range markers {
		if m.Type != annotations.ControllerAnnotation && m.Type != annotations.ServiceAnnotation {
			out = append(out, m)
		}
	}
	return out
}

// lookupTag reads the autowired key from a raw struct tag literal
func lookupTag(raw string) (string, bool) {
	tag, err := strconv.Unquote(raw)
	if err != nil {
		return "", false
	}
	return reflect.StructTag(tag).Lookup(TagKey)
}

func receiverName(recv *ast.FieldList) (string, bool) {
	if recv == nil || len(recv.List) == 0 {
		return "", false
	}
	expr := recv.List[0].Type
	ptr := false
	if star, ok := expr.(*ast.StarExpr); ok {
		ptr = true
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, ptr
	case *ast.IndexExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name, ptr
		}
	case *ast.IndexListExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name, ptr
		}
	}
	return "", ptr
}

func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	default:
		return getTypeString(expr)
	}
}

func countFields(list *ast.FieldList) int {
	if list == nil {
		return 0
	}
	n := 0
	for _, f := range list.List {
		if len(f.Names) == 0 {
			n++
		} else {
			n += len(f.Names)
		}
	}
	return n
}

// getTypeString renders a type expression the way it is written in source
func getTypeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + getTypeString(t.X)
	case *ast.SelectorExpr:
		return getTypeString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + getTypeString(t.Elt)
		}
		return "[" + getTypeString(t.Len) + "]" + getTypeString(t.Elt)
	case *ast.BasicLit:
		return t.Value
	case *ast.Ellipsis:
		return "..." + getTypeString(t.Elt)
	case *ast.MapType:
		return "map[" + getTypeString(t.Key) + "]" + getTypeString(t.Value)
	case *ast.IndexExpr:
		return getTypeString(t.X) + "[" + getTypeString(t.Index) + "]"
	case *ast.IndexListExpr:
		parts := make([]string, len(t.Indices))
		for i, idx := range t.Indices {
			parts[i] = getTypeString(idx)
		}
		return getTypeString(t.X) + "[" + strings.Join(parts, ", ") + "]"
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return "interface{}"
		}
		return "interface{...}"
	case *ast.StructType:
		return "struct{...}"
	case *ast.FuncType:
		return "func(...)"
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return "chan<- " + getTypeString(t.Value)
		case ast.RECV:
			return "<-chan " + getTypeString(t.Value)
		default:
			return "chan " + getTypeString(t.Value)
		}
	case *ast.ParenExpr:
		return "(" + getTypeString(t.X) + ")"
	default:
		return "unknown"
	}
}
