package models

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/handspring/internal/annotations"
)

// Kind classifies a discovered type declaration
type Kind int

const (
	KindOther Kind = iota
	KindStruct
	KindInterface
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	default:
		return "other"
	}
}

// SourceTrait records where a declaration was found
type SourceTrait struct {
	File string // path inside the scanned file system
	Line int    // 1-based line of the declaration
}

// Position returns file:line
func (s SourceTrait) Position() string {
	if s.Line == 0 {
		return s.File
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// FieldDescriptor describes one struct field
type FieldDescriptor struct {
	Name      string              // field identifier, the type name for embedded fields
	Type      string              // source type expression, e.g. "service.IService"
	Exported  bool                // whether the field identifier is exported
	Autowired *annotations.Marker // injection marker, nil when the field is not injected
	// Tagged is set when the injection comes from an `autowired:"..."` struct tag
	Tagged bool
	SourceTrait
}

// IsInjected reports whether the field is an injection point
func (f FieldDescriptor) IsInjected() bool {
	return f.Autowired != nil
}

// TargetName is the bean name the field is resolved against
func (f FieldDescriptor) TargetName() string {
	if n := f.Autowired.Name(); n != "" {
		return n
	}
	return f.Name
}

// MethodDescriptor describes one method declared on the type
type MethodDescriptor struct {
	Name        string
	Exported    bool
	PtrReceiver bool
	Params      int                 // number of declared parameters
	Results     int                 // number of declared results
	Mapping     *annotations.Marker // route marker, nil when the method is not routed
	SourceTrait
}

// IsRoute reports whether the method carries a route marker
func (m MethodDescriptor) IsRoute() bool {
	return m.Mapping != nil
}

// TypeDescriptor identifies a discovered type by qualified name and carries
// the markers attached to it and to its fields and methods. Immutable once
// scanned.
type TypeDescriptor struct {
	QualifiedName string // <namespace>.<TypeName>
	Namespace     string // dotted namespace, e.g. web.controller
	Dir           string // directory inside the scanned file system
	Package       string // Go package clause
	Name          string // simple type name
	Kind          Kind
	Exported      bool
	Generic       bool // declared with type parameters
	Markers       []*annotations.Marker
	Fields        []FieldDescriptor
	Methods       []MethodDescriptor
	MethodCount   int    // declared methods of an interface
	Constructor   string // zero-argument New<Name> function, empty when absent
	// ConstructorErr is set when the constructor returns (T, error)
	ConstructorErr bool
	SourceTrait
}

// Marker returns the first type-level marker of the given kind
func (t *TypeDescriptor) Marker(kind annotations.AnnotationType) *annotations.Marker {
	for _, m := range t.Markers {
		if m.Type == kind {
			return m
		}
	}
	return nil
}

// IsController reports whether the type is a handler component
func (t *TypeDescriptor) IsController() bool {
	return t.Marker(annotations.ControllerAnnotation) != nil
}

// IsService reports whether the type is a service component
func (t *TypeDescriptor) IsService() bool {
	return t.Marker(annotations.ServiceAnnotation) != nil
}

// IsComponent reports whether the container should instantiate the type
func (t *TypeDescriptor) IsComponent() bool {
	return t.IsController() || t.IsService()
}

// BasePath returns the type-level mapping path, empty when absent
func (t *TypeDescriptor) BasePath() string {
	return t.Marker(annotations.MappingAnnotation).Path()
}

// BeanName is the registration name: the explicit service name when given,
// otherwise the simple name with its first character lower-cased.
func (t *TypeDescriptor) BeanName() string {
	if n := t.Marker(annotations.ServiceAnnotation).Name(); n != "" {
		return n
	}
	return DeriveBeanName(t.Name)
}

// InjectionPoints returns the fields marked for injection
func (t *TypeDescriptor) InjectionPoints() []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range t.Fields {
		if f.IsInjected() {
			out = append(out, f)
		}
	}
	return out
}

// Routes returns the methods carrying a route marker
func (t *TypeDescriptor) Routes() []MethodDescriptor {
	var out []MethodDescriptor
	for _, m := range t.Methods {
		if m.IsRoute() {
			out = append(out, m)
		}
	}
	return out
}

// DeriveBeanName lower-cases the first character of a simple type name
func DeriveBeanName(simpleName string) string {
	r, size := utf8.DecodeRuneInString(simpleName)
	if r == utf8.RuneError {
		return simpleName
	}
	return string(unicode.ToLower(r)) + simpleName[size:]
}

// QualifiedName joins a dotted namespace and a simple type name
func QualifiedName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// NamespaceDir maps a dotted namespace to its slash-separated directory
func NamespaceDir(namespace string) string {
	if namespace == "" {
		return "."
	}
	return strings.ReplaceAll(namespace, ".", "/")
}
