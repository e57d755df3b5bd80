package annotations

import (
	"fmt"
	"strings"
)

// Prefix introduces every marker comment
const Prefix = "hand::"

// AnnotationType represents the kind of a //hand:: marker
type AnnotationType int

const (
	ControllerAnnotation AnnotationType = iota
	ServiceAnnotation
	MappingAnnotation
	AutowiredAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case ControllerAnnotation:
		return "controller"
	case ServiceAnnotation:
		return "service"
	case MappingAnnotation:
		return "mapping"
	case AutowiredAnnotation:
		return "autowired"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "controller":
		return ControllerAnnotation, nil
	case "service":
		return ServiceAnnotation, nil
	case "mapping":
		return MappingAnnotation, nil
	case "autowired":
		return AutowiredAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// Target is where a marker may be placed
type Target int

const (
	TypeTarget Target = 1 << iota
	MethodTarget
	FieldTarget
)

// String returns the string representation of the target
func (t Target) String() string {
	var parts []string
	if t&TypeTarget != 0 {
		parts = append(parts, "type")
	}
	if t&MethodTarget != 0 {
		parts = append(parts, "method")
	}
	if t&FieldTarget != 0 {
		parts = append(parts, "field")
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, "|")
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// Marker is a parsed and schema-checked //hand:: comment
type Marker struct {
	Type       AnnotationType
	Value      string            // positional argument, empty when absent
	Parameters map[string]string // -Key=Value parameters
	Location   SourceLocation
	Raw        string
}

// Name returns the explicit bean name carried by the marker, either as the
// positional argument or as -Name. The parameter wins when both are given.
func (m *Marker) Name() string {
	if m == nil {
		return ""
	}
	if n, ok := m.Parameters["Name"]; ok && n != "" {
		return n
	}
	return m.Value
}

// Path returns the mapping path of a mapping marker
func (m *Marker) Path() string {
	if m == nil || m.Type != MappingAnnotation {
		return ""
	}
	return m.Value
}

// IsMarker reports whether a raw comment line is a //hand:: marker
func IsMarker(comment string) bool {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(text, "//")), Prefix)
}

// ParameterSpec defines the specification for a -Key=Value parameter
type ParameterSpec struct {
	Required    bool
	Description string
	Validator   func(string) error
}

// AnnotationSchema defines the complete schema for an annotation type
type AnnotationSchema struct {
	Type          AnnotationType
	Description   string
	Targets       Target
	MinPositional int
	MaxPositional int
	Positional    func(string) error
	Parameters    map[string]ParameterSpec
	Examples      []string
}
