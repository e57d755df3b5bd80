package annotations

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/handspring/internal/errors"
)

func TestParticipleParser_ValidMarkers(t *testing.T) {
	parser := NewDefaultParser()
	location := SourceLocation{File: "web/controller/index_controller.go", Line: 7}

	tests := []struct {
		name       string
		input      string
		target     Target
		wantType   AnnotationType
		wantValue  string
		wantParams map[string]string
		wantName   string
	}{
		{
			name:       "controller",
			input:      "//hand::controller",
			target:     TypeTarget,
			wantType:   ControllerAnnotation,
			wantParams: map[string]string{},
		},
		{
			name:       "service without name",
			input:      "//hand::service",
			target:     TypeTarget,
			wantType:   ServiceAnnotation,
			wantParams: map[string]string{},
		},
		{
			name:       "service positional name",
			input:      "//hand::service indexService",
			target:     TypeTarget,
			wantType:   ServiceAnnotation,
			wantValue:  "indexService",
			wantParams: map[string]string{},
			wantName:   "indexService",
		},
		{
			name:       "service named parameter",
			input:      "//hand::service -Name=indexService",
			target:     TypeTarget,
			wantType:   ServiceAnnotation,
			wantParams: map[string]string{"Name": "indexService"},
			wantName:   "indexService",
		},
		{
			name:       "space after slashes",
			input:      "// hand::controller",
			target:     TypeTarget,
			wantType:   ControllerAnnotation,
			wantParams: map[string]string{},
		},
		{
			name:       "type mapping",
			input:      "//hand::mapping index",
			target:     TypeTarget,
			wantType:   MappingAnnotation,
			wantValue:  "index",
			wantParams: map[string]string{},
		},
		{
			name:       "method mapping with dash",
			input:      "//hand::mapping /get-name",
			target:     MethodTarget,
			wantType:   MappingAnnotation,
			wantValue:  "/get-name",
			wantParams: map[string]string{},
		},
		{
			name:       "quoted mapping",
			input:      `//hand::mapping "/api/v1"`,
			target:     TypeTarget,
			wantType:   MappingAnnotation,
			wantValue:  "/api/v1",
			wantParams: map[string]string{},
		},
		{
			name:       "autowired with name",
			input:      "//hand::autowired indexService",
			target:     FieldTarget,
			wantType:   AutowiredAnnotation,
			wantValue:  "indexService",
			wantParams: map[string]string{},
			wantName:   "indexService",
		},
		{
			name:       "autowired bare",
			input:      "  //hand::autowired  ",
			target:     FieldTarget,
			wantType:   AutowiredAnnotation,
			wantParams: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker, err := parser.Parse(tt.input, location, tt.target)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, marker.Type)
			assert.Equal(t, tt.wantValue, marker.Value)
			assert.Equal(t, tt.wantParams, marker.Parameters)
			assert.Equal(t, tt.wantName, marker.Name())
			assert.Equal(t, location, marker.Location)
		})
	}
}

func TestParticipleParser_Errors(t *testing.T) {
	parser := NewDefaultParser()
	location := SourceLocation{File: "web/a.go", Line: 3}

	tests := []struct {
		name     string
		input    string
		target   Target
		contains string
	}{
		{"unknown kind", "//hand::component", TypeTarget, "unknown annotation type"},
		{"empty kind", "//hand::", TypeTarget, "invalid annotation"},
		{"mapping without path", "//hand::mapping", MethodTarget, "requires 1 argument"},
		{"mapping with two paths", "//hand::mapping /a /b", MethodTarget, "at most 1"},
		{"controller with argument", "//hand::controller index", TypeTarget, "at most 0"},
		{"unknown parameter", "//hand::service -Scope=prototype", TypeTarget, "unknown parameter 'Scope'"},
		{"parameter without value", "//hand::service -Name", TypeTarget, "requires a value"},
		{"duplicate parameter", "//hand::service -Name=a -Name=b", TypeTarget, "more than once"},
		{"autowired on a type", "//hand::autowired", TypeTarget, "only allowed on field"},
		{"controller on a method", "//hand::controller", MethodTarget, "only allowed on type"},
		{"mapping with query", "//hand::mapping /a?b", MethodTarget, "query or fragment"},
		{"unterminated string", `//hand::mapping "/a`, MethodTarget, "invalid annotation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker, err := parser.Parse(tt.input, location, tt.target)
			require.Error(t, err)
			assert.Nil(t, marker)
			assert.Contains(t, err.Error(), tt.contains)
			assert.True(t, stderrors.Is(err, errors.ErrAnnotationSyntax))
			assert.Equal(t, errors.AnnotationSyntaxErrorCode, errors.CodeOf(err))
		})
	}
}

func TestIsMarker(t *testing.T) {
	assert.True(t, IsMarker("//hand::controller"))
	assert.True(t, IsMarker("// hand::mapping /x"))
	assert.False(t, IsMarker("// IndexController handles /index"))
	assert.False(t, IsMarker("//other::controller"))
	assert.False(t, IsMarker("/* hand::controller */"))
}

func TestMarker_NameParameterWinsOverPositional(t *testing.T) {
	m := &Marker{Type: ServiceAnnotation, Value: "a", Parameters: map[string]string{"Name": "b"}}
	assert.Equal(t, "b", m.Name())

	var nilMarker *Marker
	assert.Equal(t, "", nilMarker.Name())
	assert.Equal(t, "", nilMarker.Path())
}

func TestSchemaSet(t *testing.T) {
	set := Builtin()
	assert.Equal(t, []AnnotationType{ControllerAnnotation, ServiceAnnotation, MappingAnnotation, AutowiredAnnotation}, set.Kinds())

	schema, err := set.Schema(MappingAnnotation)
	require.NoError(t, err)
	assert.Equal(t, 1, schema.MinPositional)

	_, err = NewSchemaSet(ServiceAnnotationSchema, ServiceAnnotationSchema)
	assert.ErrorContains(t, err, "declared twice")

	broken := ControllerAnnotationSchema
	broken.Targets = 0
	_, err = NewSchemaSet(broken)
	assert.ErrorContains(t, err, "allows no targets")

	empty, err := NewSchemaSet()
	require.NoError(t, err)
	_, err = empty.Schema(ControllerAnnotation)
	assert.Error(t, err)
}

func TestParseAnnotationType_RoundTrip(t *testing.T) {
	for _, at := range []AnnotationType{ControllerAnnotation, ServiceAnnotation, MappingAnnotation, AutowiredAnnotation} {
		parsed, err := ParseAnnotationType(at.String())
		require.NoError(t, err)
		assert.Equal(t, at, parsed)
	}
	_, err := ParseAnnotationType("core")
	assert.Error(t, err)
}
