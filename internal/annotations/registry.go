package annotations

import (
	"fmt"
	"sort"
	"sync"
)

// SchemaSet maps marker kinds to their schemas. It is filled once and only
// read afterwards, so lookups need no locking.
type SchemaSet struct {
	schemas map[AnnotationType]AnnotationSchema
}

// NewSchemaSet builds a set from schemas; a kind may appear only once
func NewSchemaSet(schemas ...AnnotationSchema) (*SchemaSet, error) {
	s := &SchemaSet{schemas: make(map[AnnotationType]AnnotationSchema, len(schemas))}
	for _, schema := range schemas {
		if err := s.add(schema); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var builtin = sync.OnceValue(func() *SchemaSet {
	s, err := NewSchemaSet(BuiltinSchemas()...)
	if err != nil {
		panic(err)
	}
	return s
})

// Builtin returns the set of controller, service, mapping and autowired schemas
func Builtin() *SchemaSet {
	return builtin()
}

func (s *SchemaSet) add(schema AnnotationSchema) error {
	if _, dup := s.schemas[schema.Type]; dup {
		return fmt.Errorf("marker '%s' is declared twice", schema.Type)
	}
	switch {
	case schema.Targets == 0:
		return fmt.Errorf("marker '%s' allows no targets", schema.Type)
	case schema.MinPositional < 0 || schema.MaxPositional < schema.MinPositional:
		return fmt.Errorf("marker '%s' has invalid positional bounds [%d,%d]",
			schema.Type, schema.MinPositional, schema.MaxPositional)
	}
	if _, blank := schema.Parameters[""]; blank {
		return fmt.Errorf("marker '%s' declares an unnamed parameter", schema.Type)
	}
	s.schemas[schema.Type] = schema
	return nil
}

// Schema returns the schema for kind
func (s *SchemaSet) Schema(kind AnnotationType) (AnnotationSchema, error) {
	schema, ok := s.schemas[kind]
	if !ok {
		return AnnotationSchema{}, fmt.Errorf("marker '%s' has no schema", kind)
	}
	return schema, nil
}

// Kinds lists the known marker kinds in declaration order
func (s *SchemaSet) Kinds() []AnnotationType {
	kinds := make([]AnnotationType, 0, len(s.schemas))
	for kind := range s.schemas {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
