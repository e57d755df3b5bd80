package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/handspring/internal/errors"
)

// markerNode is the grammar root of a //hand:: comment
type markerNode struct {
	Kind string     `parser:"Prefix @Word"`
	Args []*argNode `parser:"@@*"`
}

// argNode is either a -Key[=Value] parameter or a positional value
type argNode struct {
	Param *paramNode `parser:"  @@"`
	Value *string    `parser:"| @(String | Word)"`
}

type paramNode struct {
	Key   string  `parser:"Dash @Word"`
	Value *string `parser:"(Equals @(String | Word))?"`
}

var markerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*hand::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Word", Pattern: `[^\s"=\-][^\s=]*`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// ParticipleParser parses //hand:: markers and checks them against a schema set
type ParticipleParser struct {
	parser  *participle.Parser[markerNode]
	schemas *SchemaSet
}

// NewParticipleParser creates a new parser using participle
func NewParticipleParser(schemas *SchemaSet) *ParticipleParser {
	parser := participle.MustBuild[markerNode](
		participle.Lexer(markerLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	return &ParticipleParser{
		parser:  parser,
		schemas: schemas,
	}
}

// NewDefaultParser creates a parser backed by the built-in schemas
func NewDefaultParser() *ParticipleParser {
	return NewParticipleParser(Builtin())
}

// Parse parses one marker comment placed on target. Every failure is an
// AnnotationSyntax error carrying the location and the raw text.
func (p *ParticipleParser) Parse(comment string, location SourceLocation, target Target) (*Marker, error) {
	raw := strings.TrimSpace(comment)
	loc := errors.SourceLocation{File: location.File, Line: location.Line, Column: location.Column}

	node, err := p.parser.ParseString(location.File, raw)
	if err != nil {
		return nil, errors.AnnotationSyntax(loc, raw, err)
	}

	annotationType, err := ParseAnnotationType(node.Kind)
	if err != nil {
		return nil, errors.AnnotationSyntax(loc, raw, err).
			WithSuggestion("use one of: controller, service, mapping, autowired")
	}

	schema, err := p.schemas.Schema(annotationType)
	if err != nil {
		return nil, errors.AnnotationSyntax(loc, raw, err)
	}

	marker := &Marker{
		Type:       annotationType,
		Parameters: make(map[string]string),
		Location:   location,
		Raw:        raw,
	}

	if err := p.bind(marker, node, schema, target); err != nil {
		return nil, errors.AnnotationSyntax(loc, raw, err).WithSuggestions(schema.Examples...)
	}

	return marker, nil
}

// bind validates the parsed arguments against the schema and fills the marker
func (p *ParticipleParser) bind(marker *Marker, node *markerNode, schema AnnotationSchema, target Target) error {
	if schema.Targets&target == 0 {
		return fmt.Errorf("%s markers are only allowed on %s, not on %s", schema.Type, schema.Targets, target)
	}

	var positional []string
	for _, arg := range node.Args {
		if arg.Param == nil {
			positional = append(positional, *arg.Value)
			continue
		}

		key := arg.Param.Key
		spec, ok := schema.Parameters[key]
		if !ok {
			return fmt.Errorf("unknown parameter '%s' for annotation type %s", key, schema.Type)
		}
		if arg.Param.Value == nil {
			return fmt.Errorf("parameter '%s' requires a value (-%s=...)", key, key)
		}
		if _, dup := marker.Parameters[key]; dup {
			return fmt.Errorf("parameter '%s' given more than once", key)
		}
		if spec.Validator != nil {
			if err := spec.Validator(*arg.Param.Value); err != nil {
				return fmt.Errorf("parameter '%s' validation failed: %w", key, err)
			}
		}
		marker.Parameters[key] = *arg.Param.Value
	}

	for name, spec := range schema.Parameters {
		if _, ok := marker.Parameters[name]; spec.Required && !ok {
			return fmt.Errorf("missing required parameter '%s' for annotation type %s", name, schema.Type)
		}
	}

	switch {
	case len(positional) < schema.MinPositional:
		return fmt.Errorf("%s requires %d argument(s), got %d", schema.Type, schema.MinPositional, len(positional))
	case len(positional) > schema.MaxPositional:
		return fmt.Errorf("%s accepts at most %d argument(s), got %d", schema.Type, schema.MaxPositional, len(positional))
	}

	if len(positional) == 1 {
		if schema.Positional != nil {
			if err := schema.Positional(positional[0]); err != nil {
				return err
			}
		}
		marker.Value = positional[0]
	}

	return nil
}
