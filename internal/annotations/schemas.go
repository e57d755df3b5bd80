package annotations

import "github.com/toyz/handspring/internal/utils"

// Built-in annotation schemas

// ControllerAnnotationSchema defines the schema for //hand::controller annotations
var ControllerAnnotationSchema = AnnotationSchema{
	Type:        ControllerAnnotation,
	Description: "Marks a struct as a request handler component",
	Targets:     TypeTarget,
	Parameters:  map[string]ParameterSpec{},
	Examples: []string{
		"//hand::controller",
	},
}

// ServiceAnnotationSchema defines the schema for //hand::service annotations
var ServiceAnnotationSchema = AnnotationSchema{
	Type:          ServiceAnnotation,
	Description:   "Marks a struct as a service component, optionally under an explicit bean name",
	Targets:       TypeTarget,
	MaxPositional: 1,
	Positional:    validateBeanName,
	Parameters: map[string]ParameterSpec{
		"Name": {
			Description: "Explicit bean name, overrides the derived one",
			Validator:   validateBeanName,
		},
	},
	Examples: []string{
		"//hand::service",
		"//hand::service indexService",
		"//hand::service -Name=indexService",
	},
}

// MappingAnnotationSchema defines the schema for //hand::mapping annotations
var MappingAnnotationSchema = AnnotationSchema{
	Type:          MappingAnnotation,
	Description:   "Sets the base path of a controller or the sub-path of a handler method",
	Targets:       TypeTarget | MethodTarget,
	MinPositional: 1,
	MaxPositional: 1,
	Positional:    utils.ExcludesAny("path", "?#", "a query or fragment"),
	Parameters: map[string]ParameterSpec{},
	Examples: []string{
		"//hand::mapping index",
		"//hand::mapping /getName",
		`//hand::mapping "/api/v1"`,
	},
}

// AutowiredAnnotationSchema defines the schema for //hand::autowired annotations
var AutowiredAnnotationSchema = AnnotationSchema{
	Type:          AutowiredAnnotation,
	Description:   "Marks a field for injection by bean name, the field name when none is given",
	Targets:       FieldTarget,
	MaxPositional: 1,
	Positional:    validateBeanName,
	Parameters: map[string]ParameterSpec{
		"Name": {
			Description: "Bean name to inject",
			Validator:   validateBeanName,
		},
	},
	Examples: []string{
		"//hand::autowired",
		"//hand::autowired indexService",
		"//hand::autowired -Name=indexService",
	},
}

// BuiltinSchemas lists the schemas of every marker kind
func BuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		ControllerAnnotationSchema,
		ServiceAnnotationSchema,
		MappingAnnotationSchema,
		AutowiredAnnotationSchema,
	}
}

var validateBeanName = utils.NewValidatorChain(
	utils.NotBlank("bean name"),
	utils.ExcludesAny("bean name", " \t/", "whitespace or '/'"),
).Validate
