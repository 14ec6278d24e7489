package llm

// Schema is a provider-independent description of the expected output shape.
// Providers translate it into their native response-schema format.
type Schema struct {
	Type        string // object, array, string, number, integer, boolean
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
	Enum        []string
	Minimum     *float64
	Maximum     *float64
}

const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

func floatPtr(f float64) *float64 { return &f }

// Object builds an object schema with every property required.
func Object(properties map[string]*Schema) *Schema {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	return &Schema{Type: TypeObject, Properties: properties, Required: required}
}

func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

func StringArray(description string) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: &Schema{Type: TypeString}}
}

// BoundedNumber constrains a numeric property to [min, max].
func BoundedNumber(description string, min, max float64) *Schema {
	return &Schema{
		Type:        TypeNumber,
		Description: description,
		Minimum:     floatPtr(min),
		Maximum:     floatPtr(max),
	}
}
