// Package jsonschema defines the JSON Schema value type used to declare
// tool parameters. It covers the subset of the draft vocabulary that chat
// providers accept for function declarations: object/array/primitive types,
// property maps, required lists, enums, and descriptions.
package jsonschema

// Schema is a JSON Schema fragment. The zero value marshals to "{}", which
// providers interpret as "any value".
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// Object builds an object schema from a property map. Required property
// names, if any, are listed explicitly by the caller.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// String builds a string schema with a description.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// Number builds a number schema with a description.
func Number(description string) *Schema {
	return &Schema{Type: "number", Description: description}
}

// Integer builds an integer schema with a description.
func Integer(description string) *Schema {
	return &Schema{Type: "integer", Description: description}
}

// Boolean builds a boolean schema with a description.
func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

// Array builds an array schema over the given item schema.
func Array(items *Schema, description string) *Schema {
	return &Schema{Type: "array", Items: items, Description: description}
}

// Enum builds a string schema restricted to the given values.
func Enum(description string, values ...string) *Schema {
	return &Schema{Type: "string", Description: description, Enum: values}
}
