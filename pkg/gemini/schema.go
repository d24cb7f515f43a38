package gemini

import "strings"

// Type is the backend's fixed enumeration of schema types.
type Type string

const (
	TypeObject  Type = "OBJECT"
	TypeString  Type = "STRING"
	TypeNumber  Type = "NUMBER"
	TypeInteger Type = "INTEGER"
	TypeBoolean Type = "BOOLEAN"
	TypeArray   Type = "ARRAY"
)

// ParseType maps a JSON Schema type name to the backend enumeration,
// case-insensitively. The second return value is false for names the backend
// cannot represent (including "null").
func ParseType(name string) (Type, bool) {
	switch strings.ToLower(name) {
	case "object":
		return TypeObject, true
	case "string":
		return TypeString, true
	case "number":
		return TypeNumber, true
	case "integer":
		return TypeInteger, true
	case "boolean":
		return TypeBoolean, true
	case "array":
		return TypeArray, true
	default:
		return "", false
	}
}

// Schema is the constrained schema dialect accepted for function parameters.
// Unknown JSON Schema keywords have no representation here.
type Schema struct {
	Type        Type               `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Format      string             `json:"format,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
	Enum        any                `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}
