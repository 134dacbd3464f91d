package mcpservice

import (
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/lineframe/mcp-stdio-go/mcp"
)

// Schema builds a tool input schema from a property mapping. A nil or empty
// mapping yields a schema whose properties field still serializes as an
// empty JSON object. required defaults to no required fields.
func Schema(props map[string]mcp.SchemaProperty, required ...string) mcp.ToolInputSchema {
	if props == nil {
		props = map[string]mcp.SchemaProperty{}
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// Prop builds a simple typed property fragment.
func Prop(typ, description string) mcp.SchemaProperty {
	return mcp.SchemaProperty{Type: typ, Description: description}
}

// EnumProp builds a string property restricted to the given values.
func EnumProp(description string, values ...string) mcp.SchemaProperty {
	return mcp.SchemaProperty{Type: "string", Description: description, Enum: values}
}

// SchemaFor reflects a typed argument struct into the simplified tool input
// schema, using struct tags the way the rest of the ecosystem does
// (json:"name,omitempty" marks a field optional, jsonschema:"description=..."
// attaches descriptions). Non-struct types yield an empty object schema.
func SchemaFor[A any]() mcp.ToolInputSchema {
	r := &jsonschema.Reflector{
		DoNotReference: true, // inline defs
		ExpandedStruct: true, // put struct at root
	}
	s := r.Reflect(new(A))

	// Only object schemas map onto the simplified tool input shape.
	if s == nil || s.Type != "object" {
		return Schema(nil)
	}

	props := make(map[string]mcp.SchemaProperty)
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			props[el.Key] = toSchemaProperty(el.Value)
		}
	}
	var required []string
	if len(s.Required) > 0 {
		required = append(required, s.Required...)
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// toSchemaProperty recursively maps a reflected jsonschema node to the
// simplified property fragment.
func toSchemaProperty(s *jsonschema.Schema) mcp.SchemaProperty {
	if s == nil {
		return mcp.SchemaProperty{}
	}
	p := mcp.SchemaProperty{
		Type:        s.Type,
		Description: s.Description,
		Default:     s.Default,
	}
	for _, v := range s.Enum {
		p.Enum = append(p.Enum, fmt.Sprintf("%v", v))
	}
	if s.Type == "array" && s.Items != nil {
		item := toSchemaProperty(s.Items)
		p.Items = &item
	}
	if s.Type == "object" && s.Properties != nil {
		m := make(map[string]mcp.SchemaProperty, s.Properties.Len())
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			m[el.Key] = toSchemaProperty(el.Value)
		}
		p.Properties = m
	}
	return p
}
