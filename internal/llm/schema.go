package llm

// Schema is the subset of JSON Schema used for structured model output.
// Every declared object property is required and no extras are allowed.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Order       []string           `json:"-"`
	Items       *Schema            `json:"items,omitempty"`
}

// ResponseFormat asks the provider for JSON matching Schema.
type ResponseFormat struct {
	Name   string
	Schema *Schema
}

// Object builds an object schema whose properties keep the given order.
func Object(props ...Property) *Schema {
	s := &Schema{Type: "object", Properties: make(map[string]*Schema, len(props))}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		s.Order = append(s.Order, p.Name)
	}
	return s
}

// Property is a named object member.
type Property struct {
	Name   string
	Schema *Schema
}

func Prop(name string, s *Schema) Property { return Property{Name: name, Schema: s} }

func String() *Schema { return &Schema{Type: "string"} }

func Number() *Schema { return &Schema{Type: "number"} }

func Array(items *Schema) *Schema { return &Schema{Type: "array", Items: items} }

// JSONSchema renders s as a strict JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if s.Type == "object" {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
		out["required"] = append([]string{}, s.Order...)
		out["additionalProperties"] = false
	}
	return out
}
