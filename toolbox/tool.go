package toolbox

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/mcptoolbox/mcp-toolbox-go/mcp"
)

// ToolOption configures NewTool behavior.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description string
}

// WithDescription sets the human-readable description surfaced in listings.
func WithDescription(desc string) ToolOption {
	return func(c *toolConfig) { c.description = desc }
}

// NewTool builds a StaticTool whose input contract is the typed struct A. The
// input schema is reflected from A's fields and tags, and arguments are
// decoded strictly at call time: unknown fields or mismatched types surface
// as an ArgumentError, which the dispatcher reports as INVALID_PARAMS.
//
// The wrapped function may block internally (network probes and the like);
// the registry presents one uniform invoke contract regardless.
func NewTool[A any](name string, fn func(ctx context.Context, args A) (any, error), opts ...ToolOption) StaticTool {
	cfg := toolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	desc := mcp.Tool{
		Name:        name,
		Description: cfg.description,
		InputSchema: reflectInputSchema[A](),
	}

	handler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var a A
		if len(raw) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&a); err != nil {
				return nil, InvalidArgsf("invalid arguments for tool %q: %v", name, err)
			}
		}
		return fn(ctx, a)
	}

	return StaticTool{Descriptor: desc, Handler: handler}
}

// reflectInputSchema reflects the Go type A into the simplified wire-level
// input schema. Only object schemas map cleanly; anything else is exposed as
// an empty object.
func reflectInputSchema[A any]() mcp.ToolInputSchema {
	r := &jsonschema.Reflector{
		DoNotReference: true, // inline defs
		ExpandedStruct: true, // put struct at root
	}
	s := r.Reflect(new(A))

	if s == nil || s.Type != "object" {
		return mcp.ToolInputSchema{Type: "object", Properties: map[string]mcp.SchemaProperty{}}
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

// toSchemaProperty recursively maps a reflected schema node to the simplified
// wire shape.
func toSchemaProperty(s *jsonschema.Schema) mcp.SchemaProperty {
	if s == nil {
		return mcp.SchemaProperty{}
	}
	p := mcp.SchemaProperty{
		Type:        s.Type,
		Description: s.Description,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}
	if len(s.Enum) > 0 {
		p.Enum = s.Enum
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
		if len(s.Required) > 0 {
			p.Required = append(p.Required, s.Required...)
		}
	}
	return p
}
