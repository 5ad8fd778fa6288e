package toolbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcptoolbox/mcp-toolbox-go/mcp"
)

// ToolHandler executes one tool invocation. Arguments arrive as the raw
// params.arguments JSON; the handler owns decoding and validation. The
// returned value must be JSON-serializable; the transport wraps it for the
// wire. Handlers that perform I/O must honor ctx.
type ToolHandler func(ctx context.Context, args json.RawMessage) (any, error)

// StaticTool pairs a tool descriptor with its handler.
type StaticTool struct {
	Descriptor mcp.Tool
	Handler    ToolHandler
}

// Registry maps tool names to their descriptors and handlers. It preserves
// registration order for listings. All registration happens during process
// startup; after that the registry is effectively immutable and safe for
// unlocked concurrent reads.
type Registry struct {
	tools    []mcp.Tool
	handlers map[string]ToolHandler
}

// NewRegistry builds a registry from the given tools, in order.
func NewRegistry(defs ...StaticTool) (*Registry, error) {
	r := &Registry{handlers: make(map[string]ToolHandler, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. It fails if the name is already taken or the
// definition is incomplete. Register must not be called once the registry is
// shared with a transport.
func (r *Registry) Register(def StaticTool) error {
	name := def.Descriptor.Name
	if name == "" {
		return fmt.Errorf("tool descriptor missing name")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %q has no handler", name)
	}
	if r.handlers == nil {
		r.handlers = make(map[string]ToolHandler)
	}
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools = append(r.tools, def.Descriptor)
	r.handlers[name] = def.Handler
	return nil
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (ToolHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Tools returns a copy of the tool descriptors in registration order. The
// handler is never exposed through listings.
func (r *Registry) Tools() []mcp.Tool {
	out := make([]mcp.Tool, len(r.tools))
	copy(out, r.tools)
	return out
}
