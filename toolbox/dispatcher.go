package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcptoolbox/mcp-toolbox-go/internal/jsonrpc"
	"github.com/mcptoolbox/mcp-toolbox-go/internal/logctx"
	"github.com/mcptoolbox/mcp-toolbox-go/mcp"
)

// Dispatcher resolves JSON-RPC requests against a Registry and normalizes
// every outcome, success or failure, into a correlated response. It is the
// single point at which tools/list is served and the boundary past which no
// tool failure may propagate: a panicking tool produces an INTERNAL_ERROR
// response, never a crashed gateway.
type Dispatcher struct {
	reg  *Registry
	log  *slog.Logger
	info mcp.ImplementationInfo
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithServerInfo sets the identity reported in the initialize handshake.
func WithServerInfo(info mcp.ImplementationInfo) DispatcherOption {
	return func(d *Dispatcher) { d.info = info }
}

// NewDispatcher binds a dispatcher to a fully populated registry.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		reg:  reg,
		log:  slog.Default(),
		info: mcp.ImplementationInfo{Name: "mcp-toolbox", Version: "0.0.0"},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes one request and returns its correlated response. For
// notifications (nil id) the request still executes but Dispatch returns nil
// and the transport must not write anything back.
func (d *Dispatcher) Dispatch(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: req.Method, ID: req.ID.String()})

	resp := d.dispatch(ctx, req)
	if req.IsNotification() {
		return nil
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	switch mcp.Method(req.Method) {
	case mcp.InitializeMethod:
		return d.handleInitialize(ctx, req)
	case mcp.InitializedNotificationMethod:
		d.log.InfoContext(ctx, "rpc.initialized")
		return nil
	case mcp.PingMethod:
		return d.result(ctx, req.ID, struct{}{})
	case mcp.ToolsListMethod:
		return d.handleListTools(ctx, req)
	case mcp.ToolsCallMethod:
		return d.handleCallTool(ctx, req)
	default:
		d.log.WarnContext(ctx, "rpc.method.unknown")
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (d *Dispatcher) handleInitialize(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var initReq mcp.InitializeRequest
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &initReq); err != nil {
			d.log.WarnContext(ctx, "rpc.initialize.params.fail", slog.String("err", err.Error()))
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, fmt.Sprintf("Invalid initialize params: %v", err))
		}
	}

	d.log.InfoContext(ctx, "rpc.initialize", slog.String("client", initReq.ClientInfo.Name))
	return d.result(ctx, req.ID, mcp.InitializeResult{
		ProtocolVersion: mcp.ProtocolVersion,
		Capabilities: mcp.ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged"`
			}{},
		},
		ServerInfo: d.info,
	})
}

func (d *Dispatcher) handleListTools(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	tools := d.reg.Tools()
	d.log.InfoContext(ctx, "rpc.tools.list", slog.Int("count", len(tools)))
	return d.result(ctx, req.ID, mcp.ListToolsResult{Tools: tools})
}

func (d *Dispatcher) handleCallTool(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var call mcp.CallToolRequest
	if err := json.Unmarshal(req.Params, &call); err != nil {
		d.log.WarnContext(ctx, "rpc.tools.call.params.fail", slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, fmt.Sprintf("Invalid tools/call params: %v", err))
	}

	ctx = logctx.WithToolCallData(ctx, &logctx.ToolCallData{ToolName: call.Name})

	handler, ok := d.reg.Lookup(call.Name)
	if !ok {
		d.log.WarnContext(ctx, "tool.lookup.miss")
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeMethodNotFound, fmt.Sprintf("Tool '%s' not found", call.Name))
	}

	value, err := d.invoke(ctx, handler, call.Arguments)
	if err != nil {
		if IsArgumentError(err) {
			d.log.WarnContext(ctx, "tool.call.invalid_args", slog.String("err", err.Error()))
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error())
		}
		d.log.ErrorContext(ctx, "tool.call.fail", slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}

	text, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		d.log.ErrorContext(ctx, "tool.result.marshal.fail", slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}

	d.log.InfoContext(ctx, "tool.call.ok")
	return d.result(ctx, req.ID, mcp.TextResult(string(text)))
}

// invoke runs a tool handler with panic containment. This invariant is
// load-bearing for both transports: a panicking tool must never take the
// dispatch loop down with it.
func (d *Dispatcher) invoke(ctx context.Context, handler ToolHandler, args json.RawMessage) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(ctx, "tool.call.panic", slog.Any("panic", r))
			value = nil
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return handler(ctx, args)
}

func (d *Dispatcher) result(ctx context.Context, id *jsonrpc.RequestID, v any) *jsonrpc.Response {
	resp, err := jsonrpc.NewResultResponse(id, v)
	if err != nil {
		d.log.ErrorContext(ctx, "rpc.result.marshal.fail", slog.String("err", err.Error()))
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}
	return resp
}
