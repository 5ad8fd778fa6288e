// Package logctx attaches request-scoped attributes to every log record
// emitted beneath a context. Transport bindings stash the in-flight RPC and
// tool call details; the wrapping slog.Handler lifts them into log output so
// individual call sites never repeat them.
package logctx

import (
	"context"
	"log/slog"
)

// Handler wraps an inner slog.Handler and enriches records with whatever
// request, tool, or connection data the context carries.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if msg, ok := ctx.Value(rpcMsgKey{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("method", msg.Method),
			slog.String("id", msg.ID),
		))
	}

	if td, ok := ctx.Value(toolCallKey{}).(*ToolCallData); ok {
		r.AddAttrs(slog.Group("tool",
			slog.String("name", td.ToolName),
		))
	}

	if cd, ok := ctx.Value(observerKey{}).(*ObserverData); ok {
		r.AddAttrs(slog.Group("conn",
			slog.String("id", cd.ConnID),
		))
	}

	return h.Handler.Handle(ctx, r)
}

type rpcMsgKey struct{}

// RPCMessage identifies the JSON-RPC message currently being dispatched.
type RPCMessage struct {
	Method string
	ID     string
}

func WithRPCMessage(ctx context.Context, msg *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsgKey{}, msg)
}

type toolCallKey struct{}

// ToolCallData identifies the tool a dispatch resolved to.
type ToolCallData struct {
	ToolName string
}

func WithToolCallData(ctx context.Context, data *ToolCallData) context.Context {
	return context.WithValue(ctx, toolCallKey{}, data)
}

type observerKey struct{}

// ObserverData identifies one open push-stream connection.
type ObserverData struct {
	ConnID string
}

func WithObserverData(ctx context.Context, data *ObserverData) context.Context {
	return context.WithValue(ctx, observerKey{}, data)
}
