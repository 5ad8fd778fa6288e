package streaminghttp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/mcptoolbox/mcp-toolbox-go/internal/jsonrpc"
	"github.com/mcptoolbox/mcp-toolbox-go/internal/logctx"
	"github.com/mcptoolbox/mcp-toolbox-go/mcp"
	"github.com/mcptoolbox/mcp-toolbox-go/toolbox"
)

var _ http.Handler = (*Handler)(nil)

// Fixed endpoint paths, mirroring the conventional SSE-transport layout.
const (
	ssePath      = "/sse"
	messagesPath = "/messages"
	healthPath   = "/health"
)

// defaultKeepAliveInterval bounds observer idle time before a comment frame
// is emitted to keep intermediaries from timing the connection out.
const defaultKeepAliveInterval = 30 * time.Second

var (
	jsonMediaType         = contenttype.NewMediaType("application/json")
	eventStreamMediaType  = contenttype.NewMediaType("text/event-stream")
	eventStreamMediaTypes = []contenttype.MediaType{eventStreamMediaType}
)

// Event kinds pushed to observers. Failures are never broadcast.
const (
	eventKindConnection = "connection"
	eventKindToolResult = "tool_result"
)

type connectionEvent struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

type toolResultEvent struct {
	Type   string          `json:"type"`
	Tool   string          `json:"tool"`
	Result json.RawMessage `json:"result"`
}

// Handler is the push transport binding. It serves N independent observer
// streams plus the POST request channel, both resolving against the same
// dispatcher as the pipe transport.
type Handler struct {
	disp      *toolbox.Dispatcher
	conns     *ConnectionRegistry
	log       *slog.Logger
	keepAlive time.Duration
	mux       *http.ServeMux
}

// Option customizes a Handler.
type Option func(*Handler)

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithKeepAliveInterval overrides the observer idle keepalive interval.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.keepAlive = d
		}
	}
}

// WithConnectionRegistry injects the registry, letting tests observe and
// drive the broadcast set directly.
func WithConnectionRegistry(cr *ConnectionRegistry) Option {
	return func(h *Handler) {
		if cr != nil {
			h.conns = cr
		}
	}
}

// NewHandler constructs the push transport binding around disp.
func NewHandler(disp *toolbox.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		disp:      disp,
		conns:     NewConnectionRegistry(0),
		log:       slog.Default(),
		keepAlive: defaultKeepAliveInterval,
	}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+ssePath, h.handleSSE)
	mux.HandleFunc("POST "+messagesPath, h.handleMessages)
	mux.HandleFunc("GET "+healthPath, h.handleHealth)
	h.mux = mux
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleSSE serves one observer connection until the peer disconnects or the
// server shuts down. The registry entry is released synchronously with the
// drain loop ending.
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, _, err := contenttype.GetAcceptableMediaType(r, eventStreamMediaTypes); err != nil {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		h.log.WarnContext(ctx, "sse.accept.unsupported")
		return
	}

	f, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.ErrorContext(ctx, "sse.flusher.missing")
		return
	}

	conn := h.conns.Add()
	defer h.conns.Remove(conn.id)

	ctx = logctx.WithObserverData(ctx, &logctx.ObserverData{ConnID: conn.id})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	f.Flush()

	// Greet the new observer on its own queue; broadcasts reach it from now on.
	if err := h.conns.send(conn, connectionEvent{Type: eventKindConnection, ClientID: conn.id}); err != nil {
		h.log.ErrorContext(ctx, "sse.greeting.fail", slog.String("err", err.Error()))
		return
	}

	h.log.InfoContext(ctx, "sse.stream.start")
	defer h.log.InfoContext(ctx, "sse.stream.stop")

	keepalive := time.NewTicker(h.keepAlive)
	defer keepalive.Stop()

	for {
		// Drain any ready event before consulting the keepalive timer so an
		// idle-interval tick never delays a queued event.
		select {
		case payload := <-conn.events:
			if err := writeSSEEvent(w, f, payload); err != nil {
				h.log.WarnContext(ctx, "sse.write.fail", slog.String("err", err.Error()))
				return
			}
			keepalive.Reset(h.keepAlive)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case payload := <-conn.events:
			if err := writeSSEEvent(w, f, payload); err != nil {
				h.log.WarnContext(ctx, "sse.write.fail", slog.String("err", err.Error()))
				return
			}
			keepalive.Reset(h.keepAlive)
		case <-keepalive.C:
			if err := writeSSEComment(w, f, "keepalive"); err != nil {
				h.log.WarnContext(ctx, "sse.keepalive.fail", slog.String("err", err.Error()))
				return
			}
		}
	}
}

// handleMessages serves the request surface: one JSON-RPC document per POST,
// answered with a JSON-RPC response body. A successful tools/call outcome is
// additionally broadcast to every open observer.
func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if ct, err := contenttype.GetMediaType(r); err != nil || !ct.Matches(jsonMediaType) {
		writeJSONError(w, http.StatusUnsupportedMediaType, "content-type must be application/json")
		h.log.WarnContext(ctx, "post.content_type.unsupported")
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.log.WarnContext(ctx, "post.decode.fail", slog.String("err", err.Error()))
		h.writeResponse(ctx, w, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrorCodeParseError, fmt.Sprintf("Parse error: %v", err)))
		return
	}

	req, rpcErr := jsonrpc.DecodeRequest(raw)
	if rpcErr != nil {
		h.log.WarnContext(ctx, "post.request.invalid", slog.String("err", rpcErr.Message))
		h.writeResponse(ctx, w, &jsonrpc.Response{JSONRPCVersion: jsonrpc.ProtocolVersion, Error: rpcErr})
		return
	}

	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: req.Method, ID: req.ID.String()})

	resp := h.disp.Dispatch(ctx, req)
	if resp == nil {
		// Notification: dispatched, nothing to answer.
		w.WriteHeader(http.StatusAccepted)
		h.log.InfoContext(ctx, "post.notification.ok", slog.Duration("dur", time.Since(start)))
		return
	}

	h.writeResponse(ctx, w, resp)

	if mcp.Method(req.Method) == mcp.ToolsCallMethod && resp.Error == nil {
		h.broadcastToolResult(ctx, req.Params, resp.Result)
	}
	h.log.InfoContext(ctx, "post.rpc.ok", slog.Duration("dur", time.Since(start)))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":             "healthy",
		"active_connections": h.conns.Count(),
	})
}

// broadcastToolResult fans a successful tools/call outcome out to every open
// observer. The result bytes are the exact bytes the POST caller received.
func (h *Handler) broadcastToolResult(ctx context.Context, params json.RawMessage, result json.RawMessage) {
	var call mcp.CallToolRequest
	if err := json.Unmarshal(params, &call); err != nil {
		h.log.ErrorContext(ctx, "broadcast.params.fail", slog.String("err", err.Error()))
		return
	}

	delivered, dropped, err := h.conns.Broadcast(toolResultEvent{
		Type:   eventKindToolResult,
		Tool:   call.Name,
		Result: result,
	})
	if err != nil {
		h.log.ErrorContext(ctx, "broadcast.fail", slog.String("err", err.Error()))
		return
	}
	if dropped > 0 {
		h.log.WarnContext(ctx, "broadcast.partial", slog.Int("delivered", delivered), slog.Int("dropped", dropped))
	}
}

func (h *Handler) writeResponse(ctx context.Context, w http.ResponseWriter, resp *jsonrpc.Response) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.ErrorContext(ctx, "post.response.write.fail", slog.String("err", err.Error()))
	}
}

// writeSSEEvent writes one framed event. The blank line is the wire contract:
// two consecutive line terminators delimit an event.
func writeSSEEvent(w http.ResponseWriter, f http.Flusher, payload []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	f.Flush()
	return nil
}

// writeSSEComment writes a content-free comment frame. Intermediaries pass it
// through; clients ignore it.
func writeSSEComment(w http.ResponseWriter, f http.Flusher, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return err
	}
	f.Flush()
	return nil
}

// writeJSONError emits a minimal JSON body for HTTP-layer rejections that
// happen before any JSON-RPC exchange is possible.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, status, msg)
}
