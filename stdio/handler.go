package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mcptoolbox/mcp-toolbox-go/internal/jsonrpc"
	"github.com/mcptoolbox/mcp-toolbox-go/toolbox"
)

// maxFrameBytes bounds a single inbound document. Oversized lines fail the
// scanner rather than exhausting memory.
const maxFrameBytes = 4 * 1024 * 1024

// ErrWriterClosed is returned by writes attempted after the session closed.
var ErrWriterClosed = errors.New("stdio: output stream closed")

// Handler drives one JSON-RPC duplex session over a byte-stream pair. It is
// transport-only: all request semantics live in the dispatcher. Each decoded
// request is dispatched on its own goroutine; the single output stream is the
// only serialization point, and every response carries its correlation id so
// the peer tolerates reordering.
type Handler struct {
	disp *toolbox.Dispatcher
	r    io.Reader
	w    io.Writer
	log  *slog.Logger

	mu     sync.Mutex // guards w and closed
	closed bool
}

// NewHandler constructs a pipe transport Handler bound to stdin/stdout and
// applies options.
func NewHandler(disp *toolbox.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		disp: disp,
		r:    os.Stdin,
		w:    os.Stdout,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve runs the session until EOF on the reader or ctx cancellation. In
// either case it waits for in-flight dispatches to settle, then marks the
// output stream closed; no write ever happens after that point. Safe to call
// at most once per Handler.
func (h *Handler) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.log.InfoContext(ctx, "pipe.serve.start")

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go h.readLoop(ctx, lines, readErr)

	var inflight sync.WaitGroup
	defer func() {
		inflight.Wait()
		h.close()
		h.log.InfoContext(ctx, "pipe.serve.stop")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			h.handleLine(ctx, line, &inflight)
		}
	}
}

// readLoop feeds complete inbound documents to the session loop. It owns the
// reader; the channel close signals EOF.
func (h *Handler) readLoop(ctx context.Context, lines chan<- []byte, readErr chan<- error) {
	defer close(lines)

	sc := bufio.NewScanner(h.r)
	sc.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		buf := make([]byte, len(line))
		copy(buf, line)
		select {
		case lines <- buf:
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		readErr <- err
	}
}

func (h *Handler) handleLine(ctx context.Context, line []byte, inflight *sync.WaitGroup) {
	req, rpcErr := jsonrpc.DecodeRequest(line)
	if rpcErr != nil {
		h.log.WarnContext(ctx, "pipe.decode.fail", slog.String("err", rpcErr.Message))
		if err := h.write(&jsonrpc.Response{JSONRPCVersion: jsonrpc.ProtocolVersion, Error: rpcErr}); err != nil {
			h.log.ErrorContext(ctx, "pipe.write.fail", slog.String("err", err.Error()))
		}
		return
	}

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		resp := h.disp.Dispatch(ctx, req)
		if resp == nil {
			// Notification: dispatched, nothing to correlate back.
			return
		}
		if err := h.write(resp); err != nil {
			h.log.ErrorContext(ctx, "pipe.write.fail", slog.String("err", err.Error()))
		}
	}()
}

// write serializes one response onto the output stream. The mutex is the
// pipelining boundary: concurrent dispatches complete in any order but their
// frames never interleave.
func (h *Handler) write(resp *jsonrpc.Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrWriterClosed
	}
	_, err = h.w.Write(b)
	return err
}

func (h *Handler) close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}
