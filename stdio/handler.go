package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/lineframe/mcp-stdio-go/internal/engine"
	"github.com/lineframe/mcp-stdio-go/internal/jsonrpc"
	"github.com/lineframe/mcp-stdio-go/internal/logctx"
	"github.com/lineframe/mcp-stdio-go/mcp"
	"github.com/lineframe/mcp-stdio-go/mcpservice"
)

// Handler is a single-connection stdio transport. It reads newline-framed
// JSON-RPC messages from a reader (os.Stdin by default), dispatches them
// through the engine, and writes responses to a writer (os.Stdout by
// default), flushing after every message.
//
// The loop is synchronous and strictly ordered: one message is fully
// decoded, dispatched, and answered before the next line is read, so
// responses leave in the order requests arrived.
type Handler struct {
	eng *engine.Engine
	r   io.Reader
	w   io.Writer
	log *slog.Logger

	instructions string
	maxLineBytes int
}

// NewHandler constructs a stdio Handler for the given server identity,
// tool registry, and executor capability, then applies options.
func NewHandler(info mcp.ImplementationInfo, reg *mcpservice.ToolRegistry, exec mcpservice.ToolExecutor, opts ...Option) *Handler {
	h := &Handler{
		r:            os.Stdin,
		w:            os.Stdout,
		log:          slog.Default(),
		maxLineBytes: defaultMaxLineBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.eng = engine.New(engine.Config{
		Info:         info,
		Instructions: h.instructions,
		Registry:     reg,
		Executor:     exec,
		Log:          h.log,
	})
	return h
}

const defaultMaxLineBytes = 4 * 1024 * 1024

// Serve runs the session loop until end-of-input or a read error. An input
// stream at EOF before any bytes arrive is a clean no-op exit. Faults inside
// per-message handling are answered on the wire and never end the session;
// only a fault in this outermost loop does, and it is logged rather than
// propagated as a process failure.
func (h *Handler) Serve(ctx context.Context) (err error) {
	log := h.log.With(slog.String("session_id", uuid.NewString()))

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "session loop fault", slog.Any("panic", r))
			err = fmt.Errorf("session loop fault: %v", r)
		}
	}()

	scanner := bufio.NewScanner(h.r)
	scanner.Buffer(make([]byte, 0, 64*1024), h.maxLineBytes)

	out := bufio.NewWriter(h.w)
	fr := &framer{}

	log.DebugContext(ctx, "session started")

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg, ok := fr.push(scanner.Bytes())
		if !ok {
			continue
		}
		h.handleMessage(ctx, log, msg, out)
	}
	if scanErr := scanner.Err(); scanErr != nil {
		log.ErrorContext(ctx, "input read failed", slog.Any("error", scanErr))
		return fmt.Errorf("read input: %w", scanErr)
	}
	if fr.pending() {
		// trailing partial input is dropped, not reported as a parse error
		log.DebugContext(ctx, "dropping incomplete trailing input")
	}

	log.DebugContext(ctx, "session ended")
	return nil
}

// handleMessage processes one framed message unit: decode, dispatch, and
// write the response if one is due. Unexpected faults here are the -32603
// family: logged with full detail, answered with only a summary.
func (h *Handler) handleMessage(ctx context.Context, log *slog.Logger, msg []byte, out *bufio.Writer) {
	var id *jsonrpc.RequestID

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "internal fault while handling message", slog.Any("panic", r))
			resp := jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("Internal error: %v", r))
			h.writeResponse(ctx, log, out, resp)
		}
	}()

	log.DebugContext(ctx, "received message", slog.String("payload", string(msg)))

	// The framer only emits syntactically valid JSON, so this check is
	// unreachable behind it; it keeps the codec contract honest for any
	// caller that bypasses the framer.
	if !json.Valid(msg) {
		h.writeResponse(ctx, log, out, jsonrpc.NewParseErrorResponse())
		return
	}

	req, err := jsonrpc.DecodeRequest(msg)
	if err != nil {
		// valid JSON that is not a request object
		h.writeResponse(ctx, log, out, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrorCodeServerError, fmt.Sprintf("Server error: %v", err)))
		return
	}
	id = req.ID

	msgType := "request"
	if req.IsNotification() {
		msgType = "notification"
	}
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		Method: req.Method,
		ID:     req.ID.String(),
		Type:   msgType,
	})

	resp := h.eng.Dispatch(ctx, req)
	if resp == nil {
		// notification: no reply, failures included
		return
	}
	h.writeResponse(ctx, log, out, resp)
}

// writeResponse serializes one envelope and flushes immediately so a client
// reading line-by-line observes it without buffering delay.
func (h *Handler) writeResponse(ctx context.Context, log *slog.Logger, out *bufio.Writer, resp *jsonrpc.Response) {
	line, err := jsonrpc.EncodeResponse(resp)
	if err != nil {
		log.ErrorContext(ctx, "failed to encode response", slog.Any("error", err))
		return
	}
	if _, err := out.Write(line); err != nil {
		log.ErrorContext(ctx, "failed to write response", slog.Any("error", err))
		return
	}
	if err := out.Flush(); err != nil {
		log.ErrorContext(ctx, "failed to flush response", slog.Any("error", err))
		return
	}
	log.DebugContext(ctx, "sent response", slog.String("payload", string(line)))
}
