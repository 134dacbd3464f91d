// Package engine implements the MCP method dispatcher: a static table
// mapping method names to handlers, built once at construction. It is
// stateless between requests apart from the registry snapshot it reads.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lineframe/mcp-stdio-go/internal/jsonrpc"
	"github.com/lineframe/mcp-stdio-go/internal/logctx"
	"github.com/lineframe/mcp-stdio-go/mcp"
	"github.com/lineframe/mcp-stdio-go/mcpservice"
)

// methodHandler produces a result value for a request, or a protocol error.
type methodHandler func(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error)

// notificationHandler consumes a notification. No response is ever produced,
// so failures are logged and dropped per JSON-RPC notification semantics.
type notificationHandler func(ctx context.Context, params json.RawMessage)

// Config carries the engine's dependencies, all supplied by the embedding
// application at construction.
type Config struct {
	// Info identifies the server in initialize responses.
	Info mcp.ImplementationInfo
	// Instructions is optional free-form guidance surfaced to clients during
	// initialize.
	Instructions string
	// Registry is the tool registry read by tools/list.
	Registry *mcpservice.ToolRegistry
	// Executor runs tools/call invocations.
	Executor mcpservice.ToolExecutor
	// Log receives diagnostic output. Defaults to slog.Default().
	Log *slog.Logger
}

// Engine routes decoded JSON-RPC requests to method handlers and shapes
// their results into response envelopes.
type Engine struct {
	info          mcp.ImplementationInfo
	instructions  string
	registry      *mcpservice.ToolRegistry
	executor      mcpservice.ToolExecutor
	log           *slog.Logger
	methods       map[mcp.Method]methodHandler
	notifications map[mcp.Method]notificationHandler
}

// New constructs an engine and resolves its method table once. The table is
// never mutated afterwards.
func New(cfg Config) *Engine {
	e := &Engine{
		info:         cfg.Info,
		instructions: cfg.Instructions,
		registry:     cfg.Registry,
		executor:     cfg.Executor,
		log:          cfg.Log,
	}
	if e.registry == nil {
		e.registry = mcpservice.NewToolRegistry()
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	e.methods = map[mcp.Method]methodHandler{
		mcp.InitializeMethod:    e.handleInitialize,
		mcp.ToolsListMethod:     e.handleToolsList,
		mcp.ToolsCallMethod:     e.handleToolsCall,
		mcp.ResourcesListMethod: e.handleResourcesList,
		mcp.PromptsListMethod:   e.handlePromptsList,
		mcp.PingMethod:          e.handlePing,
	}
	e.notifications = map[mcp.Method]notificationHandler{
		mcp.InitializedNotificationMethod: e.handleInitialized,
		mcp.CancelledNotificationMethod:   e.handleCancelled,
	}
	return e
}

// Dispatch routes one decoded request. It returns nil when no response is
// due (notifications). Any panic escaping a handler is confined here and
// answered with a -32000 "Server error: ..." envelope so a single bad
// request never takes down the session.
func (e *Engine) Dispatch(ctx context.Context, req *jsonrpc.Request) (resp *jsonrpc.Response) {
	defer func() {
		if r := recover(); r != nil {
			e.log.ErrorContext(ctx, "panic while dispatching request", slog.Any("panic", r))
			if req.IsNotification() {
				// notification failures are dropped by design
				resp = nil
				return
			}
			resp = jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeServerError, fmt.Sprintf("Server error: %v", r))
		}
	}()

	method := mcp.Method(req.Method)

	if req.IsNotification() {
		if h, ok := e.notifications[method]; ok {
			h(ctx, req.Params)
		} else {
			e.log.DebugContext(ctx, "ignoring unrecognized notification")
		}
		return nil
	}

	h, ok := e.methods[method]
	if !ok {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}

	result, rpcErr := h(ctx, req.Params)
	if rpcErr != nil {
		return jsonrpc.NewErrorResponse(req.ID, rpcErr.Code, rpcErr.Message)
	}

	out, err := jsonrpc.NewResultResponse(req.ID, result)
	if err != nil {
		e.log.ErrorContext(ctx, "failed to encode result", slog.Any("error", err))
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}
	return out
}

// serverError shapes a fault surfaced while resolving a known method's
// handler or params. Clients pattern-match on the "Server error: " prefix,
// which distinguishes these from raw tool failures sharing the same code.
func serverError(err error) *jsonrpc.Error {
	return &jsonrpc.Error{Code: jsonrpc.ErrorCodeServerError, Message: fmt.Sprintf("Server error: %v", err)}
}

func (e *Engine) handleInitialize(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error) {
	var initReq mcp.InitializeRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initReq); err != nil {
			return nil, serverError(err)
		}
	}

	// Echo a supported requested version; otherwise substitute the latest.
	version := initReq.ProtocolVersion
	if !mcp.IsSupportedProtocolVersion(version) {
		version = mcp.LatestProtocolVersion
	}

	e.log.DebugContext(ctx, "initialize",
		slog.String("client_name", initReq.ClientInfo.Name),
		slog.String("requested_version", initReq.ProtocolVersion),
		slog.String("negotiated_version", version),
	)

	return mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities: mcp.ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged"`
			}{ListChanged: true},
			Resources: &struct{}{},
			Prompts:   &struct{}{},
		},
		ServerInfo:   e.info,
		Instructions: e.instructions,
	}, nil
}

func (e *Engine) handleToolsList(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error) {
	return mcp.ListToolsResult{Tools: e.registry.Snapshot()}, nil
}

func (e *Engine) handleToolsCall(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error) {
	var call struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &call); err != nil {
			return nil, serverError(err)
		}
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}

	if e.executor == nil {
		return nil, serverError(fmt.Errorf("no tool executor configured"))
	}

	ctx = logctx.WithToolCallData(ctx, &logctx.ToolCallData{ToolName: call.Name})
	e.log.DebugContext(ctx, "executing tool")

	text, err := e.executor.ExecuteTool(ctx, call.Name, call.Arguments)
	if err != nil {
		// tool failures are surfaced verbatim, no prefix
		return nil, &jsonrpc.Error{Code: jsonrpc.ErrorCodeServerError, Message: err.Error()}
	}
	return mcpservice.TextResult(text), nil
}

func (e *Engine) handleResourcesList(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error) {
	return mcp.ListResourcesResult{Resources: []mcp.Resource{}}, nil
}

func (e *Engine) handlePromptsList(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error) {
	return mcp.ListPromptsResult{Prompts: []mcp.Prompt{}}, nil
}

func (e *Engine) handlePing(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error) {
	return mcp.EmptyResult{}, nil
}

func (e *Engine) handleInitialized(ctx context.Context, params json.RawMessage) {
	e.log.DebugContext(ctx, "client initialized")
}

func (e *Engine) handleCancelled(ctx context.Context, params json.RawMessage) {
	var p mcp.CancelledNotificationParams
	_ = json.Unmarshal(params, &p)
	// cancellation is acknowledged but never interrupts in-flight work
	e.log.DebugContext(ctx, "request cancelled by client",
		slog.String("request_id", p.RequestID),
		slog.String("reason", p.Reason),
	)
}
