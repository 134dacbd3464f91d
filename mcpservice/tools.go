package mcpservice

import (
	"context"
	"sync"

	"github.com/lineframe/mcp-stdio-go/mcp"
)

// ToolExecutor is the capability the embedding application supplies to run
// tools. Implementations receive the tool name and the decoded argument
// mapping and return the textual result. A returned error's message is
// surfaced verbatim to the client in a -32000 error envelope.
//
// Executors are invoked synchronously on the session loop; a hung executor
// hangs the session. There is no cancellation beyond the context.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// ToolExecutorFunc adapts a plain function to the ToolExecutor interface.
type ToolExecutorFunc func(ctx context.Context, name string, args map[string]any) (string, error)

func (f ToolExecutorFunc) ExecuteTool(ctx context.Context, name string, args map[string]any) (string, error) {
	return f(ctx, name, args)
}

// ToolRegistry owns the ordered set of tool descriptors a server advertises.
// It is populated once during server construction and read on every
// tools/list; the registry itself never dispatches calls.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools []mcp.Tool
	index map[string]int // name -> position in tools
}

// NewToolRegistry constructs an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{index: make(map[string]int)}
}

// Register inserts or overwrites the tool entry keyed by name. Last write
// wins: re-registering an existing name replaces its descriptor in place
// without growing the registry or disturbing registration order.
func (tr *ToolRegistry) Register(name, description string, inputSchema mcp.ToolInputSchema) {
	if inputSchema.Properties == nil {
		// properties must serialize as {}, never null or []
		inputSchema.Properties = map[string]mcp.SchemaProperty{}
	}
	if inputSchema.Type == "" {
		inputSchema.Type = "object"
	}

	tool := mcp.Tool{Name: name, Description: description, InputSchema: inputSchema}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if i, ok := tr.index[name]; ok {
		tr.tools[i] = tool
		return
	}
	tr.index[name] = len(tr.tools)
	tr.tools = append(tr.tools, tool)
}

// Snapshot returns a copy of the current tool descriptors in registration
// order.
func (tr *ToolRegistry) Snapshot() []mcp.Tool {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	out := make([]mcp.Tool, len(tr.tools))
	copy(out, tr.tools)
	return out
}

// Len returns the number of distinct registered tool names.
func (tr *ToolRegistry) Len() int {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return len(tr.tools)
}

// TextResult wraps a tool's string output as the single-text-block result
// shape clients expect from tools/call.
func TextResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: s}}}
}
