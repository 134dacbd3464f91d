package mcp

import "encoding/json"

// Method is an MCP method identifier used in JSON-RPC messages.
type Method string

// MCP method names and notifications handled by the engine.
const (
	// Initialization
	InitializeMethod              Method = "initialize"
	InitializedNotificationMethod Method = "notifications/initialized"

	// Tools
	ToolsListMethod Method = "tools/list"
	ToolsCallMethod Method = "tools/call"

	// Resources
	ResourcesListMethod Method = "resources/list"

	// Prompts
	PromptsListMethod Method = "prompts/list"

	// General
	PingMethod                  Method = "ping"
	CancelledNotificationMethod Method = "notifications/cancelled"
)

// InitializeRequest starts the MCP initialization handshake.
type InitializeRequest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      ImplementationInfo `json:"clientInfo"`
}

// InitializeResult returns negotiated capabilities and server info.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ImplementationInfo `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitzero"`
}

// ListToolsResult returns the available tools in registration order.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolRequestReceived is the server-received representation for a tool
// call. Arguments stays raw until the engine hands it to the executor.
type CallToolRequestReceived struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult represents a tool invocation result.
type CallToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitzero"`
}

// ListResourcesResult returns the available resources. The base engine
// always returns an empty (non-null) list.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ListPromptsResult returns the available prompts. The base engine always
// returns an empty (non-null) list.
type ListPromptsResult struct {
	Prompts []Prompt `json:"prompts"`
}

// EmptyResult is returned for operations that do not return data, e.g. ping.
type EmptyResult struct{}

// CancelledNotificationParams informs the peer that a request was canceled.
// The engine acknowledges the notification in logs only; in-flight work is
// never interrupted.
type CancelledNotificationParams struct {
	RequestID string `json:"requestId"`
	Reason    string `json:"reason,omitzero"`
}
