// Package mcpservice provides the tool registry and schema builders an
// embedding application uses to describe its tools, plus the executor
// contract the engine calls to run them.
//
// Quick start:
//
//	reg.Register("echo", "Echo a message back to the caller", mcpservice.Schema(
//	    map[string]mcp.SchemaProperty{
//	        "message": mcpservice.Prop("string", "Text to echo"),
//	    },
//	    "message",
//	))
//
// Typed registration via reflection:
//
//	type EchoArgs struct {
//	    Message string `json:"message" jsonschema:"description=Text to echo"`
//	}
//	reg.Register("echo", "Echo a message back to the caller", mcpservice.SchemaFor[EchoArgs]())
//
// Execution is decoupled from registration: the server holds a single
// ToolExecutor capability and hands it every tools/call by name. Descriptors
// only drive discovery (tools/list); nothing validates arguments against the
// schema before the executor runs.
package mcpservice
