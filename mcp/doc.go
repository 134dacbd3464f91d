// Package mcp contains protocol data types and constants shared across the
// transport and the dispatch engine. It mirrors the wire representation
// specified by the Model Context Protocol while keeping the surface
// Go-friendly (exported structs with json tags, string constants for method
// names).
//
// The package is intentionally free of transport logic: the stdio transport
// imports these types but implements its own framing and session handling.
// Likewise the registry package (mcpservice) constructs schemas and results
// using these concrete types and hands them to the engine for JSON-RPC
// serialization.
//
// # Method Names
//
// JSON-RPC method and notification names are enumerated as Method constants
// (e.g. ToolsListMethod). Using the constants avoids typographical mistakes
// and gives the dispatch table a single point of truth.
//
// # Capabilities
//
// ClientCapabilities and ServerCapabilities capture negotiated feature sets.
// They are thin structs shaped to match the JSON spec. Capability advertising
// happens during the initialize exchange; transports simply marshal these
// types.
//
// # Compatibility
//
// The LatestProtocolVersion constant reflects the most recent protocol date
// the library targets. SupportedProtocolVersions lists every revision the
// engine will echo back during negotiation; anything else is answered with
// the latest version rather than rejected.
package mcp
