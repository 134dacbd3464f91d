// Package stdio implements a minimal single-connection MCP transport over
// stdin/stdout. It is intended for embedding servers as subprocesses, local
// development, and environments where spawning a child process and piping
// JSON is simpler than running a network server.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Concurrency      : none; requests are handled strictly in arrival order
//	Framing          : newline-delimited JSON-RPC 2.0, with tolerance for
//	                   values pretty-printed across multiple lines
//	Output           : stdout is reserved for protocol messages; all
//	                   diagnostics go to the logger (stderr by default)
//
// Options allow supplying alternate io.Reader / io.Writer or a custom
// logger, which is how the test harness drives a handler over in-memory
// pipes.
//
// Most applications should not construct a Handler directly; the root
// package wires one from a Config:
//
//	srv, err := mcpstdio.New(mcpstdio.Config{...})
//	if err != nil { log.Fatal(err) }
//	if err := srv.Serve(context.Background()); err != nil { ... }
package stdio
