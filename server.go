// Package mcpstdio is a minimal framework for building Model Context
// Protocol servers that speak line-delimited JSON-RPC 2.0 over standard
// input/output.
//
// The embedding application supplies its identity, a one-time tool
// registration hook, and a tool executor capability; the framework owns the
// wire protocol: framing, envelope decoding, method dispatch, error-code
// mapping, and ordered flushing of responses.
//
//	srv, err := mcpstdio.New(mcpstdio.Config{
//	    Name:    "my-server",
//	    Version: "0.1.0",
//	    SetupTools: func(reg *mcpservice.ToolRegistry) {
//	        reg.Register("echo", "Echo a message", mcpservice.Schema(
//	            map[string]mcp.SchemaProperty{"message": mcpservice.Prop("string", "Text to echo")},
//	            "message",
//	        ))
//	    },
//	    Executor: mcpservice.ToolExecutorFunc(runTool),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = srv.Serve(context.Background())
//
// Setting MCP_DEBUG=1 (or true, case-insensitive) logs every received
// request and emitted response to stderr; stdout stays reserved for
// protocol output.
package mcpstdio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/joeshaw/envdecode"

	"github.com/lineframe/mcp-stdio-go/internal/logctx"
	"github.com/lineframe/mcp-stdio-go/mcp"
	"github.com/lineframe/mcp-stdio-go/mcpservice"
	"github.com/lineframe/mcp-stdio-go/stdio"
)

// Aliases so simple embedders only import this package.
type (
	// ToolExecutor is the capability that runs tools/call invocations.
	ToolExecutor = mcpservice.ToolExecutor
	// ToolExecutorFunc adapts a plain function to ToolExecutor.
	ToolExecutorFunc = mcpservice.ToolExecutorFunc
)

// Config describes an embedding application to the framework. Name and
// Version become the serverInfo identity advertised during initialize.
type Config struct {
	Name    string
	Version string

	// Instructions is optional free-form guidance included in the
	// initialize result.
	Instructions string

	// SetupTools is invoked exactly once during New to populate the tool
	// registry. The registry is effectively immutable afterwards.
	SetupTools func(reg *mcpservice.ToolRegistry)

	// Executor runs tools/call invocations. Required if any tool is
	// registered.
	Executor mcpservice.ToolExecutor

	// Reader and Writer override the process streams, primarily for tests.
	Reader io.Reader
	Writer io.Writer

	// LogWriter overrides the diagnostic side channel (stderr by default).
	// It must never alias the protocol writer.
	LogWriter io.Writer
}

// envConfig is the once-at-construction environment surface.
type envConfig struct {
	Debug bool `env:"MCP_DEBUG,default=false"`
}

// Server drives one stdio session per process.
type Server struct {
	handler  *stdio.Handler
	registry *mcpservice.ToolRegistry
	log      *slog.Logger
	debug    bool
}

// New builds a server: decodes the environment toggle, constructs the
// logger, runs the SetupTools hook, and wires the stdio handler.
func New(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, errors.New("mcpstdio: Config.Name is required")
	}

	var env envConfig
	// a decode error means an unparseable value; fall back to defaults and
	// report it once the logger exists
	envErr := envdecode.Decode(&env)

	logWriter := cfg.LogWriter
	if logWriter == nil {
		logWriter = os.Stderr
	}
	level := slog.LevelInfo
	if env.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(logctx.Handler{
		Handler: slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}),
	}).With(slog.String("server", cfg.Name))
	if envErr != nil {
		log.Warn("ignoring invalid environment configuration", slog.Any("error", envErr))
	}

	reg := mcpservice.NewToolRegistry()
	if cfg.SetupTools != nil {
		cfg.SetupTools(reg)
	}

	opts := []stdio.Option{
		stdio.WithLogger(log),
		stdio.WithInstructions(cfg.Instructions),
	}
	if cfg.Reader != nil {
		opts = append(opts, stdio.WithReader(cfg.Reader))
	}
	if cfg.Writer != nil {
		opts = append(opts, stdio.WithWriter(cfg.Writer))
	}

	info := mcp.ImplementationInfo{Name: cfg.Name, Version: cfg.Version}
	h := stdio.NewHandler(info, reg, cfg.Executor, opts...)

	return &Server{handler: h, registry: reg, log: log, debug: env.Debug}, nil
}

// Registry exposes the tool registry, e.g. for inspection in tests.
func (s *Server) Registry() *mcpservice.ToolRegistry {
	return s.registry
}

// Serve runs the session loop until the input stream is exhausted. Errors
// are fully logged before being returned; callers embedding this in a CLI
// should still exit 0, since protocol errors travel as JSON-RPC envelopes
// and a dead session is not a process failure.
func (s *Server) Serve(ctx context.Context) error {
	if s.debug {
		s.log.Debug("debug logging enabled")
	}
	return s.handler.Serve(ctx)
}
