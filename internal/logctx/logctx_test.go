package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandleAddsRPCGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewTextHandler(&buf, nil)})

	ctx := WithRPCMessage(context.Background(), &RPCMessage{Method: "ping", ID: "1", Type: "request"})
	log.InfoContext(ctx, "handled")

	out := buf.String()
	for _, want := range []string{"rpc.method=ping", "rpc.id=1", "rpc.type=request"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q:\n%s", want, out)
		}
	}
}

// Logger.With derives a new handler via WithAttrs; the decoration must
// survive the derivation, not unwrap to the inner text handler.
func TestDerivedLoggerKeepsDecoration(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewTextHandler(&buf, nil)}).
		With(slog.String("server", "calc"))

	ctx := WithRPCMessage(context.Background(), &RPCMessage{Method: "tools/call", ID: "7", Type: "request"})
	ctx = WithToolCallData(ctx, &ToolCallData{ToolName: "add"})
	log.InfoContext(ctx, "tool ran")

	out := buf.String()
	for _, want := range []string{"server=calc", "rpc.method=tools/call", "tool.name=add"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q:\n%s", want, out)
		}
	}
}

func TestWithGroupKeepsDecoration(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewTextHandler(&buf, nil)}).
		WithGroup("app").
		With(slog.String("name", "calc"))

	ctx := WithRPCMessage(context.Background(), &RPCMessage{Method: "ping", ID: "2", Type: "request"})
	log.InfoContext(ctx, "handled")

	out := buf.String()
	if !strings.Contains(out, "app.name=calc") {
		t.Errorf("grouped attr missing:\n%s", out)
	}
	if !strings.Contains(out, "rpc.method=ping") {
		t.Errorf("rpc group missing after WithGroup:\n%s", out)
	}
}
