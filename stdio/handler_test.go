package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/lineframe/mcp-stdio-go/internal/jsonrpc"
	"github.com/lineframe/mcp-stdio-go/mcp"
	"github.com/lineframe/mcp-stdio-go/mcpservice"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runScript feeds the handler a fixed input script, lets the loop run to
// EOF, and returns the emitted output lines.
func runScript(t *testing.T, exec mcpservice.ToolExecutor, setup func(reg *mcpservice.ToolRegistry), script string) []string {
	t.Helper()

	reg := mcpservice.NewToolRegistry()
	if setup != nil {
		setup(reg)
	}

	var out bytes.Buffer
	h := NewHandler(
		mcp.ImplementationInfo{Name: "test-server", Version: "0.0.1"},
		reg,
		exec,
		WithIO(strings.NewReader(script), &out),
		WithLogger(testLogger()),
	)
	if err := h.Serve(context.Background()); err != nil {
		t.Fatalf("Serve returned error: %v", err)
	}

	var lines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func decodeResponse(t *testing.T, line string) *jsonrpc.Response {
	t.Helper()
	var resp jsonrpc.Response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		t.Fatalf("output line is not a response envelope: %v\n%s", err, line)
	}
	return &resp
}

func TestEmptyInputExitsCleanly(t *testing.T) {
	lines := runScript(t, nil, nil, "")
	if len(lines) != 0 {
		t.Errorf("empty input must produce zero output lines, got %v", lines)
	}
}

func TestInitializeScenario(t *testing.T) {
	lines := runScript(t, nil, nil,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18"}}`+"\n")

	if len(lines) != 1 {
		t.Fatalf("expected one response line, got %d", len(lines))
	}
	resp := decodeResponse(t, lines[0])
	if resp.Error != nil {
		t.Fatalf("initialize failed: %+v", resp.Error)
	}

	var res mcp.InitializeResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("bad initialize result: %v", err)
	}
	if res.ProtocolVersion != "2025-06-18" {
		t.Errorf("protocolVersion = %q, want 2025-06-18", res.ProtocolVersion)
	}
	if res.ServerInfo.Name != "test-server" {
		t.Errorf("serverInfo.name = %q, want test-server", res.ServerInfo.Name)
	}
}

func TestUnknownMethodScenario(t *testing.T) {
	lines := runScript(t, nil, nil,
		`{"jsonrpc":"2.0","id":7,"method":"frobnicate"}`+"\n")

	resp := decodeResponse(t, lines[0])
	if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeMethodNotFound {
		t.Fatalf("expected -32601, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "frobnicate") {
		t.Errorf("error message must contain the method name: %q", resp.Error.Message)
	}
}

func TestToolCallFailureScenario(t *testing.T) {
	exec := mcpservice.ToolExecutorFunc(func(ctx context.Context, name string, args map[string]any) (string, error) {
		return "", fmt.Errorf("Unknown tool: %s", name)
	})
	lines := runScript(t, exec, nil,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"bogus","arguments":{}}}`+"\n")

	resp := decodeResponse(t, lines[0])
	if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeServerError {
		t.Fatalf("expected -32000, got %+v", resp.Error)
	}
	if resp.Error.Message != "Unknown tool: bogus" {
		t.Errorf("tool failure must surface verbatim, got %q", resp.Error.Message)
	}
}

func TestResponsesKeepArrivalOrder(t *testing.T) {
	exec := mcpservice.ToolExecutorFunc(func(ctx context.Context, name string, args map[string]any) (string, error) {
		return "ran " + name, nil
	})
	script := strings.Join([]string{
		`{"jsonrpc":"2.0","id":"a","method":"tools/call","params":{"name":"one"}}`,
		`{"jsonrpc":"2.0","id":"b","method":"ping"}`,
		`{"jsonrpc":"2.0","id":"c","method":"tools/list"}`,
	}, "\n") + "\n"

	lines := runScript(t, exec, nil, script)
	if len(lines) != 3 {
		t.Fatalf("expected three responses, got %d", len(lines))
	}
	for i, wantID := range []string{`"a"`, `"b"`, `"c"`} {
		var envelope struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal([]byte(lines[i]), &envelope); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		if string(envelope.ID) != wantID {
			t.Errorf("response %d has id %s, want %s", i, envelope.ID, wantID)
		}
	}
}

func TestNotificationsProduceNoOutput(t *testing.T) {
	script := strings.Join([]string{
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":"1"}}`,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	}, "\n") + "\n"

	lines := runScript(t, nil, nil, script)
	if len(lines) != 1 {
		t.Fatalf("notifications must not be answered; got %d lines: %v", len(lines), lines)
	}
}

func TestMultiLineRequestIsHandled(t *testing.T) {
	script := "{\n  \"jsonrpc\": \"2.0\",\n  \"id\": 1,\n  \"method\": \"ping\"\n}\n"

	lines := runScript(t, nil, nil, script)
	if len(lines) != 1 {
		t.Fatalf("expected one response to the pretty-printed request, got %d", len(lines))
	}
	resp := decodeResponse(t, lines[0])
	if resp.Error != nil {
		t.Errorf("ping failed: %+v", resp.Error)
	}
}

func TestTrailingIncompleteInputIsDropped(t *testing.T) {
	script := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" + `{"jsonrpc": "2.0", "truncated`

	lines := runScript(t, nil, nil, script)
	if len(lines) != 1 {
		t.Fatalf("trailing garbage must be dropped silently, got %d lines", len(lines))
	}
}

func TestNonObjectJSONGetsServerError(t *testing.T) {
	lines := runScript(t, nil, nil, `"just a string"`+"\n")

	if len(lines) != 1 {
		t.Fatalf("expected one error response, got %d", len(lines))
	}
	resp := decodeResponse(t, lines[0])
	if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeServerError {
		t.Fatalf("expected -32000, got %+v", resp.Error)
	}
	if !strings.HasPrefix(resp.Error.Message, "Server error: ") {
		t.Errorf("dispatch fault must carry the Server error prefix: %q", resp.Error.Message)
	}
	if !resp.ID.IsNil() {
		t.Errorf("no id could be recovered, so id must be null")
	}
}

func TestMalformedJSONGetsParseError(t *testing.T) {
	// The framer never emits invalid JSON, so exercise the codec contract
	// at the message level the way a framer-bypassing transport would.
	var out bytes.Buffer
	h := NewHandler(
		mcp.ImplementationInfo{Name: "test-server", Version: "0.0.1"},
		mcpservice.NewToolRegistry(),
		nil,
		WithLogger(testLogger()),
	)

	bw := bufio.NewWriter(&out)
	h.handleMessage(context.Background(), testLogger(), []byte(`{nope}`), bw)

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected a parse error response")
	}

	var envelope struct {
		ID    json.RawMessage `json:"id"`
		Error *jsonrpc.Error  `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &envelope); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != jsonrpc.ErrorCodeParseError {
		t.Fatalf("expected -32700, got %+v", envelope.Error)
	}
	if string(envelope.ID) != "null" {
		t.Errorf("parse error id = %s, want null", envelope.ID)
	}
	if envelope.Error.Message != "Parse error" {
		t.Errorf("parse error message = %q, want %q", envelope.Error.Message, "Parse error")
	}
}

func TestExecutorPanicDoesNotEndSession(t *testing.T) {
	exec := mcpservice.ToolExecutorFunc(func(ctx context.Context, name string, args map[string]any) (string, error) {
		if name == "boom" {
			panic("kaboom")
		}
		return "survived", nil
	})
	script := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"boom"}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"ok"}}`,
	}, "\n") + "\n"

	lines := runScript(t, exec, nil, script)
	if len(lines) != 2 {
		t.Fatalf("session must survive a panicking executor, got %d lines", len(lines))
	}

	first := decodeResponse(t, lines[0])
	if first.Error == nil || first.Error.Code != jsonrpc.ErrorCodeServerError {
		t.Fatalf("expected -32000 for the panic, got %+v", first.Error)
	}
	if !strings.HasPrefix(first.Error.Message, "Server error: ") {
		t.Errorf("panic must be reported with the Server error prefix: %q", first.Error.Message)
	}

	second := decodeResponse(t, lines[1])
	if second.Error != nil {
		t.Errorf("second call should succeed: %+v", second.Error)
	}
}

// TestResponseFlushedWhileStreamOpen drives the handler over pipes to check
// that each response is flushed as soon as it is produced rather than at
// EOF.
func TestResponseFlushedWhileStreamOpen(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	h := NewHandler(
		mcp.ImplementationInfo{Name: "test-server", Version: "0.0.1"},
		mcpservice.NewToolRegistry(),
		nil,
		WithIO(inR, outW),
		WithLogger(testLogger()),
	)

	done := make(chan error, 1)
	go func() { done <- h.Serve(context.Background()) }()

	if _, err := inW.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	lineCh := make(chan string, 1)
	go func() {
		sc := bufio.NewScanner(outR)
		if sc.Scan() {
			lineCh <- sc.Text()
		}
	}()

	select {
	case line := <-lineCh:
		resp := decodeResponse(t, line)
		if resp.Error != nil {
			t.Errorf("ping failed: %+v", resp.Error)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout: response was not flushed while the stream was still open")
	}

	_ = inW.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout: Serve did not return after EOF")
	}
	_ = outW.Close()
}
