package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

// Request represents a JSON-RPC request (with an ID) or notification
// (without one).
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
	ID             *RequestID      `json:"id,omitempty"`
}

// IsNotification reports whether no response is expected for this request.
func (r *Request) IsNotification() bool {
	return r.ID.IsNil()
}

// Response represents a JSON-RPC response. The id field is always emitted,
// as null when the request could not be parsed, so exactly one of
// result/error plus an id appear on the wire.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
	ID             *RequestID      `json:"id"`
}

// NewResultResponse builds a successful JSON-RPC response object.
func NewResultResponse(id *RequestID, result any) (*Response, error) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Result:         resultBytes,
		ID:             id,
	}, nil
}

// NewErrorResponse builds an error JSON-RPC response with the given code.
func NewErrorResponse(id *RequestID, code ErrorCode, message string) *Response {
	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	}
}

// NewParseErrorResponse is the fixed envelope answering input that was not
// valid JSON. Per the JSON-RPC spec the id is null because no id could be
// recovered from the input.
func NewParseErrorResponse() *Response {
	return NewErrorResponse(nil, ErrorCodeParseError, "Parse error")
}

// DecodeRequest parses one message unit into a Request. The caller is
// expected to have established that data is syntactically valid JSON; an
// error here therefore means the value is structurally not a request object
// (e.g. a bare string or array), not a parse failure.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("not a request object: %w", err)
	}
	return &req, nil
}

// EncodeResponse serializes a response envelope as a single JSON line,
// including the trailing newline. Callers must flush the output stream after
// each write so a client reading line-by-line observes the response without
// buffering delay.
func EncodeResponse(resp *Response) ([]byte, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return append(b, '\n'), nil
}
