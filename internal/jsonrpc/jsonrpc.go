// Package jsonrpc carries the JSON-RPC 2.0 envelope shared by both transport
// bindings. It is deliberately server-only: the gateway decodes requests and
// encodes responses, it never issues its own calls.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the only JSON-RPC version the gateway speaks.
const ProtocolVersion = "2.0"

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

const (
	// ErrorCodeParseError indicates the peer sent bytes that do not decode
	// as a JSON-RPC document.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest indicates a decodable document that is not a
	// well-formed request.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound indicates an unknown method or tool name.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams indicates a capability rejected its arguments.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError indicates any unexpected failure inside the
	// gateway or a capability body.
	ErrorCodeInternalError ErrorCode = -32603
)

// Request is an inbound JSON-RPC request. A nil ID marks a notification: the
// request dispatches but no correlated response is ever written back.
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
	ID             *RequestID      `json:"id,omitempty"`
}

// IsNotification reports whether the request carries no correlation id.
func (r *Request) IsNotification() bool {
	return r.ID.IsNil()
}

// Response is an outbound JSON-RPC response. Exactly one of Result or Error is
// set. ID is serialized unconditionally so that parse failures, which have no
// originating id, still emit the JSON-RPC mandated "id": null.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
	ID             *RequestID      `json:"id"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// DecodeRequest parses one JSON-RPC request document. A decode failure maps to
// PARSE_ERROR at the transport boundary; a structurally invalid request (wrong
// version, missing method) maps to INVALID_REQUEST.
func DecodeRequest(data []byte) (*Request, *Error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &Error{Code: ErrorCodeParseError, Message: fmt.Sprintf("Parse error: %v", err)}
	}
	if req.JSONRPCVersion != ProtocolVersion {
		return nil, &Error{Code: ErrorCodeInvalidRequest, Message: fmt.Sprintf("Invalid request: expected jsonrpc %q, got %q", ProtocolVersion, req.JSONRPCVersion)}
	}
	if req.Method == "" {
		return nil, &Error{Code: ErrorCodeInvalidRequest, Message: "Invalid request: missing method"}
	}
	return &req, nil
}

// NewResultResponse builds a successful response correlated to id.
func NewResultResponse(id *RequestID, result any) (*Response, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &Response{JSONRPCVersion: ProtocolVersion, Result: b, ID: id}, nil
}

// NewErrorResponse builds an error response correlated to id. Pass a nil id
// when the originating request could not be decoded.
func NewErrorResponse(id *RequestID, code ErrorCode, message string) *Response {
	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Error:          &Error{Code: code, Message: message},
		ID:             id,
	}
}
