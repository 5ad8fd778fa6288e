package jsonrpc

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeRequestValid(t *testing.T) {
	req, rpcErr := DecodeRequest([]byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if req.Method != "tools/list" {
		t.Errorf("method = %q, want tools/list", req.Method)
	}
	if req.IsNotification() {
		t.Error("request with id must not be a notification")
	}
	if got := req.ID.String(); got != "1" {
		t.Errorf("id = %q, want 1", got)
	}
}

func TestDecodeRequestNotification(t *testing.T) {
	req, rpcErr := DecodeRequest([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if !req.IsNotification() {
		t.Error("request without id must be a notification")
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	_, rpcErr := DecodeRequest([]byte(`{not json`))
	if rpcErr == nil {
		t.Fatal("expected error")
	}
	if rpcErr.Code != ErrorCodeParseError {
		t.Errorf("code = %d, want %d", rpcErr.Code, ErrorCodeParseError)
	}
}

func TestDecodeRequestWrongVersion(t *testing.T) {
	_, rpcErr := DecodeRequest([]byte(`{"jsonrpc":"1.0","method":"ping","id":1}`))
	if rpcErr == nil {
		t.Fatal("expected error")
	}
	if rpcErr.Code != ErrorCodeInvalidRequest {
		t.Errorf("code = %d, want %d", rpcErr.Code, ErrorCodeInvalidRequest)
	}
}

func TestDecodeRequestMissingMethod(t *testing.T) {
	_, rpcErr := DecodeRequest([]byte(`{"jsonrpc":"2.0","id":1}`))
	if rpcErr == nil {
		t.Fatal("expected error")
	}
	if rpcErr.Code != ErrorCodeInvalidRequest {
		t.Errorf("code = %d, want %d", rpcErr.Code, ErrorCodeInvalidRequest)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"string", `"abc-123"`},
		{"integer", `42`},
		{"float", `1.5`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var id RequestID
			if err := json.Unmarshal([]byte(tc.in), &id); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			out, err := json.Marshal(&id)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tc.in {
				t.Errorf("round-trip = %s, want %s", out, tc.in)
			}
		})
	}
}

func TestRequestIDRejectsNonScalar(t *testing.T) {
	var id RequestID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatal("expected error for object id")
	}
}

func TestErrorResponseNullID(t *testing.T) {
	resp := NewErrorResponse(nil, ErrorCodeParseError, "Parse error")
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"id":null`) {
		t.Errorf("response must carry id:null, got %s", b)
	}
	if !strings.Contains(string(b), `-32700`) {
		t.Errorf("response must carry the parse error code, got %s", b)
	}
}

func TestResultResponsePreservesID(t *testing.T) {
	id := NewRequestID("req-9")
	resp, err := NewResultResponse(id, map[string]string{"ok": "yes"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Response
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := decoded.ID.String(); got != "req-9" {
		t.Errorf("id = %q, want req-9", got)
	}
	if decoded.Error != nil {
		t.Error("success response must not carry an error")
	}
}
