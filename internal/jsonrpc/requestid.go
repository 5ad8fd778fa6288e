package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// RequestID is an opaque correlation token linking a request to its outcome.
// JSON-RPC allows string or numeric ids; both round-trip losslessly.
type RequestID struct {
	value any
}

// NewRequestID wraps a string or numeric value as a correlation id. Any other
// type yields a nil-valued id.
func NewRequestID(value any) *RequestID {
	switch value.(type) {
	case string, int, int32, int64, float32, float64:
		return &RequestID{value: value}
	default:
		return &RequestID{}
	}
}

// IsNil reports whether the id is absent, i.e. the message is a notification.
func (id *RequestID) IsNil() bool {
	return id == nil || id.value == nil
}

// Value returns the underlying string or numeric value, or nil.
func (id *RequestID) Value() any {
	if id == nil {
		return nil
	}
	return id.value
}

// String renders the id for logging. Nil ids render empty.
func (id *RequestID) String() string {
	if id.IsNil() {
		return ""
	}
	if s, ok := id.value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", id.value)
}

func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id == nil || id.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

func (id *RequestID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.value = nil
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num == float64(int64(num)) {
			id.value = int64(num)
		} else {
			id.value = num
		}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		id.value = str
		return nil
	}

	return fmt.Errorf("JSON-RPC ID must be a string or number, got: %s", string(data))
}
