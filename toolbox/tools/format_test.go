package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mcptoolbox/mcp-toolbox-go/toolbox"
)

func invoke(t *testing.T, name, args string) (any, error) {
	t.Helper()
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h, ok := reg.Lookup(name)
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	return h(context.Background(), json.RawMessage(args))
}

func TestYAMLToJSON(t *testing.T) {
	v, err := invoke(t, "yaml_to_json", `{"yaml":"name: raj\nrole: engineer"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, ok := v.(yamlToJSONResult)
	if !ok {
		t.Fatalf("result type %T", v)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(res.JSON), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if decoded["name"] != "raj" || decoded["role"] != "engineer" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestYAMLToJSONNested(t *testing.T) {
	v, err := invoke(t, "yaml_to_json", `{"yaml":"server:\n  host: localhost\n  ports:\n    - 80\n    - 443"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := v.(yamlToJSONResult)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(res.JSON), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	server, ok := decoded["server"].(map[string]any)
	if !ok {
		t.Fatalf("server = %v", decoded["server"])
	}
	ports, ok := server["ports"].([]any)
	if !ok || len(ports) != 2 {
		t.Errorf("ports = %v", server["ports"])
	}
}

func TestYAMLToJSONInvalidInput(t *testing.T) {
	_, err := invoke(t, "yaml_to_json", `{"yaml":"key: [unclosed"}`)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !toolbox.IsArgumentError(err) {
		t.Errorf("err = %v, want ArgumentError", err)
	}
	if !strings.Contains(err.Error(), "Invalid YAML input") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestJSONToYAML(t *testing.T) {
	v, err := invoke(t, "json_to_yaml", `{"json":"{\"name\": \"raj\", \"role\": \"engineer\"}"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := v.(jsonToYAMLResult)
	if !ok {
		t.Fatalf("result type %T", v)
	}
	if !strings.Contains(res.YAML, "name: raj") || !strings.Contains(res.YAML, "role: engineer") {
		t.Errorf("yaml = %q", res.YAML)
	}
}

func TestJSONToYAMLInvalidInput(t *testing.T) {
	_, err := invoke(t, "json_to_yaml", `{"json":"{broken"}`)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !toolbox.IsArgumentError(err) {
		t.Errorf("err = %v, want ArgumentError", err)
	}
	if !strings.Contains(err.Error(), "Invalid JSON input") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestFormatRoundTrip(t *testing.T) {
	v, err := invoke(t, "json_to_yaml", `{"json":"{\"a\": 1, \"b\": [true, null]}"}`)
	if err != nil {
		t.Fatalf("json_to_yaml: %v", err)
	}
	yamlOut := v.(jsonToYAMLResult).YAML

	argBytes, err := json.Marshal(map[string]string{"yaml": yamlOut})
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	v, err = invoke(t, "yaml_to_json", string(argBytes))
	if err != nil {
		t.Fatalf("yaml_to_json: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(v.(yamlToJSONResult).JSON), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["a"] != float64(1) {
		t.Errorf("a = %v", decoded["a"])
	}
}
