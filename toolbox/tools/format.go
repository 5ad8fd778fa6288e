package tools

import (
	"context"
	"encoding/json"

	"github.com/mcptoolbox/mcp-toolbox-go/toolbox"
	"sigs.k8s.io/yaml"
)

type yamlToJSONArgs struct {
	YAML string `json:"yaml" jsonschema:"description=YAML string to convert to JSON"`
}

type yamlToJSONResult struct {
	JSON string `json:"json"`
}

func yamlToJSON(_ context.Context, args yamlToJSONArgs) (any, error) {
	var data any
	if err := yaml.Unmarshal([]byte(args.YAML), &data); err != nil {
		return nil, toolbox.InvalidArgsf("Invalid YAML input: %v", err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return yamlToJSONResult{JSON: string(out)}, nil
}

type jsonToYAMLArgs struct {
	JSON string `json:"json" jsonschema:"description=JSON string to convert to YAML"`
}

type jsonToYAMLResult struct {
	YAML string `json:"yaml"`
}

func jsonToYAML(_ context.Context, args jsonToYAMLArgs) (any, error) {
	var data any
	if err := json.Unmarshal([]byte(args.JSON), &data); err != nil {
		return nil, toolbox.InvalidArgsf("Invalid JSON input: %v", err)
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, err
	}
	return jsonToYAMLResult{YAML: string(out)}, nil
}
