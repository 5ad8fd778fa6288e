// Package tools provides the builtin capabilities registered with the
// gateway: format conversion (YAML/JSON), text processing (base64, SHA-256),
// and network utilities (TCP port probing, URL validation). Each tool is a
// pure or I/O-bound function with a typed argument struct; schemas are
// reflected from the structs at registration time.
package tools

import (
	"github.com/mcptoolbox/mcp-toolbox-go/toolbox"
)

// NewRegistry builds the builtin tool registry. Listing order is stable and
// matches registration order here.
func NewRegistry() (*toolbox.Registry, error) {
	return toolbox.NewRegistry(
		toolbox.NewTool("yaml_to_json", yamlToJSON,
			toolbox.WithDescription("Convert YAML string to JSON format. Useful for configuration file transformations and data interchange.")),
		toolbox.NewTool("json_to_yaml", jsonToYAML,
			toolbox.WithDescription("Convert JSON string to YAML format. YAML is more human-readable and commonly used in configuration files.")),
		toolbox.NewTool("base64_encode", base64Encode,
			toolbox.WithDescription("Encode text string to base64 format. Used for representing binary data in ASCII format.")),
		toolbox.NewTool("sha256_hash", sha256Hash,
			toolbox.WithDescription("Compute SHA256 cryptographic hash of text. Produces a 64-character hexadecimal hash string.")),
		toolbox.NewTool("is_port_open", isPortOpen,
			toolbox.WithDescription("Check if a TCP port is open on a host. Useful for service availability and network diagnostics. Times out after 3 seconds.")),
		toolbox.NewTool("validate_url", validateURL,
			toolbox.WithDescription("Validate URL format and structure. Checks for protocol, domain, and invalid characters.")),
	)
}
