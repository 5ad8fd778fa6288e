package tools

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mcptoolbox/mcp-toolbox-go/toolbox"
)

// dialTimeout bounds the TCP connection attempt. A timeout yields a negative
// result, never a failed call.
const dialTimeout = 3 * time.Second

type isPortOpenArgs struct {
	Host string `json:"host" jsonschema:"description=Hostname or IP address to check"`
	Port int    `json:"port" jsonschema:"minimum=1,maximum=65535,description=Port number (1-65535)"`
}

type isPortOpenResult struct {
	Open bool `json:"open"`
}

func isPortOpen(ctx context.Context, args isPortOpenArgs) (any, error) {
	if args.Port < 1 || args.Port > 65535 {
		return nil, toolbox.InvalidArgsf("Port must be between 1 and 65535, got %d", args.Port)
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(args.Host, strconv.Itoa(args.Port)))
	if err != nil {
		return isPortOpenResult{Open: false}, nil
	}
	_ = conn.Close()
	return isPortOpenResult{Open: true}, nil
}

type validateURLArgs struct {
	URL string `json:"url" jsonschema:"description=URL to validate"`
}

type validateURLResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func validateURL(_ context.Context, args validateURLArgs) (any, error) {
	if strings.ContainsAny(args.URL, " \t\n") {
		return validateURLResult{Valid: false, Reason: "URL contains whitespace characters"}, nil
	}

	parsed, err := url.Parse(args.URL)
	if err != nil {
		return validateURLResult{Valid: false, Reason: "URL parsing error: " + err.Error()}, nil
	}
	if parsed.Scheme == "" {
		return validateURLResult{Valid: false, Reason: "Missing protocol (http:// or https://)"}, nil
	}
	if parsed.Host == "" {
		return validateURLResult{Valid: false, Reason: "Missing domain name"}, nil
	}
	return validateURLResult{Valid: true}, nil
}
