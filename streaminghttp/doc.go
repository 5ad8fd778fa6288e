// Package streaminghttp implements the multi-client push transport: a
// long-lived Server-Sent Events observer stream, a POST request channel, and
// a health probe, sharing one dispatcher with the pipe transport.
//
// Surfaces
//
//	GET  /sse      : observer stream; "data: <json>\n\n" frames, comment
//	                 keepalives while idle
//	POST /messages : one JSON-RPC request per call; the JSON-RPC response is
//	                 the response body
//	GET  /health   : {"status","active_connections"}
//
// Every successful tools/call outcome is both returned to the POST caller and
// broadcast to all open observers as a tool_result event. The connection
// registry is the only state shared between the two surfaces; broadcasts
// snapshot the observer set and never block on a slow consumer.
package streaminghttp
