// Package mcp defines the wire-level types of the Model Context Protocol
// surface this gateway exposes: tool descriptors with their JSON-Schema-like
// input contracts, the tools/list and tools/call message shapes, and the
// initialize handshake. The types mirror the protocol JSON exactly; all
// behavior lives in the toolbox and transport packages.
package mcp
