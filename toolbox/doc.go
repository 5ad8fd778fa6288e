// Package toolbox is the protocol gateway core: a read-only registry of
// named, schema-described tools and the single dispatch point that resolves
// JSON-RPC requests against it.
//
// The registry is populated once at startup and never mutated afterwards, so
// concurrent reads from any number of transport goroutines are safe without
// locking. The dispatcher presents one uniform invoke contract to both
// transport bindings and guarantees that no tool failure, however unexpected,
// escapes as anything other than a JSON-RPC error response.
package toolbox
