// Package stdio implements the single-client pipe transport: newline-framed
// JSON-RPC 2.0 documents over a duplex byte-stream pair, by default the
// process's stdin and stdout.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 peer
//	Framing          : one JSON document per line
//	Ordering         : responses carry their correlation id; pipelined
//	                   requests may complete out of request order
//
// Every diagnostic goes to the injected slog logger (stderr by default) and
// never to the output stream. A single stray log line on stdout corrupts
// every subsequent document the peer tries to decode, so this separation is a
// hard correctness property of the binding.
package stdio
