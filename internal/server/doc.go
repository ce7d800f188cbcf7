// Package server implements the MCP (Model Context Protocol) server that
// exposes the cartoon pipeline as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: logrus, on stderr
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Decode an image (path or base64) and report its metadata
//   - image_cartoonify: Run the cartoon pipeline and return the result as
//     base64 or write it to a file, with palette, seed and stage timings
//   - cartoon_parameters: Accepted ranges and defaults for the knobs
//
// Images are decoded fresh on every call; nothing is cached between calls.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed arguments, out-of-range parameters and
//     undecodable images; -32000 for any other tool failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// Every tool call is logged with a trace_id, which image_cartoonify also
// returns in its result.
//
// # Usage
//
//	srv := server.New(logger, version)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal(err)
//	}
package server
