// Package server implements the MCP (Model Context Protocol) server that
// exposes the character flip pipeline as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load image and get metadata
//   - image_detect_characters: Report character regions without flipping
//   - image_flip_characters: Run the full pipeline, save and/or return the result
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process. Writing
// an output file evicts that path so a later call reads the new contents.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Logging goes to stderr; stdout carries only protocol messages.
package server
