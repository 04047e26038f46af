// Package server implements the MCP (Model Context Protocol) server for
// test-strip analysis.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - Input: JSON-RPC requests on stdin
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr only, so they never corrupt the protocol stream
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load a photograph and get its metadata
//   - strip_analyze: Full analysis report for a strip photograph
//   - strip_assess_quality: Lighting, sharpness, noise, contrast and white balance scores
//   - strip_detect_pads: Pad rectangles and row layout
//   - strip_edge_detect: Canny edge map as base64 PNG
//   - strip_match_color: Read one hex color against a parameter's curve
//   - strip_calibration: The active calibration table
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server, so
// repeated tool calls on one photograph decode it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000 and the Go error string in data. Unknown methods return
// -32601 and malformed tools/call params -32602.
package server
