// Package server implements the MCP (Model Context Protocol) server for seat
// inspection.
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
//   - seat_rooms_list: rooms in the registry with capacity and seat count
//   - seat_room_get: one room with its stored seats
//   - seat_room_extract: run extraction for one room without saving it,
//     optionally writing a diagnostic overlay
//   - seat_pixel_classify: colour and classifier verdict at one pixel, for
//     tuning the outline and ink thresholds
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Extraction problems that still produce seats (no outline, OCR failure, a
// short candidate pool) are not errors; they are reported in the result's
// status and warnings.
package server
