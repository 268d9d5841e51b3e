// Package server implements the MCP (Model Context Protocol) server for image cropping and compression.
//
// This package provides a JSON-RPC 2.0 server that exposes one interactive
// editing session through the MCP protocol. A client opens an image, draws
// or sets a selection in display coordinates, crops, compresses to a byte
// budget, and saves, the same workflow a desktop crop tool offers.
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
// Session:
//   - image_load: Open the working image
//   - image_dimensions: Width and height of a file or the working image
//   - image_info: Session snapshot (sizes, transform, selection, handles)
//   - viewport_fit: Fit the image into a display area
//
// Selection:
//   - pointer: Press, drag, and release in display coordinates
//   - selection_get, selection_set, selection_clear, selection_commit
//   - center_set, center_clear: Center point for fixed-size crops
//
// Crop Operations:
//   - image_crop: Crop to an image-space rectangle
//   - image_crop_quadrant: Crop to a named region
//   - image_center_crop: Fixed-size crop around the center point
//
// Compression and Output:
//   - image_compress: Fit the working image into a byte budget
//   - image_save: Write to disk, optionally cropping to the selection first
//   - image_preview: Original and working image side by side
//
// History and Preferences:
//   - image_reset, image_undo
//   - language_get, language_set
//
// # Coordinates
//
// pointer and center_set (by default) take display coordinates, the space of
// the image as fitted by viewport_fit. Everything else is in image pixels.
// Selections are reported in both.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Operations that leave nothing to do, such as a crop that clamps to an
// empty rectangle, are not errors; their result reports changed: false.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(cfg, prefs, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server error", "err", err)
//	}
package server
