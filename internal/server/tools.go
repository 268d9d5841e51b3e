package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// noArgs is the schema of tools that take no arguments.
func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

var includeImageProp = map[string]interface{}{
	"type":        "boolean",
	"description": "Also return the resulting image as base64-encoded PNG. Default false",
	"default":     false,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "image_load",
			Description: "Open an image file as the working image. Clears any selection, center point, and undo history, and fits the image into the current viewport.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a JPEG, PNG, GIF, or BMP file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, or of the working image when no path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Optional absolute path to an image file",
					},
				},
			},
		},
		{
			Name:        "image_info",
			Description: "Describe the editing session: working and original size, color mode, viewport transform, selection, center point, handles, and undo depth.",
			InputSchema: noArgs(),
		},
		{
			Name:        "viewport_fit",
			Description: "Fit the working image into a display area without upscaling. Pointer and center coordinates are interpreted in this display space.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Display area width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Display area height in pixels",
					},
					"include_image": includeImageProp,
				},
				"required": []string{"width", "height"},
			},
		},

		// Selection
		{
			Name:        "pointer",
			Description: "Send a pointer event in display coordinates to the selection editor. A press near a corner handle resizes, inside the rectangle moves it, anywhere else starts a new rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"event": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"down", "move", "up"},
						"description": "Pointer event kind",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Display X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Display Y coordinate",
					},
				},
				"required": []string{"event", "x", "y"},
			},
		},
		{
			Name:        "selection_get",
			Description: "Return the current selection in display and image coordinates with its size in source pixels.",
			InputSchema: noArgs(),
		},
		{
			Name:        "selection_set",
			Description: "Set the selection directly in image coordinates.",
			InputSchema: regionSchema("Selection"),
		},
		{
			Name:        "selection_clear",
			Description: "Remove the selection rectangle and its handles.",
			InputSchema: noArgs(),
		},
		{
			Name:        "selection_commit",
			Description: "Crop the working image to the selection. An empty selection leaves the image unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_image": includeImageProp,
				},
			},
		},
		{
			Name:        "center_set",
			Description: "Set the center point used by image_center_crop. Points outside the image are rejected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate",
					},
					"space": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"display", "image"},
						"description": "Coordinate space of x and y. Default display",
						"default":     "display",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "center_clear",
			Description: "Remove the center point.",
			InputSchema: noArgs(),
		},

		// Crop Operations
		{
			Name:        "image_crop",
			Description: "Crop the working image to a rectangle in image coordinates. Coordinates are clamped to the image; an empty result leaves the image unchanged.",
			InputSchema: regionSchema("Crop"),
		},
		{
			Name:        "image_crop_quadrant",
			Description: "Crop the working image to a named region (top-left, top-right, bottom-left, bottom-right, top-half, bottom-half, left-half, right-half, center).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
						"description": "Named region to keep",
					},
					"include_image": includeImageProp,
				},
				"required": []string{"region"},
			},
		},
		{
			Name:        "image_center_crop",
			Description: "Crop a fixed-size window centered on the center point, or on the image center when none is set. The window is clipped at the image edges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Window width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Window height in pixels",
					},
					"include_image": includeImageProp,
				},
				"required": []string{"width", "height"},
			},
		},

		// Compression
		{
			Name:        "image_compress",
			Description: "Re-encode the working image to fit a byte budget. Searches encoder quality first, then downscales. The working image becomes the decoded result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"target_bytes": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum encoded size in bytes",
					},
					"target_kb": map[string]interface{}{
						"type":        "number",
						"description": "Maximum encoded size in kilobytes (1 KB = 1024 bytes). Used when target_bytes is absent",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"jpeg", "png"},
						"description": "Output encoding. Default jpeg",
						"default":     "jpeg",
					},
					"include_image": includeImageProp,
				},
			},
		},

		// Output
		{
			Name:        "image_save",
			Description: "Write the working image to a file. When a selection exists, decision chooses whether to crop to it first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute output path",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"jpeg", "png"},
						"description": "Output encoding. Default follows the file extension",
					},
					"decision": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"crop_then_save", "save_as_is", "cancel"},
						"description": "What to do with an active selection. Default save_as_is",
						"default":     "save_as_is",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_preview",
			Description: "Return the original and working images side by side, each fitted into a width x height box, as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Box width per image. Default 400",
						"default":     400,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Box height per image. Default 400",
						"default":     400,
					},
				},
			},
		},

		// History
		{
			Name:        "image_reset",
			Description: "Discard every edit and restore the image as loaded.",
			InputSchema: noArgs(),
		},
		{
			Name:        "image_undo",
			Description: "Revert the most recent crop or compression.",
			InputSchema: noArgs(),
		},

		// Preferences
		{
			Name:        "language_get",
			Description: "Get the saved interface language.",
			InputSchema: noArgs(),
		},
		{
			Name:        "language_set",
			Description: "Save the interface language.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"language": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"en", "zh"},
						"description": "Language code",
					},
				},
				"required": []string{"language"},
			},
		},
	}
}

// regionSchema describes an image-space rectangle argument.
func regionSchema(what string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{
				"type":        "integer",
				"description": what + " left edge X coordinate (0-based)",
			},
			"y1": map[string]interface{}{
				"type":        "integer",
				"description": what + " top edge Y coordinate (0-based)",
			},
			"x2": map[string]interface{}{
				"type":        "integer",
				"description": what + " right edge X coordinate (exclusive)",
			},
			"y2": map[string]interface{}{
				"type":        "integer",
				"description": what + " bottom edge Y coordinate (exclusive)",
			},
			"include_image": includeImageProp,
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
