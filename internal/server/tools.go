package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var widthThresholdProperty = map[string]interface{}{
	"type":        "number",
	"description": "Minimum rotated-rectangle width, exclusive, for a blob to count as a character. Default 20",
	"default":     20,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for the other tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "image_flip_characters",
			Description: "Rotate the whole image 180 degrees, then rotate every detected printed character 180 degrees in place. " +
				"Upside-down text becomes upright while the order of the characters is reversed. " +
				"Writes the result to output_path and/or returns it base64-encoded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write; the format follows the extension (.png, .jpg, .webp, .bmp, .tif, .gif)",
					},
					"width_threshold": widthThresholdProperty,
					"debug": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline every flipped character's rotated rectangle",
						"default":     false,
					},
					"debug_color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (#ff0000) or a name (red, green, blue...). Default red",
					},
					"return_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the encoded image even when output_path is set",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_detect_characters",
			Description: "Find character regions without modifying anything. Returns the Otsu threshold, each accepted region's bounding box and rotated rectangle, and how many blobs were too narrow.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":            pathProperty,
					"width_threshold": widthThresholdProperty,
				},
				"required": []string{"path"},
			},
		},
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
