package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the strip photograph",
	}
}

func annotateProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Return a base64 PNG with detected pads outlined and numbered (default: false)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a strip photograph and return its dimensions, format and whether it will be downscaled before analysis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "strip_analyze",
			Description: "Run the full analysis on a test-strip photograph: detect the six pads, match their colors against the calibration, grade image quality and return a report with per-parameter readings, confidence, safety assessment and recommendations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"water_source": map[string]interface{}{
						"type":        "string",
						"description": "Where the water came from. Biases the estimates for pads that cannot be read.",
						"enum":        []string{"tap", "well", "lake", "river", "pool", "bottled", "other"},
					},
					"annotate": annotateProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "strip_assess_quality",
			Description: "Grade the photographic quality of an image: lighting, sharpness, noise, contrast and white balance, each 0-100, plus the composite score that caps reading confidence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "strip_detect_pads",
			Description: "Detect the reagent pads only. Returns pad rectangles in reading order with their rectangularity confidence and the row layout.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"annotate": annotateProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "strip_edge_detect",
			Description: "Run Canny edge detection on an image and return the edge map as base64 PNG. Useful for seeing why pads were or were not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Lower hysteresis threshold (default: 50)",
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Upper hysteresis threshold (default: 150)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "strip_match_color",
			Description: "Read a single pad color against the calibration curve of one parameter. Returns the interpolated value, the nearest reference colors and their color distances.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"parameter": map[string]interface{}{
						"type":        "string",
						"description": "Parameter whose curve to use",
						"enum":        []string{"ph", "chlorine", "nitrates", "hardness", "alkalinity", "bacteria"},
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Pad color as hex, e.g. \"#ADFF2F\"",
					},
				},
				"required": []string{"parameter", "color"},
			},
		},
		{
			Name:        "strip_calibration",
			Description: "Return the active calibration table: for each parameter, the reference colors and the values they represent.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
