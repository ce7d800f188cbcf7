package server

import "github.com/ironsheep/cartoonify-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties are the two ways every tool accepts an image.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file. Either path or image_base64 is required.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded image bytes, optionally as a data: URL",
		},
	}
}

// GetToolDefinitions returns all available tools
func (s *Server) GetToolDefinitions() []Tool {
	l := s.limits

	load := imageSourceProperties()

	cartoonify := imageSourceProperties()
	cartoonify["line_size"] = map[string]interface{}{
		"type":        "integer",
		"description": "Outline thickness: adaptive-threshold window size. Odd.",
		"minimum":     l.LineSize.Min,
		"maximum":     l.LineSize.Max,
		"default":     l.LineSize.Default,
	}
	cartoonify["blur_value"] = map[string]interface{}{
		"type":        "integer",
		"description": "Median blur kernel applied before edge detection. Odd.",
		"minimum":     l.BlurValue.Min,
		"maximum":     l.BlurValue.Max,
		"default":     l.BlurValue.Default,
	}
	cartoonify["k"] = map[string]interface{}{
		"type":        "integer",
		"description": "Number of colors in the cartoon palette",
		"minimum":     l.K.Min,
		"maximum":     l.K.Max,
		"default":     l.K.Default,
	}
	cartoonify["threshold_offset"] = map[string]interface{}{
		"type":        "integer",
		"description": "Constant subtracted from the neighborhood mean when detecting edges. Defaults to blur_value.",
	}
	cartoonify["seed"] = map[string]interface{}{
		"type":        "integer",
		"description": "Seed for color clustering. Reuse the seed from a previous result to reproduce it exactly.",
		"minimum":     0,
	}
	cartoonify["max_dimension"] = map[string]interface{}{
		"type":        "integer",
		"description": "Downscale the input so neither side exceeds this many pixels. 0 keeps the original size.",
		"default":     0,
	}
	cartoonify["region"] = map[string]interface{}{
		"type":        "string",
		"description": "Only cartoonify a named region of the image",
		"enum":        imaging.RegionNames(),
	}
	cartoonify["crop"] = map[string]interface{}{
		"type":        "object",
		"description": "Only cartoonify this rectangle (x2, y2 exclusive). Ignored when region is set.",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
	cartoonify["output_format"] = map[string]interface{}{
		"type":        "string",
		"description": "Encoding of the returned image",
		"enum":        []string{imaging.FormatPNG, imaging.FormatJPEG},
		"default":     imaging.FormatPNG,
	}
	cartoonify["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Write the cartoon to this file instead of returning it inline. The extension picks the format.",
	}
	cartoonify["include_edges"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Also return the black-and-white outline mask",
		"default":     false,
	}
	cartoonify["backend"] = map[string]interface{}{
		"type":        "string",
		"description": "Pipeline implementation to run",
		"enum":        s.backendNames(),
	}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Decode an image and return its dimensions, format and size. Use this to check an input before cartoonifying it.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": load,
			},
		},
		{
			Name:        "image_cartoonify",
			Description: "Render a photo as a cartoon: bold dark outlines over flat color regions. Returns the cartoon as base64 along with its palette, the seed used and per-stage timings.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": cartoonify,
			},
		},
		{
			Name:        "cartoon_parameters",
			Description: "List the accepted ranges and defaults for line_size, blur_value and k, plus the available backends and output formats.",
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
			"tools": s.GetToolDefinitions(),
		},
	}
}
