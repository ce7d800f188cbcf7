package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	s := newTestServer(t)
	tools := s.GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"image_cartoonify",
		"cartoon_parameters",
	}

	if len(tools) != len(expectedTools) {
		t.Fatalf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	s := newTestServer(t)

	for _, tool := range s.GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want object", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema.properties should be a map")
			}

			// Schemas must survive JSON encoding for tools/list.
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("failed to marshal tool: %v", err)
			}
		})
	}
}

func TestToolDefinitions_CartoonifyDefaults(t *testing.T) {
	s := newTestServer(t)

	var props map[string]interface{}
	for _, tool := range s.GetToolDefinitions() {
		if tool.Name == "image_cartoonify" {
			props = tool.InputSchema["properties"].(map[string]interface{})
		}
	}
	if props == nil {
		t.Fatal("image_cartoonify not defined")
	}

	tests := []struct {
		param       string
		wantMin     int
		wantMax     int
		wantDefault int
	}{
		{"line_size", 3, 15, 7},
		{"blur_value", 3, 15, 7},
		{"k", 2, 20, 9},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			prop, ok := props[tt.param].(map[string]interface{})
			if !ok {
				t.Fatalf("%s missing from schema", tt.param)
			}
			if prop["minimum"] != tt.wantMin || prop["maximum"] != tt.wantMax {
				t.Errorf("range: got %v-%v, want %d-%d", prop["minimum"], prop["maximum"], tt.wantMin, tt.wantMax)
			}
			if prop["default"] != tt.wantDefault {
				t.Errorf("default: got %v, want %d", prop["default"], tt.wantDefault)
			}
		})
	}

	for _, name := range []string{"path", "image_base64", "seed", "threshold_offset", "region", "crop", "output_path", "backend"} {
		if _, ok := props[name]; !ok {
			t.Errorf("image_cartoonify should accept %s", name)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != 3 {
		t.Errorf("got %d tools, want 3", len(tools))
	}
}
