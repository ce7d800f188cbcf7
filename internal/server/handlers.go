package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/cartoonify-mcp/internal/cartoon"
	"github.com/ironsheep/cartoonify-mcp/internal/imaging"
)

// errInvalidArguments marks tool arguments that are malformed or missing.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_cartoonify").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments, parameters or images return code -32602; any other tool
// failure returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	traceID := uuid.New().String()
	entry := s.log.WithFields(logrus.Fields{
		"trace_id": traceID,
		"tool":     params.Name,
	})

	start := time.Now()
	result, err := s.executeTool(entry, traceID, params.Name, params.Arguments)
	elapsed := time.Since(start)

	if err != nil {
		code := toolErrorCode(err)
		entry.WithError(err).WithFields(logrus.Fields{
			"code":        code,
			"duration_ms": elapsed.Milliseconds(),
		}).Warn("tool call failed")
		if code == codeInvalidParams {
			return s.errorResponse(req.ID, code, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, code, "Tool execution failed", err.Error())
	}

	entry.WithField("duration_ms", elapsed.Milliseconds()).Info("tool call completed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// toolErrorCode maps a tool error onto a JSON-RPC error code.
func toolErrorCode(err error) int {
	switch {
	case errors.Is(err, errInvalidArguments),
		errors.Is(err, cartoon.ErrInvalidParameter),
		errors.Is(err, cartoon.ErrInvalidImage):
		return codeInvalidParams
	default:
		return codeToolFailed
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(log *logrus.Entry, traceID, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_cartoonify":
		return s.handleImageCartoonify(log, traceID, args)
	case "cartoon_parameters":
		return s.handleCartoonParameters()
	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArguments, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// === Image Source ===

// imageSourceArgs selects the input image of a tool call.
type imageSourceArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

func (a imageSourceArgs) decode() (*imaging.Decoded, error) {
	var (
		d   *imaging.Decoded
		err error
	)
	switch {
	case a.Path != "" && a.ImageBase64 != "":
		return nil, fmt.Errorf("%w: pass either path or image_base64, not both", errInvalidArguments)
	case a.Path != "":
		d, err = imaging.Load(a.Path)
	case a.ImageBase64 != "":
		d, err = imaging.DecodeBase64(a.ImageBase64)
	default:
		return nil, fmt.Errorf("%w: path or image_base64 is required", errInvalidArguments)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cartoon.ErrInvalidImage, err)
	}
	return d, nil
}

// === image_load ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageSourceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	d, err := a.decode()
	if err != nil {
		return nil, err
	}
	return d.Info(), nil
}

// === image_cartoonify ===

type cropArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type imageCartoonifyArgs struct {
	imageSourceArgs

	LineSize        int     `json:"line_size"`
	BlurValue       int     `json:"blur_value"`
	K               int     `json:"k"`
	ThresholdOffset *int    `json:"threshold_offset"`
	Seed            *uint64 `json:"seed"`

	MaxDimension int       `json:"max_dimension"`
	Region       string    `json:"region"`
	Crop         *cropArgs `json:"crop"`

	OutputFormat string `json:"output_format"`
	OutputPath   string `json:"output_path"`
	IncludeEdges bool   `json:"include_edges"`
	Backend      string `json:"backend"`
}

// params applies defaults for omitted knobs.
func (a imageCartoonifyArgs) params() cartoon.Params {
	p := cartoon.DefaultParams()
	if a.LineSize != 0 {
		p.LineSize = a.LineSize
	}
	if a.BlurValue != 0 {
		p.BlurValue = a.BlurValue
	}
	if a.K != 0 {
		p.K = a.K
	}
	p.ThresholdOffset = a.ThresholdOffset
	p.Seed = a.Seed
	return p
}

// CartoonResult is the payload of a successful image_cartoonify call.
type CartoonResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Set unless the cartoon was written to OutputPath.
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`

	// PNG of the outline mask when include_edges was requested.
	EdgesBase64 string `json:"edges_base64,omitempty"`

	Palette []imaging.Swatch `json:"palette"`

	// Params are the values actually used, seed and threshold offset
	// included.
	Params cartoon.Params `json:"params"`

	Backend    string                `json:"backend"`
	Timings    []cartoon.StageTiming `json:"timings"`
	DurationMS float64               `json:"duration_ms"`
	TraceID    string                `json:"trace_id"`
}

func (s *Server) handleImageCartoonify(log *logrus.Entry, traceID string, args json.RawMessage) (interface{}, error) {
	var a imageCartoonifyArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	p := a.params()
	if err := s.limits.Check(p); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		// Surface a bad format before doing any work.
		if err := imaging.CheckFormat(a.OutputFormat); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
		}
	}

	d, err := a.decode()
	if err != nil {
		return nil, err
	}
	img := d.Image

	switch {
	case a.Region != "":
		if img, err = imaging.CropRegion(img, a.Region); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
		}
	case a.Crop != nil:
		if img, err = imaging.Crop(img, a.Crop.X1, a.Crop.Y1, a.Crop.X2, a.Crop.Y2); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
		}
	}
	img = imaging.FitWithin(img, a.MaxDimension)

	log.WithFields(logrus.Fields{
		"width":     img.Bounds().Dx(),
		"height":    img.Bounds().Dy(),
		"line_size": p.LineSize,
		"blur":      p.BlurValue,
		"k":         p.K,
		"backend":   a.Backend,
	}).Debug("cartoonifying")

	res, err := cartoon.RunBackend(a.Backend, img, p)
	if err != nil {
		return nil, err
	}

	for _, t := range res.Timings {
		log.WithFields(logrus.Fields{
			"stage":       t.Stage,
			"duration_ms": float64(t.Duration.Microseconds()) / 1000,
		}).Debug("stage timing")
	}

	used := p.WithSeed(res.Seed).WithThresholdOffset(p.Offset())
	out := &CartoonResult{
		Width:      res.Cartoon.Bounds().Dx(),
		Height:     res.Cartoon.Bounds().Dy(),
		Palette:    imaging.Swatches(res.Quantized, res.Palette),
		Params:     used,
		Backend:    res.Backend,
		Timings:    res.Timings,
		DurationMS: float64(res.Total().Microseconds()) / 1000,
		TraceID:    traceID,
	}

	if a.OutputPath != "" {
		if err := imaging.Save(res.Cartoon, a.OutputPath, 0); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	} else {
		enc, err := imaging.Encode(res.Cartoon, a.OutputFormat, 0)
		if err != nil {
			return nil, err
		}
		out.ImageBase64 = enc.ImageBase64
		out.MimeType = enc.MimeType
	}

	if a.IncludeEdges {
		enc, err := imaging.Encode(res.Edges, imaging.FormatPNG, 0)
		if err != nil {
			return nil, err
		}
		out.EdgesBase64 = enc.ImageBase64
	}

	return out, nil
}

// === cartoon_parameters ===

// ParametersResult describes what image_cartoonify accepts.
type ParametersResult struct {
	Limits        cartoon.Limits `json:"limits"`
	Defaults      cartoon.Params `json:"defaults"`
	Backends      []string       `json:"backends"`
	OutputFormats []string       `json:"output_formats"`
	Regions       []string       `json:"regions"`
}

func (s *Server) handleCartoonParameters() (interface{}, error) {
	return &ParametersResult{
		Limits:        s.limits,
		Defaults:      cartoon.DefaultParams(),
		Backends:      s.backendNames(),
		OutputFormats: []string{imaging.FormatPNG, imaging.FormatJPEG},
		Regions:       imaging.RegionNames(),
	}, nil
}

func (s *Server) backendNames() []string {
	return cartoon.Backends()
}
