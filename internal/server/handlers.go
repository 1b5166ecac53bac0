package server

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ironsheep/glyphflip/internal/detection"
	"github.com/ironsheep/glyphflip/internal/flip"
	"github.com/ironsheep/glyphflip/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_flip_characters").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the flip pipeline
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_flip_characters":
		return s.handleFlipCharacters(args)
	case "image_detect_characters":
		return s.handleDetectCharacters(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Character Handlers ===

type pipelineArgs struct {
	Path           string   `json:"path"`
	WidthThreshold *float64 `json:"width_threshold"`
}

// processor builds a Processor from the server defaults with the call's
// overrides applied.
func (s *Server) processor(a pipelineArgs, debug *bool, debugColor string) (Pipeline, error) {
	opts := s.opts
	if a.WidthThreshold != nil {
		if w := *a.WidthThreshold; w < 0 || math.IsInf(w, 0) {
			return nil, fmt.Errorf("width_threshold must be a finite non-negative number, got %g", w)
		}
		opts.WidthThreshold = *a.WidthThreshold
	}
	if debug != nil {
		opts.Debug = *debug
	}
	if debugColor != "" {
		c, err := imaging.ParseColor(debugColor)
		if err != nil {
			return nil, err
		}
		opts.DebugColor = c
	}
	return s.backend(opts, s.log), nil
}

// RegionInfo describes one accepted character region.
type RegionInfo struct {
	Box     detection.Bounds      `json:"box"`
	Rect    detection.RotatedRect `json:"rect"`
	Corners []detection.Point     `json:"corners"`
}

// RegionInfos converts pipeline regions to their JSON form.
func RegionInfos(regions []flip.Region) []RegionInfo {
	out := make([]RegionInfo, len(regions))
	for i, r := range regions {
		corners := r.Corners()
		pts := make([]detection.Point, len(corners))
		for j, c := range corners {
			pts[j] = detection.Point{X: c.X, Y: c.Y}
		}
		out[i] = RegionInfo{
			Box:     detection.BoundsOf(r.Box),
			Rect:    r.Rect,
			Corners: pts,
		}
	}
	return out
}

// DetectResult is returned by image_detect_characters.
type DetectResult struct {
	RunID          string       `json:"run_id"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	Threshold      uint8        `json:"threshold"`
	WidthThreshold float64      `json:"width_threshold"`
	Contours       int          `json:"contours"`
	Rejected       int          `json:"rejected"`
	Regions        []RegionInfo `json:"regions"`
}

func (s *Server) handleDetectCharacters(args json.RawMessage) (interface{}, error) {
	var a pipelineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.processor(a, nil, "")
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := p.Detect(img)
	if err != nil {
		return nil, err
	}
	return &DetectResult{
		RunID:          res.RunID,
		Width:          img.Width,
		Height:         img.Height,
		Threshold:      res.Threshold,
		WidthThreshold: p.Options().WidthThreshold,
		Contours:       res.Contours,
		Rejected:       res.Rejected,
		Regions:        RegionInfos(res.Regions),
	}, nil
}

type flipCharactersArgs struct {
	pipelineArgs
	OutputPath  string `json:"output_path"`
	Debug       *bool  `json:"debug"`
	DebugColor  string `json:"debug_color"`
	ReturnImage bool   `json:"return_image"`
}

// FlipResult is returned by image_flip_characters.
type FlipResult struct {
	DetectResult
	Flipped    int    `json:"flipped"`
	OutputPath string `json:"output_path,omitempty"`

	// ImageBase64 holds the encoded output when it was requested or when no
	// output_path was given.
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleFlipCharacters(args json.RawMessage) (interface{}, error) {
	var a flipCharactersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.processor(a.pipelineArgs, a.Debug, a.DebugColor)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := p.Run(img)
	if err != nil {
		return nil, err
	}

	out := &FlipResult{
		DetectResult: DetectResult{
			RunID:          res.RunID,
			Width:          res.Image.Width,
			Height:         res.Image.Height,
			Threshold:      res.Threshold,
			WidthThreshold: p.Options().WidthThreshold,
			Contours:       res.Contours,
			Rejected:       res.Rejected,
			Regions:        RegionInfos(res.Regions),
		},
		Flipped: len(res.Regions),
	}

	if a.OutputPath != "" {
		enc := s.encode
		enc.Format = ""
		if err := imaging.Save(a.OutputPath, res.Image, enc); err != nil {
			return nil, err
		}
		// A stale decode of the old file must not be served later.
		s.cache.Evict(a.OutputPath)
		out.OutputPath = a.OutputPath
	}

	if a.ReturnImage || a.OutputPath == "" {
		data, mime, err := imaging.EncodeBase64(res.Image, s.encode)
		if err != nil {
			return nil, err
		}
		out.ImageBase64 = data
		out.MimeType = mime
	}
	return out, nil
}
