package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/stripscan/internal/analysis"
	"github.com/ironsheep/stripscan/internal/detection"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/quality"
	"github.com/ironsheep/stripscan/internal/water"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "strip_analyze").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warnw("tool failed", "tool", params.Name, "error", err)
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "strip_analyze":
		return s.handleStripAnalyze(ctx, args)
	case "strip_assess_quality":
		return s.handleStripAssessQuality(args)
	case "strip_detect_pads":
		return s.handleStripDetectPads(ctx, args)
	case "strip_edge_detect":
		return s.handleStripEdgeDetect(args)
	case "strip_match_color":
		return s.handleStripMatchColor(args)
	case "strip_calibration":
		return s.analyzer.Matcher().Calibration().Table(), nil
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadImage fetches path through the cache and shrinks it to the analysis
// bound.
func (s *Server) loadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.Downscale(img, s.maxDim), nil
}

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
	return imaging.LoadImageInfo(s.cache, a.Path, s.maxDim)
}

type stripAnalyzeArgs struct {
	Path        string `json:"path"`
	WaterSource string `json:"water_source"`
	Annotate    bool   `json:"annotate"`
}

// StripAnalyzeResult is the strip_analyze payload.
type StripAnalyzeResult struct {
	Report    *analysis.Report        `json:"report"`
	Annotated *imaging.AnnotateResult `json:"annotated,omitempty"`
}

func (s *Server) handleStripAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a stripAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	source := water.Other
	if a.WaterSource != "" {
		var ok bool
		if source, ok = water.ParseSource(a.WaterSource); !ok {
			return nil, fmt.Errorf("unknown water source %q", a.WaterSource)
		}
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	report, err := s.analyzer.Analyze(ctx, img, source)
	if err != nil {
		return nil, err
	}
	res := &StripAnalyzeResult{Report: report}
	if a.Annotate {
		if res.Annotated, err = imaging.AnnotateEncoded(img, report.Boxes()); err != nil {
			return nil, err
		}
	}
	s.logger.Infow("strip analyzed",
		"path", a.Path,
		"water_source", source,
		"regions", report.RegionsDetected,
		"overall_confidence", report.OverallConfidence,
	)
	return res, nil
}

type pathArgs struct {
	Path string `json:"path"`
}

// QualityResult is the strip_assess_quality payload.
type QualityResult struct {
	quality.Metrics
	Composite float64 `json:"composite"`
}

func (s *Server) handleStripAssessQuality(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	buf, err := imaging.FromImage(img)
	if err != nil {
		return nil, err
	}
	m, err := s.analyzer.AssessQuality(buf)
	if err != nil {
		return nil, err
	}
	return &QualityResult{Metrics: m, Composite: m.Composite()}, nil
}

type stripDetectPadsArgs struct {
	Path     string `json:"path"`
	Annotate bool   `json:"annotate"`
}

// DetectPadsResult is the strip_detect_pads payload.
type DetectPadsResult struct {
	Count      int                     `json:"count"`
	Pads       []detection.Region      `json:"pads"`
	Layout     detection.LayoutResult  `json:"layout"`
	EdgePixels int                     `json:"edge_pixels"`
	Annotated  *imaging.AnnotateResult `json:"annotated,omitempty"`
}

func (s *Server) handleStripDetectPads(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a stripDetectPadsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	buf, err := imaging.FromImage(img)
	if err != nil {
		return nil, err
	}
	pads, mask, err := s.analyzer.DetectPads(ctx, buf)
	if err != nil {
		return nil, err
	}

	res := &DetectPadsResult{
		Count:      len(pads),
		Pads:       pads,
		Layout:     detection.CheckLayout(pads, s.analyzer.Options().Report.LayoutTolerance),
		EdgePixels: mask.Count(),
	}
	if res.Pads == nil {
		res.Pads = []detection.Region{}
	}
	if a.Annotate {
		boxes := make([]imaging.Box, len(pads))
		for i, p := range pads {
			boxes[i] = imaging.Box{
				Rect:  p.Rect(),
				Label: fmt.Sprint(i + 1),
				Color: imaging.RGBColor{R: 0, G: 220, B: 0},
			}
		}
		if res.Annotated, err = imaging.AnnotateEncoded(img, boxes); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type stripEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (s *Server) handleStripEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a stripEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = 50
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = 150
	}
	if a.ThresholdLow > a.ThresholdHigh {
		return nil, fmt.Errorf("threshold_low %d exceeds threshold_high %d", a.ThresholdLow, a.ThresholdHigh)
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh)
}

type stripMatchColorArgs struct {
	Parameter string `json:"parameter"`
	Color     string `json:"color"`
}

func (s *Server) handleStripMatchColor(args json.RawMessage) (interface{}, error) {
	var a stripMatchColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := water.ParseParameter(a.Parameter)
	if err != nil {
		return nil, err
	}
	c, err := imaging.ParseHex(a.Color)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Matcher().MatchColor(c, p)
}
