package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/image-crop-mcp/internal/config"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
	"github.com/ironsheep/image-crop-mcp/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_crop").
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
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
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
// Every session tool acts on the single working image opened by image_load.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_info":
		return s.session.State(), nil
	case "viewport_fit":
		return s.handleViewportFit(args)

	// Selection
	case "pointer":
		return s.handlePointer(args)
	case "selection_get":
		return s.handleSelectionGet()
	case "selection_set":
		return s.handleSelectionSet(args)
	case "selection_clear":
		s.session.ClearSelection()
		return s.session.State(), nil
	case "selection_commit":
		return s.handleSelectionCommit(args)
	case "center_set":
		return s.handleCenterSet(args)
	case "center_clear":
		s.session.ClearCenterPoint()
		return s.session.State(), nil

	// Crop Operations
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_crop_quadrant":
		return s.handleImageCropQuadrant(args)
	case "image_center_crop":
		return s.handleImageCenterCrop(args)

	// Compression
	case "image_compress":
		return s.handleImageCompress(args)

	// Output
	case "image_save":
		return s.handleImageSave(args)
	case "image_preview":
		return s.handleImagePreview(args)

	// History
	case "image_reset":
		return s.handleImageReset()
	case "image_undo":
		return s.handleImageUndo()

	// Preferences
	case "language_get":
		return s.language(), nil
	case "language_set":
		return s.handleLanguageSet(args)

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

// decodeArgs unmarshals tool arguments, treating absent arguments as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// editResult reports the outcome of an operation that may change the
// working image.
type editResult struct {
	// Changed is false when the operation was a no-op, such as an empty crop.
	Changed bool                  `json:"changed"`
	State   session.State         `json:"state"`
	Image   *imaging.EncodedImage `json:"image,omitempty"`
}

// edited builds an editResult, attaching the working image as PNG when asked.
func (s *Server) edited(changed, includeImage bool) (*editResult, error) {
	res := &editResult{Changed: changed, State: s.session.State()}
	if includeImage {
		enc, err := imaging.EncodeForTransport(s.codec, s.session.Current(), imaging.PNG, 0)
		if err != nil {
			return nil, err
		}
		res.Image = enc
	}
	return res, nil
}

// === Session Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

type imageLoadResult struct {
	Info  *imaging.ImageInfo `json:"info"`
	State session.State      `json:"state"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if err := s.session.Open(a.Path); err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	return &imageLoadResult{Info: info, State: s.session.State()}, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path != "" {
		return imaging.GetDimensions(s.cache, a.Path)
	}
	img := s.session.Current()
	if img == nil {
		return nil, session.ErrNoImage
	}
	b := img.Bounds()
	return &imaging.DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}

type viewportFitArgs struct {
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	IncludeImage bool `json:"include_image"`
}

type viewportFitResult struct {
	State   session.State         `json:"state"`
	Display *imaging.EncodedImage `json:"display,omitempty"`
}

func (s *Server) handleViewportFit(args json.RawMessage) (interface{}, error) {
	var a viewportFitArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.session.SetViewport(a.Width, a.Height); err != nil {
		return nil, err
	}

	res := &viewportFitResult{State: s.session.State()}
	if a.IncludeImage {
		if display := s.session.Display(); display != nil {
			enc, err := imaging.EncodeForTransport(s.codec, display, imaging.PNG, 0)
			if err != nil {
				return nil, err
			}
			res.Display = enc
		}
	}
	return res, nil
}

// === Selection Handlers ===

type pointerArgs struct {
	Event string `json:"event"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

type selectionResult struct {
	Active    bool               `json:"active"`
	Mode      string             `json:"mode"`
	Selection *session.Selection `json:"selection,omitempty"`
}

func (s *Server) handlePointer(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		sel session.Selection
		ok  bool
		err error
	)
	switch a.Event {
	case "down", "press":
		sel, ok, err = s.session.PointerDown(a.X, a.Y)
	case "move", "drag":
		sel, ok, err = s.session.PointerMove(a.X, a.Y)
	case "up", "release":
		sel, ok, err = s.session.PointerUp(a.X, a.Y)
	default:
		return nil, fmt.Errorf("unknown pointer event %q (use down, move, or up)", a.Event)
	}
	if err != nil {
		return nil, err
	}
	return s.selectionReadout(sel, ok), nil
}

func (s *Server) selectionReadout(sel session.Selection, ok bool) *selectionResult {
	res := &selectionResult{Active: ok, Mode: s.session.Mode().String()}
	if ok {
		res.Selection = &sel
	}
	return res
}

func (s *Server) handleSelectionGet() (interface{}, error) {
	if !s.session.Loaded() {
		return nil, session.ErrNoImage
	}
	sel, ok := s.session.Selection()
	return s.selectionReadout(sel, ok), nil
}

type regionArgs struct {
	X1           int  `json:"x1"`
	Y1           int  `json:"y1"`
	X2           int  `json:"x2"`
	Y2           int  `json:"y2"`
	IncludeImage bool `json:"include_image"`
}

func (a regionArgs) region() imaging.Region {
	return imaging.Region{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}
}

func (s *Server) handleSelectionSet(args json.RawMessage) (interface{}, error) {
	var a regionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sel, err := s.session.Select(a.region())
	if err != nil {
		return nil, err
	}
	return s.selectionReadout(sel, true), nil
}

type includeImageArgs struct {
	IncludeImage bool `json:"include_image"`
}

func (s *Server) handleSelectionCommit(args json.RawMessage) (interface{}, error) {
	var a includeImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	changed, err := s.session.CommitSelection()
	if err != nil {
		return nil, err
	}
	return s.edited(changed, a.IncludeImage)
}

type centerSetArgs struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Space string `json:"space"`
}

type centerResult struct {
	Accepted bool          `json:"accepted"`
	State    session.State `json:"state"`
}

func (s *Server) handleCenterSet(args json.RawMessage) (interface{}, error) {
	var a centerSetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		ok  bool
		err error
	)
	switch a.Space {
	case "", "display":
		_, ok, err = s.session.SetCenterPoint(a.X, a.Y)
	case "image":
		ok, err = s.session.SetCenterImagePoint(a.X, a.Y)
	default:
		return nil, fmt.Errorf("unknown coordinate space %q (use display or image)", a.Space)
	}
	if err != nil {
		return nil, err
	}
	return &centerResult{Accepted: ok, State: s.session.State()}, nil
}

// === Crop Operation Handlers ===

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a regionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	changed, err := s.session.CropRegion(a.region())
	if err != nil {
		return nil, err
	}
	return s.edited(changed, a.IncludeImage)
}

type imageCropQuadrantArgs struct {
	Region       string `json:"region"`
	IncludeImage bool   `json:"include_image"`
}

func (s *Server) handleImageCropQuadrant(args json.RawMessage) (interface{}, error) {
	var a imageCropQuadrantArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.CropNamed(a.Region); err != nil {
		return nil, err
	}
	return s.edited(true, a.IncludeImage)
}

type imageCenterCropArgs struct {
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	IncludeImage bool `json:"include_image"`
}

func (s *Server) handleImageCenterCrop(args json.RawMessage) (interface{}, error) {
	var a imageCenterCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	changed, err := s.session.CenterCrop(a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	return s.edited(changed, a.IncludeImage)
}

// === Compression Handlers ===

type imageCompressArgs struct {
	TargetBytes  int     `json:"target_bytes"`
	TargetKB     float64 `json:"target_kb"`
	Format       string  `json:"format"`
	IncludeImage bool    `json:"include_image"`
}

type imageCompressResult struct {
	*imaging.CompressResult
	State session.State         `json:"state"`
	Image *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleImageCompress(args json.RawMessage) (interface{}, error) {
	var a imageCompressArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	target := a.TargetBytes
	if target == 0 && a.TargetKB > 0 {
		target = int(a.TargetKB * 1024)
	}
	if target <= 0 {
		return nil, errors.New("target_bytes or target_kb must be positive")
	}
	if a.Format == "" {
		a.Format = string(imaging.JPEG)
	}
	format, err := imaging.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	res, err := s.session.Compress(target, format)
	if err != nil {
		return nil, err
	}

	out := &imageCompressResult{CompressResult: res, State: s.session.State()}
	if a.IncludeImage {
		out.Image = imaging.WrapEncoded(res.Data, res.Width, res.Height, res.Format)
	}
	return out, nil
}

// === Output Handlers ===

type imageSaveArgs struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Decision string `json:"decision"`
}

type imageSaveResult struct {
	*session.SaveResult
	Decision string        `json:"decision"`
	State    session.State `json:"state"`
}

func (s *Server) handleImageSave(args json.RawMessage) (interface{}, error) {
	var a imageSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	var format imaging.Format
	if a.Format != "" {
		f, err := imaging.ParseFormat(a.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	decision, err := session.ParseSaveDecision(a.Decision)
	if err != nil {
		return nil, err
	}

	res, err := s.session.Save(a.Path, format, decision)
	if err != nil {
		return nil, err
	}
	return &imageSaveResult{SaveResult: res, Decision: decision.String(), State: s.session.State()}, nil
}

type imagePreviewArgs struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type imagePreviewResult struct {
	Original *imaging.EncodedImage `json:"original"`
	Current  *imaging.EncodedImage `json:"current"`
}

func (s *Server) handleImagePreview(args json.RawMessage) (interface{}, error) {
	var a imagePreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Width == 0 {
		a.Width = 400
	}
	if a.Height == 0 {
		a.Height = 400
	}

	orig, cur, err := s.session.Preview(a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	origEnc, err := imaging.EncodeForTransport(s.codec, orig, imaging.PNG, 0)
	if err != nil {
		return nil, err
	}
	curEnc, err := imaging.EncodeForTransport(s.codec, cur, imaging.PNG, 0)
	if err != nil {
		return nil, err
	}
	return &imagePreviewResult{Original: origEnc, Current: curEnc}, nil
}

// === History Handlers ===

func (s *Server) handleImageReset() (interface{}, error) {
	if err := s.session.Reset(); err != nil {
		return nil, err
	}
	return s.edited(true, false)
}

func (s *Server) handleImageUndo() (interface{}, error) {
	changed, err := s.session.Undo()
	if err != nil {
		return nil, err
	}
	return s.edited(changed, false)
}

// === Preference Handlers ===

type languageArgs struct {
	Language string `json:"language"`
}

type languageResult struct {
	Language  string   `json:"language"`
	Supported []string `json:"supported"`
}

func (s *Server) language() *languageResult {
	return &languageResult{Language: s.prefs.Get(), Supported: config.SupportedLanguages}
}

func (s *Server) handleLanguageSet(args json.RawMessage) (interface{}, error) {
	var a languageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.prefs.Set(a.Language); err != nil {
		return nil, err
	}
	s.logger.Info("language changed", "language", a.Language)
	return s.language(), nil
}
