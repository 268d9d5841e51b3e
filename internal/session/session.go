// Package session ties the crop and compression engines to one working image.
//
// A Session owns the original and current images, the viewport transform
// used to map pointer events, the selection editor, and the optional
// center point for center-anchored crops. Every operation that changes the
// current image stores the previous one in a bounded history, so Undo and
// Reset always have an untouched copy to return to.
//
// A Session is safe for concurrent use; calls are serialized internally.
package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/image-crop-mcp/internal/imaging"
	"github.com/ironsheep/image-crop-mcp/internal/region"
	"github.com/ironsheep/image-crop-mcp/internal/viewport"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultViewportWidth  = 800
	DefaultViewportHeight = 600
	DefaultSaveQuality    = 95
	DefaultHistoryLimit   = 10
)

var (
	// ErrOpenFailed wraps decode and read failures from Open. The prior
	// state is left untouched.
	ErrOpenFailed = errors.New("open failed")

	// ErrSaveFailed wraps encode and write failures from Save.
	ErrSaveFailed = errors.New("save failed")

	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("no image loaded")

	// ErrEmptySelection is returned when a save asks to crop first but the
	// selection has no area inside the image.
	ErrEmptySelection = errors.New("selection is empty")
)

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Codec          imaging.Codec
	Cache          *imaging.ImageCache
	Compress       imaging.CompressOptions
	Tolerance      int
	ViewportWidth  int
	ViewportHeight int
	SaveQuality    int
	HistoryLimit   int
	Logger         *slog.Logger
}

// Session is one user's working state.
type Session struct {
	mu sync.Mutex

	codec      imaging.Codec
	cache      *imaging.ImageCache
	compressor *imaging.Compressor
	saveQ      int
	histLimit  int
	logger     *slog.Logger

	path     string
	original image.Image
	current  image.Image
	history  []image.Image

	vw, vh    int
	display   image.Image
	transform viewport.Transform

	editor *region.Editor
	center *image.Point

	// exact is the image-space rectangle given to Select. It stands in for
	// the mapped display rectangle until the selection is next redrawn.
	exact *imaging.Region

	// compressed is the last Compress output. Its Data is the exact encoding
	// of current for as long as compressed.Image is still current.
	compressed *imaging.CompressResult
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.Codec == nil {
		opts.Codec = imaging.DefaultCodec{}
	}
	if opts.Cache == nil {
		opts.Cache = imaging.NewImageCache(opts.Codec)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.SaveQuality < 1 || opts.SaveQuality > 100 {
		opts.SaveQuality = DefaultSaveQuality
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}

	logger := opts.Logger.With("component", "session")
	editor := region.NewEditor(
		region.WithTolerance(opts.Tolerance),
		region.WithLogger(logger),
	)
	return &Session{
		codec:      opts.Codec,
		cache:      opts.Cache,
		compressor: imaging.NewCompressor(opts.Codec, opts.Compress, logger),
		saveQ:      opts.SaveQuality,
		histLimit:  opts.HistoryLimit,
		logger:     logger,
		vw:         opts.ViewportWidth,
		vh:         opts.ViewportHeight,
		transform:  viewport.Identity,
		editor:     editor,
	}
}

// Open loads path as the new original image.
//
// On failure the error wraps ErrOpenFailed and the session keeps whatever it
// had before. On success the selection, center point, and history are
// cleared.
func (s *Session) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := s.cache.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	display, t, err := viewport.FitToViewport(img, s.vw, s.vh, s.codec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	s.path = path
	s.original = img
	s.current = imaging.Clone(img)
	s.history = nil
	s.display, s.transform = display, t
	s.clearMarks()

	b := img.Bounds()
	s.logger.Info("image opened", "path", path, "width", b.Dx(), "height", b.Dy())
	return nil
}

// Loaded reports whether an image is open.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Current returns the current image. It is shared with the session and must
// not be modified.
func (s *Session) Current() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Original returns the image as opened. It must not be modified.
func (s *Session) Original() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

// Display returns the current image scaled for the viewport.
func (s *Session) Display() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// SetViewport changes the viewport size and refits the current image. The
// selection lives in display space, so it is cleared.
func (s *Session) SetViewport(width, height int) (viewport.Transform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width <= 0 || height <= 0 {
		return s.transform, fmt.Errorf("%w: got %dx%d", viewport.ErrEmptyViewport, width, height)
	}
	s.vw, s.vh = width, height

	if s.current == nil {
		return s.transform, nil
	}
	if err := s.refit(); err != nil {
		return s.transform, err
	}
	s.editor.Clear()
	s.exact = nil
	s.syncCenterMarker()
	return s.transform, nil
}

// Transform returns the current image-to-display mapping.
func (s *Session) Transform() viewport.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform
}

// State summarizes the session.
type State struct {
	Path           string             `json:"path,omitempty"`
	Loaded         bool               `json:"loaded"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	OriginalWidth  int                `json:"original_width"`
	OriginalHeight int                `json:"original_height"`
	ColorMode      imaging.ColorMode  `json:"color_mode,omitempty"`
	ViewportWidth  int                `json:"viewport_width"`
	ViewportHeight int                `json:"viewport_height"`
	Transform      viewport.Transform `json:"transform"`
	Selection      *Selection         `json:"selection,omitempty"`
	Center         *image.Point       `json:"center,omitempty"`
	Handles        []region.Handle    `json:"handles,omitempty"`
	Mode           string             `json:"mode"`
	UndoDepth      int                `json:"undo_depth"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Path:           s.path,
		Loaded:         s.current != nil,
		ViewportWidth:  s.vw,
		ViewportHeight: s.vh,
		Transform:      s.transform,
		Handles:        s.editor.Handles(),
		Mode:           s.editor.Mode().String(),
		UndoDepth:      len(s.history),
	}
	if s.current != nil {
		b, ob := s.current.Bounds(), s.original.Bounds()
		st.Width, st.Height = b.Dx(), b.Dy()
		st.OriginalWidth, st.OriginalHeight = ob.Dx(), ob.Dy()
		st.ColorMode = imaging.ColorModeOf(s.current)
	}
	if sel, ok := s.selection(); ok {
		st.Selection = &sel
	}
	if s.center != nil {
		c := *s.center
		st.Center = &c
	}
	return st
}

// clearMarks drops the selection and the center point.
func (s *Session) clearMarks() {
	s.editor.Clear()
	s.editor.ClearCenterMarker()
	s.exact = nil
	s.center = nil
}

// refit recomputes the display image for the current viewport.
func (s *Session) refit() error {
	display, t, err := viewport.FitToViewport(s.current, s.vw, s.vh, s.codec)
	if err != nil {
		return err
	}
	s.display, s.transform = display, t
	return nil
}

// syncCenterMarker moves the editor's marker to the display position of the
// image-space center point.
func (s *Session) syncCenterMarker() {
	if s.center == nil {
		s.editor.ClearCenterMarker()
		return
	}
	dx, dy := s.transform.ToDisplaySpace(s.center.X, s.center.Y)
	s.editor.SetCenterMarker(dx, dy)
}

// replaceCurrent pushes the current image onto the history and adopts next.
// The selection and center point describe the old image and are cleared.
func (s *Session) replaceCurrent(next image.Image) error {
	prev, prevDisplay, prevT := s.current, s.display, s.transform
	s.current = next
	if err := s.refit(); err != nil {
		s.current, s.display, s.transform = prev, prevDisplay, prevT
		return err
	}

	s.history = append(s.history, prev)
	if len(s.history) > s.histLimit {
		s.history = s.history[len(s.history)-s.histLimit:]
	}
	s.clearMarks()
	return nil
}

// Reset restores the original image and clears selection, center point, and
// history.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoImage
	}
	s.current = imaging.Clone(s.original)
	s.history = nil
	if err := s.refit(); err != nil {
		return err
	}
	s.clearMarks()
	s.logger.Info("image reset")
	return nil
}

// Undo restores the image before the last change. It reports false when
// there is nothing to undo.
func (s *Session) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, ErrNoImage
	}
	if len(s.history) == 0 {
		return false, nil
	}

	last := len(s.history) - 1
	prev, prevDisplay, prevT := s.current, s.display, s.transform
	s.current = s.history[last]
	if err := s.refit(); err != nil {
		s.current, s.display, s.transform = prev, prevDisplay, prevT
		return false, err
	}
	s.history[last] = nil
	s.history = s.history[:last]
	s.clearMarks()
	return true, nil
}

// Compress runs the size-constrained search on the current image and adopts
// the decoded result.
func (s *Session) Compress(targetBytes int, format imaging.Format) (*imaging.CompressResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoImage
	}

	res, err := s.compressor.CompressToSize(s.current, targetBytes, format)
	if err != nil {
		return nil, err
	}
	if err := s.replaceCurrent(res.Image); err != nil {
		return nil, err
	}
	s.compressed = res

	s.logger.Info("image compressed",
		"target", targetBytes, "bytes", res.Bytes, "quality", res.Quality,
		"scale_pct", res.ScalePct, "within_budget", res.WithinBudget)
	return res, nil
}

// Preview returns the original and current images fitted into a
// width x height box each, for side-by-side comparison.
func (s *Session) Preview(width, height int) (original, current image.Image, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, nil, ErrNoImage
	}
	original, _, err = viewport.FitToViewport(s.original, width, height, s.codec)
	if err != nil {
		return nil, nil, err
	}
	current, _, err = viewport.FitToViewport(s.current, width, height, s.codec)
	if err != nil {
		return nil, nil, err
	}
	return original, current, nil
}

// SaveResult describes a completed Save.
type SaveResult struct {
	Saved   bool           `json:"saved"`
	Path    string         `json:"path,omitempty"`
	Format  imaging.Format `json:"format,omitempty"`
	Width   int            `json:"width,omitempty"`
	Height  int            `json:"height,omitempty"`
	Cropped bool           `json:"cropped"`
}

// Save writes the current image to path.
//
// The format follows the extension unless format is non-empty. When a
// selection exists the caller's decision applies: CropThenSave crops to the
// selection first, SaveAsIs ignores it, and Cancel writes nothing. Without a
// selection CropThenSave behaves like SaveAsIs.
//
// The crop, if any, is only committed once the file has been written, so a
// failed save leaves the session exactly as it was.
//
// Saving the output of Compress, unmodified and in the format it was
// compressed to, writes the compressed bytes verbatim so the file stays
// within the budget. Other saves re-encode at the save quality.
func (s *Session) Save(path string, format imaging.Format, decision SaveDecision) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoImage
	}
	if decision == Cancel {
		s.logger.Info("save cancelled")
		return &SaveResult{}, nil
	}

	if format == "" {
		f, err := imaging.FormatFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
		format = f
	}

	out := s.current
	cropped := false
	if _, hasSel := s.editor.Rect(); hasSel && decision == CropThenSave {
		c, ok := s.cropSelection()
		if !ok {
			return nil, ErrEmptySelection
		}
		out, cropped = c, true
	}

	if data, ok := s.compressedBytes(out, format); ok {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
	} else if err := s.write(path, out, format); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	s.cache.Evict(path)

	if cropped {
		if err := s.replaceCurrent(out); err != nil {
			return nil, err
		}
	}

	b := out.Bounds()
	s.logger.Info("image saved", "path", path, "format", format, "width", b.Dx(), "height", b.Dy(), "cropped", cropped)
	return &SaveResult{
		Saved:   true,
		Path:    path,
		Format:  format,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Cropped: cropped,
	}, nil
}

// compressedBytes returns the cached Compress output when it encodes img
// in format.
func (s *Session) compressedBytes(img image.Image, format imaging.Format) ([]byte, bool) {
	c := s.compressed
	if c == nil || c.Image != img || c.Format != format {
		return nil, false
	}
	return c.Data, true
}

func (s *Session) write(path string, img image.Image, format imaging.Format) error {
	var enc imgio.Encoder
	switch format {
	case imaging.JPEG:
		img = imaging.PrepareForFormat(img, format, s.compressor.Options().Background)
		enc = imgio.JPEGEncoder(s.saveQ)
	case imaging.PNG:
		enc = imgio.PNGEncoder()
	default:
		return fmt.Errorf("%w: %q", imaging.ErrUnsupportedFormat, format)
	}
	return imgio.Save(path, img, enc)
}
