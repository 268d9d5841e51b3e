package session

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/image-crop-mcp/internal/imaging"
	"github.com/ironsheep/image-crop-mcp/internal/region"
)

// Selection is the pixel readout for the current rectangle.
type Selection struct {
	// Display is the rectangle as drawn, in display space.
	Display region.Rect `json:"display"`

	// Image is Display mapped to image space and normalized. It is not
	// clamped, so it may extend past the image.
	Image imaging.Region `json:"image"`

	// Width and Height are the mapped size in source pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PointerDown forwards a press in display space to the selection editor.
func (s *Session) PointerDown(x, y int) (Selection, bool, error) {
	return s.pointer(func() {
		s.exact = nil
		s.editor.Press(x, y)
	})
}

// PointerMove forwards a drag in display space to the selection editor.
func (s *Session) PointerMove(x, y int) (Selection, bool, error) {
	return s.pointer(func() { s.editor.Move(x, y) })
}

// PointerUp forwards a release in display space to the selection editor.
func (s *Session) PointerUp(x, y int) (Selection, bool, error) {
	return s.pointer(func() { s.editor.Release(x, y) })
}

func (s *Session) pointer(event func()) (Selection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Selection{}, false, ErrNoImage
	}
	event()
	sel, ok := s.selection()
	return sel, ok, nil
}

// Mode reports the selection editor's state.
func (s *Session) Mode() region.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Mode()
}

// Selection returns the current selection readout, if any.
func (s *Session) Selection() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection()
}

func (s *Session) selection() (Selection, bool) {
	r, ok := s.editor.Rect()
	if !ok {
		return Selection{}, false
	}
	ir := s.transform.ToImageRect(r.X1, r.Y1, r.X2, r.Y2)
	if s.exact != nil {
		ir = *s.exact
	}
	return Selection{
		Display: r,
		Image:   ir.Normalize(),
		Width:   ir.Width(),
		Height:  ir.Height(),
	}, true
}

// Select replaces the selection with an image-space rectangle, as if it had
// been drawn on the display.
//
// The display rectangle is the projection of r, but the image-space readout,
// CommitSelection and CropThenSave use r itself until the next press, clear
// or refit. Mapping the truncated projection back would drift by up to
// 1/scale pixels.
func (s *Session) Select(r imaging.Region) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Selection{}, ErrNoImage
	}
	x1, y1 := s.transform.ToDisplaySpace(r.X1, r.Y1)
	x2, y2 := s.transform.ToDisplaySpace(r.X2, r.Y2)
	s.editor.SetRect(region.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2})
	exact := r.Normalize()
	s.exact = &exact

	sel, _ := s.selection()
	return sel, nil
}

// ClearSelection drops the selection rectangle. The center point is kept.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Clear()
	s.exact = nil
}

// SetCenterPoint maps a display-space point to image space and uses it as
// the center for CenterCrop. Points outside the image are rejected and the
// previous center is kept.
func (s *Session) SetCenterPoint(displayX, displayY int) (image.Point, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return image.Point{}, false, ErrNoImage
	}
	x, y := s.transform.ToImageSpace(displayX, displayY)
	if !s.inBounds(x, y) {
		return image.Point{}, false, nil
	}
	s.center = &image.Point{X: x, Y: y}
	s.editor.SetCenterMarker(displayX, displayY)
	return *s.center, true, nil
}

// SetCenterImagePoint sets the center point directly in image space.
func (s *Session) SetCenterImagePoint(x, y int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, ErrNoImage
	}
	if !s.inBounds(x, y) {
		return false, nil
	}
	s.center = &image.Point{X: x, Y: y}
	s.syncCenterMarker()
	return true, nil
}

// ClearCenterPoint removes the center point; CenterCrop falls back to the
// image center.
func (s *Session) ClearCenterPoint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = nil
	s.editor.ClearCenterMarker()
}

// CenterPoint returns the image-space center point, if set.
func (s *Session) CenterPoint() (image.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.center == nil {
		return image.Point{}, false
	}
	return *s.center, true
}

func (s *Session) inBounds(x, y int) bool {
	b := s.current.Bounds()
	return 0 <= x && x < b.Dx() && 0 <= y && y < b.Dy()
}

// cropSelection crops the current image to the selection. It reports false
// when there is no selection or it clamps to nothing.
func (s *Session) cropSelection() (image.Image, bool) {
	sel, ok := s.selection()
	if !ok {
		return nil, false
	}
	out := imaging.Crop(s.current, sel.Image.X1, sel.Image.Y1, sel.Image.X2, sel.Image.Y2)
	if out.Bounds().Empty() {
		return nil, false
	}
	return out, true
}

// CommitSelection crops the current image to the selection.
//
// It reports false, with the state unchanged, when there is no selection or
// the selection has no area inside the image.
func (s *Session) CommitSelection() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, ErrNoImage
	}
	out, ok := s.cropSelection()
	if !ok {
		return false, nil
	}
	if err := s.replaceCurrent(out); err != nil {
		return false, err
	}
	b := out.Bounds()
	s.logger.Info("selection cropped", "width", b.Dx(), "height", b.Dy())
	return true, nil
}

// CropRegion crops the current image to an image-space rectangle. Like
// CommitSelection, an empty result is reported as false and not committed.
func (s *Session) CropRegion(r imaging.Region) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, ErrNoImage
	}
	out := imaging.Crop(s.current, r.X1, r.Y1, r.X2, r.Y2)
	if out.Bounds().Empty() {
		return false, nil
	}
	if err := s.replaceCurrent(out); err != nil {
		return false, err
	}
	s.logger.Info("region cropped", "x1", r.X1, "y1", r.Y1, "x2", r.X2, "y2", r.Y2)
	return true, nil
}

// CropNamed crops the current image to a named preset such as "top-left".
func (s *Session) CropNamed(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoImage
	}
	out, err := imaging.CropNamed(s.current, name)
	if err != nil {
		return err
	}
	if out.Bounds().Empty() {
		return fmt.Errorf("region %q of a %dx%d image is empty", name, s.current.Bounds().Dx(), s.current.Bounds().Dy())
	}
	return s.replaceCurrent(out)
}

// CenterCrop crops a width x height window around the center point, or
// around the image center when none is set. The window is clipped to the
// image, so the result may be smaller than requested.
func (s *Session) CenterCrop(width, height int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, ErrNoImage
	}
	if width <= 0 || height <= 0 {
		return false, errors.New("crop width and height must be positive")
	}

	out := imaging.CenterCrop(s.current, width, height, s.center)
	if out.Bounds().Empty() {
		return false, nil
	}
	if err := s.replaceCurrent(out); err != nil {
		return false, err
	}
	b := out.Bounds()
	s.logger.Info("center cropped", "requested_width", width, "requested_height", height, "width", b.Dx(), "height", b.Dy())
	return true, nil
}
