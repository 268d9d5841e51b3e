// Package region implements the pointer-driven selection rectangle editor.
//
// The Editor is a small state machine fed with pointer events in display
// space. A press either starts a new rectangle, grabs a corner handle to
// resize, or grabs the interior to move. Moves update the rectangle relative
// to the state captured at press time; a release returns to idle.
//
// An Editor is not safe for concurrent use. The session that owns it
// serializes access.
package region

import (
	"image"
	"log/slog"
)

// DefaultTolerance is the distance in display pixels, on each axis, within
// which a press grabs a corner handle.
const DefaultTolerance = 10

// Mode identifies the editor's current state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModeMoving
	ModeResizing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDrawing:
		return "drawing"
	case ModeMoving:
		return "moving"
	case ModeResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Corner names a corner handle.
type Corner int

const (
	NW Corner = iota
	NE
	SW
	SE
)

// corners is the order in which handles are hit-tested.
var corners = [...]Corner{NW, NE, SW, SE}

func (c Corner) String() string {
	switch c {
	case NW:
		return "nw"
	case NE:
		return "ne"
	case SW:
		return "sw"
	case SE:
		return "se"
	default:
		return "unknown"
	}
}

// state is the tagged variant behind Mode. Each variant carries only the data
// that is meaningful in that state.
type state interface {
	mode() Mode
}

type idle struct{}

type drawing struct {
	press image.Point
}

type moving struct {
	press  image.Point
	anchor Rect
}

type resizing struct {
	corner Corner
	anchor Rect
}

func (idle) mode() Mode { return ModeIdle }
func (drawing) mode() Mode { return ModeDrawing }
func (moving) mode() Mode { return ModeMoving }
func (resizing) mode() Mode { return ModeResizing }

// ChangeFunc receives the raw rectangle coordinates after every update.
type ChangeFunc func(x1, y1, x2, y2 int)

// Handle is a draggable corner control.
type Handle struct {
	Corner Corner      `json:"-"`
	Name   string      `json:"corner"`
	At     image.Point `json:"at"`
}

// Option configures an Editor.
type Option func(*Editor)

// WithTolerance sets the corner hit distance. Values below 1 are ignored.
func WithTolerance(px int) Option {
	return func(e *Editor) {
		if px >= 1 {
			e.tolerance = px
		}
	}
}

// WithChangeFunc registers the change callback.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(e *Editor) { e.onChange = fn }
}

// WithLogger sets the logger used for transition traces.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Editor is the selection rectangle state machine.
type Editor struct {
	state     state
	rect      Rect
	hasRect   bool
	handles   bool
	center    *image.Point
	tolerance int
	onChange  ChangeFunc
	logger    *slog.Logger
}

// NewEditor returns an idle editor with no rectangle.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{
		state:     idle{},
		tolerance: DefaultTolerance,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode reports the current state.
func (e *Editor) Mode() Mode {
	return e.state.mode()
}

// ResizeCorner reports which corner is being dragged while resizing.
func (e *Editor) ResizeCorner() (Corner, bool) {
	if s, ok := e.state.(resizing); ok {
		return s.corner, true
	}
	return 0, false
}

// Press handles a pointer-down at (x, y).
//
// Corner handles win over the interior, and the interior wins over starting a
// new rectangle. Starting a new rectangle discards the old one immediately.
// A press while a drag is already in progress is treated as a fresh press.
func (e *Editor) Press(x, y int) {
	p := image.Pt(x, y)

	if c, ok := e.hitCorner(p); ok {
		e.transition(resizing{corner: c, anchor: e.rect.Normalize()})
		return
	}

	if e.hasRect && e.rect.ContainsStrict(x, y) {
		e.transition(moving{press: p, anchor: e.rect.Normalize()})
		return
	}

	e.rect = Rect{}
	e.hasRect = false
	e.handles = false
	e.transition(drawing{press: p})
}

// Move handles a pointer-move to (x, y). It is a no-op while idle.
func (e *Editor) Move(x, y int) {
	switch s := e.state.(type) {
	case drawing:
		e.setRect(Rect{X1: s.press.X, Y1: s.press.Y, X2: x, Y2: y})
	case moving:
		e.setRect(s.anchor.Translate(x-s.press.X, y-s.press.Y))
	case resizing:
		e.setRect(s.anchor.WithCorner(s.corner, image.Pt(x, y)))
	}
}

// Release handles a pointer-up. Any gesture that leaves a rectangle ends
// with it normalized, so a resize dragged past the opposite corner settles
// with its corners relabeled. A finished draw materializes the handles.
func (e *Editor) Release(x, y int) {
	if e.hasRect && e.state.mode() != ModeIdle {
		e.rect = e.rect.Normalize()
		if _, ok := e.state.(drawing); ok {
			e.handles = true
		}
	}
	e.transition(idle{})
	e.logger.Debug("selection released", "x", x, "y", y, "has_rect", e.hasRect)
}

// Rect returns the current rectangle, if any.
func (e *Editor) Rect() (Rect, bool) {
	return e.rect, e.hasRect
}

// SetRect replaces the selection programmatically and shows its handles.
func (e *Editor) SetRect(r Rect) {
	e.transition(idle{})
	e.setRect(r.Normalize())
	e.handles = true
}

// Clear drops the rectangle and its handles and returns to idle.
func (e *Editor) Clear() {
	e.transition(idle{})
	e.rect = Rect{}
	e.hasRect = false
	e.handles = false
}

// Handles returns the visible corner handles in hit-test order, or nil when
// none are shown.
func (e *Editor) Handles() []Handle {
	if !e.handles || !e.hasRect {
		return nil
	}
	r := e.rect.Normalize()
	out := make([]Handle, 0, len(corners))
	for _, c := range corners {
		out = append(out, Handle{Corner: c, Name: c.String(), At: r.CornerPoint(c)})
	}
	return out
}

// SetCenterMarker places the center-crop marker. It does not affect the
// rectangle state machine.
func (e *Editor) SetCenterMarker(x, y int) {
	e.center = &image.Point{X: x, Y: y}
}

// ClearCenterMarker removes the center-crop marker.
func (e *Editor) ClearCenterMarker() {
	e.center = nil
}

// CenterMarker returns the center-crop marker, if set.
func (e *Editor) CenterMarker() (image.Point, bool) {
	if e.center == nil {
		return image.Point{}, false
	}
	return *e.center, true
}

func (e *Editor) hitCorner(p image.Point) (Corner, bool) {
	if !e.hasRect {
		return 0, false
	}
	// Corners are labeled on the normalized rect, the same one Press anchors to.
	r := e.rect.Normalize()
	for _, c := range corners {
		cp := r.CornerPoint(c)
		if abs(p.X-cp.X) < e.tolerance && abs(p.Y-cp.Y) < e.tolerance {
			return c, true
		}
	}
	return 0, false
}

func (e *Editor) setRect(r Rect) {
	e.rect = r
	e.hasRect = true
	if e.onChange != nil {
		e.onChange(r.X1, r.Y1, r.X2, r.Y2)
	}
}

func (e *Editor) transition(next state) {
	prev := e.state
	e.state = next
	if prev.mode() != next.mode() {
		e.logger.Debug("selection state transition", "from", prev.mode().String(), "to", next.mode().String())
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
