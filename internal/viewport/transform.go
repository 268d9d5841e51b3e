// Package viewport maps between image space and a scaled, centered display space.
//
// A Transform describes how a source raster is drawn on screen:
//
//	display = image*Scale + Offset
//
// Scale is uniform on both axes. Conversions truncate toward zero and never
// clamp; bounds checks are the caller's job.
package viewport

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	cropimg "github.com/ironsheep/image-crop-mcp/internal/imaging"
)

// Transform is the affine mapping from image space to display space.
//
// FitToViewport never upscales, so the transforms it produces have
// 0 < Scale <= 1. Larger scales are valid but lose the one-pixel round-trip
// bound; see RoundTrips.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX int     `json:"offset_x"`
	OffsetY int     `json:"offset_y"`
}

// Identity draws the image 1:1 at the origin.
var Identity = Transform{Scale: 1}

// Valid reports whether the transform can be inverted. It says nothing about
// round-trip precision, which only holds up to Scale 1.
func (t Transform) Valid() bool {
	return t.Scale > 0
}

// RoundTrips reports whether display points survive a trip through image
// space to within one pixel. With Scale 3, display 5 maps to image 1 and back
// to display 3.
func (t Transform) RoundTrips() bool {
	return t.Scale > 0 && t.Scale <= 1
}

// ToImageSpace converts a display-space point to image space.
func (t Transform) ToImageSpace(displayX, displayY int) (int, int) {
	x := int(float64(displayX-t.OffsetX) / t.Scale)
	y := int(float64(displayY-t.OffsetY) / t.Scale)
	return x, y
}

// ToDisplaySpace converts an image-space point to display space.
//
// For 0 < Scale <= 1 the round trip ToDisplaySpace(ToImageSpace(p)) lands
// within one pixel of p on each axis.
func (t Transform) ToDisplaySpace(imageX, imageY int) (int, int) {
	x := int(float64(imageX)*t.Scale + float64(t.OffsetX))
	y := int(float64(imageY)*t.Scale + float64(t.OffsetY))
	return x, y
}

// ToImageRect maps a display-space rectangle corner by corner. The result
// keeps the input's corner order.
func (t Transform) ToImageRect(x1, y1, x2, y2 int) cropimg.Region {
	ix1, iy1 := t.ToImageSpace(x1, y1)
	ix2, iy2 := t.ToImageSpace(x2, y2)
	return cropimg.Region{X1: ix1, Y1: iy1, X2: ix2, Y2: iy2}
}

// Resampler scales an image to exact dimensions. cropimg.Codec satisfies it.
type Resampler interface {
	Resample(img image.Image, width, height int) image.Image
}

// ErrEmptyViewport is returned when the viewport has no area.
var ErrEmptyViewport = errors.New("viewport must have positive width and height")

// FitToViewport scales img to fit a viewportW x viewportH area and centers it.
//
// The scale is min(viewportW/w, viewportH/h, 1), so images smaller than the
// viewport are shown at native size rather than enlarged. A nil resampler
// selects the default Lanczos codec.
func FitToViewport(img image.Image, viewportW, viewportH int, resampler Resampler) (image.Image, Transform, error) {
	if viewportW <= 0 || viewportH <= 0 {
		return nil, Transform{}, fmt.Errorf("%w: got %dx%d", ErrEmptyViewport, viewportW, viewportH)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, Transform{}, errors.New("cannot fit an empty image")
	}
	if resampler == nil {
		resampler = cropimg.DefaultCodec{}
	}

	scale := min(float64(viewportW)/float64(w), float64(viewportH)/float64(h), 1.0)

	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))

	var display image.Image
	if dw == w && dh == h {
		display = imaging.Clone(img)
	} else {
		display = resampler.Resample(img, dw, dh)
	}

	return display, Transform{
		Scale:   scale,
		OffsetX: (viewportW - dw) / 2,
		OffsetY: (viewportH - dh) / 2,
	}, nil
}
