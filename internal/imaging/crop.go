package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region represents a rectangular region within an image.
//
// Coordinates may arrive in any corner order (e.g. from a drag that started
// at the bottom-right). Call Normalize before treating X1/Y1 as the top-left.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Normalize returns the region with X1 <= X2 and Y1 <= Y2.
func (r Region) Normalize() Region {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Clamp normalizes the region and limits it to [0,width]x[0,height].
func (r Region) Clamp(width, height int) Region {
	r = r.Normalize()
	r.X1 = clamp(r.X1, 0, width)
	r.Y1 = clamp(r.Y1, 0, height)
	r.X2 = clamp(r.X2, 0, width)
	r.Y2 = clamp(r.Y2, 0, height)
	return r
}

// Width returns the normalized width.
func (r Region) Width() int {
	n := r.Normalize()
	return n.X2 - n.X1
}

// Height returns the normalized height.
func (r Region) Height() int {
	n := r.Normalize()
	return n.Y2 - n.Y1
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Crop extracts a rectangular region from an image.
//
// The rectangle is normalized and clamped to the image bounds. If nothing
// remains after clamping, Crop returns a 0x0 image; callers must check the
// result's dimensions before committing it. The returned image never shares
// pixels with img.
func Crop(img image.Image, x1, y1, x2, y2 int) *image.NRGBA {
	bounds := img.Bounds()
	r := Region{X1: x1, Y1: y1, X2: x2, Y2: y2}.Clamp(bounds.Dx(), bounds.Dy())

	if r.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}

	// imaging.Crop works in absolute bounds; images decoded from sub-rectangles
	// may not start at (0,0).
	rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(bounds.Min)
	return imaging.Crop(img, rect)
}

// CenterCrop extracts a cropW x cropH window centered on center.
//
// If center is nil, the image center (width/2, height/2) is used. The window's
// top-left is center minus half the crop size using integer division, so odd
// sizes put the extra pixel on the right/bottom. The window is clamped to the
// image, so the result is the intersection of the ideal window with the image
// bounds and may be smaller than requested.
func CenterCrop(img image.Image, cropW, cropH int, center *image.Point) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	cx, cy := w/2, h/2
	if center != nil {
		cx, cy = center.X, center.Y
	}

	left := cx - cropW/2
	top := cy - cropH/2

	return Crop(img, left, top, left+cropW, top+cropH)
}

// Clone returns an independent copy of img with bounds starting at (0,0).
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// CropNamed extracts a named region of an image.
//
// Supported names: top-left, top-right, bottom-left, bottom-right, top-half,
// bottom-half, left-half, right-half, and center (the middle 50%).
func CropNamed(img image.Image, region string) (*image.NRGBA, error) {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	midX := w / 2
	midY := h / 2

	var x1, y1, x2, y2 int

	switch region {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		qW := w / 4
		qH := h / 4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return nil, fmt.Errorf("unknown region: %s", region)
	}

	return Crop(img, x1, y1, x2, y2), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
