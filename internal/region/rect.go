package region

import (
	"image"

	cropimg "github.com/ironsheep/image-crop-mcp/internal/imaging"
)

// Rect is a selection rectangle in display space.
//
// Corner order follows the gesture that produced it; (X1,Y1) is not
// necessarily the top-left until Normalize is called.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Normalize returns the rectangle with X1 <= X2 and Y1 <= Y2.
func (r Rect) Normalize() Rect {
	n := cropimg.Region(r).Normalize()
	return Rect(n)
}

// Width returns the normalized width.
func (r Rect) Width() int { return cropimg.Region(r).Width() }

// Height returns the normalized height.
func (r Rect) Height() int { return cropimg.Region(r).Height() }

// Degenerate reports whether the rectangle has zero width or height.
func (r Rect) Degenerate() bool { return cropimg.Region(r).Empty() }

// ContainsStrict reports whether (x, y) lies inside the rectangle, boundary
// excluded.
func (r Rect) ContainsStrict(x, y int) bool {
	n := r.Normalize()
	return n.X1 < x && x < n.X2 && n.Y1 < y && y < n.Y2
}

// Translate shifts every coordinate by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// CornerPoint returns the position of corner c.
func (r Rect) CornerPoint(c Corner) image.Point {
	switch c {
	case NW:
		return image.Pt(r.X1, r.Y1)
	case NE:
		return image.Pt(r.X2, r.Y1)
	case SW:
		return image.Pt(r.X1, r.Y2)
	default:
		return image.Pt(r.X2, r.Y2)
	}
}

// WithCorner replaces the coordinates owned by corner c with p. The
// coordinates of the opposite corner are left as they are.
func (r Rect) WithCorner(c Corner, p image.Point) Rect {
	switch c {
	case NW:
		r.X1, r.Y1 = p.X, p.Y
	case NE:
		r.X2, r.Y1 = p.X, p.Y
	case SW:
		r.X1, r.Y2 = p.X, p.Y
	case SE:
		r.X2, r.Y2 = p.X, p.Y
	}
	return r
}
