package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// maxFidelitySamples caps the pixels visited by MeanColorDistance so the
// metric stays cheap on multi-megapixel images.
const maxFidelitySamples = 64 * 1024

// MeanColorDistance returns the average CIE76 distance (in Lab space) between
// corresponding pixels of a and b.
//
// The images are compared over their common area. Large images are sampled
// on a regular grid of at most maxFidelitySamples points. Fully transparent
// pixels carry no color and are skipped. A result of 0 means the sampled
// pixels are identical; values below ~0.01 are imperceptible.
//
// Returns 0 if the images share no area.
func MeanColorDistance(a, b image.Image) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	w := min(ab.Dx(), bb.Dx())
	h := min(ab.Dy(), bb.Dy())
	if w <= 0 || h <= 0 {
		return 0
	}

	step := 1
	if w*h > maxFidelitySamples {
		step = int(math.Ceil(math.Sqrt(float64(w*h) / maxFidelitySamples)))
	}

	var total float64
	var n int
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			ca, okA := colorful.MakeColor(a.At(ab.Min.X+x, ab.Min.Y+y))
			cb, okB := colorful.MakeColor(b.At(bb.Min.X+x, bb.Min.Y+y))
			if !okA || !okB {
				continue
			}
			total += ca.DistanceLab(cb)
			n++
		}
	}

	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// ParseHexColor parses "#RRGGBB" (or "RRGGBB") into an opaque color.
func ParseHexColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
