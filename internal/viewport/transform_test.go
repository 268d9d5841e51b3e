package viewport

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i-3] = 200
		img.Pix[i] = 255
	}
	return img
}

type countingResampler struct {
	calls int
}

func (r *countingResampler) Resample(_ image.Image, width, height int) image.Image {
	r.calls++
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

func TestToImageSpace(t *testing.T) {
	tr := Transform{Scale: 0.5, OffsetX: 50, OffsetY: 50}

	x, y := tr.ToImageSpace(100, 100)
	if x != 100 || y != 100 {
		t.Errorf("got (%d,%d), want (100,100)", x, y)
	}
}

func TestToImageSpace_TruncatesTowardZero(t *testing.T) {
	tr := Transform{Scale: 0.3, OffsetX: 10, OffsetY: 10}

	tests := []struct {
		dx, dy int
		wx, wy int
	}{
		{10, 10, 0, 0},
		{11, 12, 3, 6}, // 3.33, 6.67
		{9, 8, -3, -6}, // -3.33, -6.67 truncate toward zero
		{41, 101, 103, 303},
	}

	for _, tt := range tests {
		x, y := tr.ToImageSpace(tt.dx, tt.dy)
		if x != tt.wx || y != tt.wy {
			t.Errorf("ToImageSpace(%d,%d): got (%d,%d), want (%d,%d)", tt.dx, tt.dy, x, y, tt.wx, tt.wy)
		}
	}
}

func TestToDisplaySpace(t *testing.T) {
	tr := Transform{Scale: 0.5, OffsetX: 50, OffsetY: 20}

	x, y := tr.ToDisplaySpace(100, 100)
	if x != 100 || y != 70 {
		t.Errorf("got (%d,%d), want (100,70)", x, y)
	}
}

func TestRoundTrip_WithinOnePixel(t *testing.T) {
	transforms := []Transform{
		Identity,
		{Scale: 0.5, OffsetX: 50, OffsetY: 0},
		{Scale: 0.3333, OffsetX: 7, OffsetY: 113},
		{Scale: 0.1, OffsetX: 0, OffsetY: 0},
		{Scale: 0.77, OffsetX: -20, OffsetY: 15},
		{Scale: 0.01, OffsetX: 395, OffsetY: 295},
		{Scale: 0.999, OffsetX: 1, OffsetY: -1},
	}

	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}

	for _, tr := range transforms {
		for px := -60; px <= 460; px += 3 {
			for py := -60; py <= 460; py += 7 {
				ix, iy := tr.ToImageSpace(px, py)
				bx, by := tr.ToDisplaySpace(ix, iy)
				if abs(bx-px) > 1 || abs(by-py) > 1 {
					t.Fatalf("transform %+v: (%d,%d) -> (%d,%d) -> (%d,%d)", tr, px, py, ix, iy, bx, by)
				}
			}
		}
	}
}

func TestToImageRect_KeepsCornerOrder(t *testing.T) {
	tr := Transform{Scale: 0.5, OffsetX: 10, OffsetY: 10}

	r := tr.ToImageRect(60, 60, 10, 10)
	if r.X1 != 100 || r.Y1 != 100 || r.X2 != 0 || r.Y2 != 0 {
		t.Errorf("got %+v", r)
	}
	if n := r.Normalize(); n.Width() != 100 || n.Height() != 100 {
		t.Errorf("normalized size: %dx%d", n.Width(), n.Height())
	}
}

func TestValid(t *testing.T) {
	if (Transform{}).Valid() {
		t.Error("zero scale should be invalid")
	}
	if (Transform{Scale: -1}).Valid() {
		t.Error("negative scale should be invalid")
	}
	if !Identity.Valid() {
		t.Error("identity should be valid")
	}
}

func TestRoundTrips(t *testing.T) {
	tests := []struct {
		tr   Transform
		want bool
	}{
		{Identity, true},
		{Transform{Scale: 0.01}, true},
		{Transform{}, false},
		{Transform{Scale: 3}, false},
	}
	for _, tt := range tests {
		if got := tt.tr.RoundTrips(); got != tt.want {
			t.Errorf("%+v: got %v, want %v", tt.tr, got, tt.want)
		}
	}

	// Past Scale 1 the one-pixel bound fails.
	up := Transform{Scale: 3}
	ix, _ := up.ToImageSpace(5, 0)
	if bx, _ := up.ToDisplaySpace(ix, 0); bx != 3 {
		t.Errorf("scale 3: display 5 came back as %d, want 3", bx)
	}
}

func TestFitToViewport_Downscale(t *testing.T) {
	img := solid(800, 600)

	display, tr, err := FitToViewport(img, 400, 300, nil)
	if err != nil {
		t.Fatalf("FitToViewport failed: %v", err)
	}
	if tr.Scale != 0.5 {
		t.Errorf("Scale: got %f, want 0.5", tr.Scale)
	}
	if display.Bounds().Dx() != 400 || display.Bounds().Dy() != 300 {
		t.Errorf("display size: got %v, want 400x300", display.Bounds())
	}
	if tr.OffsetX != 0 || tr.OffsetY != 0 {
		t.Errorf("offsets: got (%d,%d), want (0,0)", tr.OffsetX, tr.OffsetY)
	}
}

func TestFitToViewport_CentersLetterbox(t *testing.T) {
	img := solid(800, 600)

	display, tr, err := FitToViewport(img, 500, 300, nil)
	if err != nil {
		t.Fatalf("FitToViewport failed: %v", err)
	}
	// Height-limited: scale 0.5, display 400x300, 50px bars left and right.
	if tr.Scale != 0.5 || tr.OffsetX != 50 || tr.OffsetY != 0 {
		t.Errorf("transform: got %+v", tr)
	}
	if display.Bounds().Dx() != 400 {
		t.Errorf("display width: got %d, want 400", display.Bounds().Dx())
	}
}

func TestFitToViewport_NeverUpscales(t *testing.T) {
	img := solid(100, 50)
	r := &countingResampler{}

	display, tr, err := FitToViewport(img, 1000, 1000, r)
	if err != nil {
		t.Fatalf("FitToViewport failed: %v", err)
	}
	if tr.Scale != 1 {
		t.Errorf("Scale: got %f, want 1", tr.Scale)
	}
	if display.Bounds().Dx() != 100 || display.Bounds().Dy() != 50 {
		t.Errorf("display size: got %v, want 100x50", display.Bounds())
	}
	if tr.OffsetX != 450 || tr.OffsetY != 475 {
		t.Errorf("offsets: got (%d,%d), want (450,475)", tr.OffsetX, tr.OffsetY)
	}
	if r.calls != 0 {
		t.Errorf("native-size fit should not resample, got %d calls", r.calls)
	}
	if display == image.Image(img) {
		t.Error("display must be a copy, not the source")
	}
}

func TestFitToViewport_ScaleNeverAboveOne(t *testing.T) {
	sizes := [][2]int{{1, 1}, {10, 3000}, {3000, 10}, {640, 480}, {1920, 1080}}
	viewports := [][2]int{{1, 1}, {50, 50}, {800, 600}, {4000, 4000}}

	for _, s := range sizes {
		for _, v := range viewports {
			display, tr, err := FitToViewport(solid(s[0], s[1]), v[0], v[1], &countingResampler{})
			if err != nil {
				t.Fatalf("fit %v into %v: %v", s, v, err)
			}
			if !tr.RoundTrips() {
				t.Errorf("fit %v into %v: scale %f out of (0,1]", s, v, tr.Scale)
			}
			b := display.Bounds()
			if b.Dx() < 1 || b.Dy() < 1 {
				t.Errorf("fit %v into %v: empty display %v", s, v, b)
			}
		}
	}
}

func TestFitToViewport_UsesResampler(t *testing.T) {
	r := &countingResampler{}
	if _, _, err := FitToViewport(solid(300, 300), 100, 100, r); err != nil {
		t.Fatalf("FitToViewport failed: %v", err)
	}
	if r.calls != 1 {
		t.Errorf("resampler calls: got %d, want 1", r.calls)
	}
}

func TestFitToViewport_Errors(t *testing.T) {
	if _, _, err := FitToViewport(solid(10, 10), 0, 100, nil); !errors.Is(err, ErrEmptyViewport) {
		t.Errorf("expected ErrEmptyViewport, got %v", err)
	}
	if _, _, err := FitToViewport(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 100, 100, nil); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestFitToViewport_DoesNotMutateInput(t *testing.T) {
	img := solid(20, 20)
	display, _, err := FitToViewport(img, 100, 100, nil)
	if err != nil {
		t.Fatalf("FitToViewport failed: %v", err)
	}
	display.(*image.NRGBA).Set(0, 0, color.NRGBA{0, 0, 0, 255})
	if img.NRGBAAt(0, 0).R != 200 {
		t.Error("writing to the display image changed the source")
	}
}
