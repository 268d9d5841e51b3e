package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result := Crop(img, 0, 0, 50, 50)
	if result.Bounds().Dx() != 50 || result.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Bounds().Dx(), result.Bounds().Dy())
	}
	if result.Bounds().Min != (image.Point{}) {
		t.Errorf("result should start at origin, got %v", result.Bounds().Min)
	}
}

func TestCrop_Reversed(t *testing.T) {
	img := createInMemoryImage(800, 600, color.RGBA{255, 0, 0, 255})

	// Dragged from bottom-right to top-left.
	result := Crop(img, 400, 300, 100, 100)
	if result.Bounds().Dx() != 300 || result.Bounds().Dy() != 200 {
		t.Errorf("dimensions: got %dx%d, want 300x200", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestCrop_ClampsToBounds(t *testing.T) {
	img := createInMemoryImage(100, 80, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		wantW, wantH   int
	}{
		{"negative origin", -10, -10, 50, 50, 50, 50},
		{"past far edge", 50, 40, 200, 200, 50, 40},
		{"everything", -100, -100, 1000, 1000, 100, 80},
		{"reversed and overhanging", 150, 90, -5, 10, 100, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2)
			if result.Bounds().Dx() != tt.wantW || result.Bounds().Dy() != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d",
					result.Bounds().Dx(), result.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_EmptyResult(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"zero width", 50, 0, 50, 50},
		{"zero height", 0, 50, 50, 50},
		{"point", 50, 50, 50, 50},
		{"entirely left", -50, 0, -10, 50},
		{"entirely below", 0, 150, 50, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2)
			if result == nil {
				t.Fatal("Crop returned nil")
			}
			if !result.Bounds().Empty() {
				t.Errorf("expected empty image, got %v", result.Bounds())
			}
		})
	}
}

// Result size must equal the clamped, normalized span on each axis.
func TestCrop_DimensionProperty(t *testing.T) {
	const w, h = 37, 23
	img := createInMemoryImage(w, h, color.RGBA{1, 2, 3, 255})

	span := func(a, b, limit int) int {
		lo, hi := min(a, b), max(a, b)
		return clamp(hi, 0, limit) - clamp(lo, 0, limit)
	}

	coords := []int{-20, -1, 0, 5, 18, 23, 36, 37, 60}
	for _, x1 := range coords {
		for _, x2 := range coords {
			for _, y1 := range coords {
				for _, y2 := range coords {
					got := Crop(img, x1, y1, x2, y2).Bounds()
					wantW, wantH := span(x1, x2, w), span(y1, y2, h)
					if wantW == 0 || wantH == 0 {
						wantW, wantH = 0, 0
					}
					if got.Dx() != wantW || got.Dy() != wantH {
						t.Fatalf("Crop(%d,%d,%d,%d): got %dx%d, want %dx%d",
							x1, y1, x2, y2, got.Dx(), got.Dy(), wantW, wantH)
					}
				}
			}
		}
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	// Crop top-left quadrant (should be red)
	result := Crop(img, 0, 0, 50, 50)

	r, g, b, _ := result.At(25, 25).RGBA()
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
	if r8 != 255 || g8 != 0 || b8 != 0 {
		t.Errorf("cropped image color: got (%d,%d,%d), want (255,0,0)", r8, g8, b8)
	}
}

func TestCrop_DoesNotAliasInput(t *testing.T) {
	img := createPatternImage(20, 20)
	result := Crop(img, 0, 0, 10, 10)

	result.Set(0, 0, color.NRGBA{0, 0, 0, 255})

	if r, _, _, _ := img.At(0, 0).RGBA(); uint8(r>>8) != 255 {
		t.Error("mutating the crop changed the source image")
	}
}

func TestCrop_OffsetBounds(t *testing.T) {
	base := createPatternImage(100, 100)
	// A sub-image whose bounds start at (50,50): the white quadrant.
	sub := base.SubImage(image.Rect(50, 50, 100, 100))

	result := Crop(sub, 0, 0, 10, 10)
	if result.Bounds().Dx() != 10 || result.Bounds().Dy() != 10 {
		t.Fatalf("dimensions: got %dx%d, want 10x10", result.Bounds().Dx(), result.Bounds().Dy())
	}
	r, g, b, _ := result.At(5, 5).RGBA()
	if uint8(r>>8) != 255 || uint8(g>>8) != 255 || uint8(b>>8) != 255 {
		t.Errorf("expected white pixel from offset sub-image, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCenterCrop_DefaultCenter(t *testing.T) {
	img := createInMemoryImage(800, 600, color.RGBA{255, 0, 0, 255})

	result := CenterCrop(img, 400, 300, nil)
	if result.Bounds().Dx() != 400 || result.Bounds().Dy() != 300 {
		t.Errorf("dimensions: got %dx%d, want 400x300", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestCenterCrop_ExplicitCenter(t *testing.T) {
	img := createInMemoryImage(800, 600, color.RGBA{255, 0, 0, 255})

	result := CenterCrop(img, 200, 150, &image.Point{X: 100, Y: 100})
	// left=0, top=25, right=200, bottom=175
	if result.Bounds().Dx() != 200 || result.Bounds().Dy() != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestCenterCrop_ClippedAtEdges(t *testing.T) {
	img := createInMemoryImage(800, 600, color.RGBA{255, 0, 0, 255})

	result := CenterCrop(img, 1000, 800, &image.Point{X: 50, Y: 50})

	// left = 50-500 -> 0, right = -450+1000 = 550
	// top  = 50-400 -> 0, bottom = -350+800 = 450
	gotW, gotH := result.Bounds().Dx(), result.Bounds().Dy()
	if gotW != 550 || gotH != 450 {
		t.Errorf("dimensions: got %dx%d, want 550x450", gotW, gotH)
	}
	if gotW >= 1000 || gotH >= 800 {
		t.Error("clipped window should be smaller than requested")
	}
	if gotW < 0 || gotH < 0 {
		t.Error("dimensions must never be negative")
	}
}

func TestCenterCrop_OddSizeBias(t *testing.T) {
	img := createPatternImage(10, 10)

	// cropW=3 -> left = 5 - 1 = 4, right = 7. The extra column lands right of center.
	result := CenterCrop(img, 3, 3, nil)
	if result.Bounds().Dx() != 3 || result.Bounds().Dy() != 3 {
		t.Fatalf("dimensions: got %dx%d, want 3x3", result.Bounds().Dx(), result.Bounds().Dy())
	}

	// Source pixel (4,4) is red (top-left quadrant); source (5,5) is white.
	r, g, b, _ := result.At(0, 0).RGBA()
	if uint8(r>>8) != 255 || uint8(g>>8) != 0 || uint8(b>>8) != 0 {
		t.Errorf("top-left of window should be source (4,4) red, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = result.At(1, 1).RGBA()
	if uint8(r>>8) != 255 || uint8(g>>8) != 255 || uint8(b>>8) != 255 {
		t.Errorf("middle of window should be source (5,5) white, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCenterCrop_OutsideImage(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	result := CenterCrop(img, 10, 10, &image.Point{X: 500, Y: 500})
	if !result.Bounds().Empty() {
		t.Errorf("window entirely outside image should be empty, got %v", result.Bounds())
	}
}

func TestCropNamed(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		region       string
		wantW, wantH int
		wantRGB      [3]uint8
	}{
		{"top-left", 50, 50, [3]uint8{255, 0, 0}},
		{"top-right", 50, 50, [3]uint8{0, 255, 0}},
		{"bottom-left", 50, 50, [3]uint8{0, 0, 255}},
		{"bottom-right", 50, 50, [3]uint8{255, 255, 255}},
		{"top-half", 100, 50, [3]uint8{255, 0, 0}},
		{"bottom-half", 100, 50, [3]uint8{0, 0, 255}},
		{"left-half", 50, 100, [3]uint8{255, 0, 0}},
		{"right-half", 50, 100, [3]uint8{0, 255, 0}},
		{"center", 50, 50, [3]uint8{255, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			result, err := CropNamed(img, tt.region)
			if err != nil {
				t.Fatalf("CropNamed(%s) failed: %v", tt.region, err)
			}

			if result.Bounds().Dx() != tt.wantW || result.Bounds().Dy() != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d",
					result.Bounds().Dx(), result.Bounds().Dy(), tt.wantW, tt.wantH)
			}

			// Top-left pixel identifies which quadrant the crop started in.
			r, g, b, _ := result.At(0, 0).RGBA()
			got := [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
			if got != tt.wantRGB {
				t.Errorf("color at origin: got %v, want %v", got, tt.wantRGB)
			}
		})
	}
}

func TestCropNamed_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	for _, region := range []string{"invalid", "TOP-LEFT", "middle", "", "center-left"} {
		t.Run(region, func(t *testing.T) {
			if _, err := CropNamed(img, region); err == nil {
				t.Errorf("CropNamed should fail for invalid region %q", region)
			}
		})
	}
}

func TestCropNamed_OddDimensions(t *testing.T) {
	img := createInMemoryImage(101, 101, color.RGBA{255, 0, 0, 255})

	result, err := CropNamed(img, "top-left")
	if err != nil {
		t.Fatalf("CropNamed with odd dimensions failed: %v", err)
	}

	// 101/2 = 50 (integer division)
	if result.Bounds().Dx() != 50 || result.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestRegion_Normalize(t *testing.T) {
	r := Region{X1: 30, Y1: 40, X2: 10, Y2: 20}.Normalize()
	if r != (Region{X1: 10, Y1: 20, X2: 30, Y2: 40}) {
		t.Errorf("Normalize: got %+v", r)
	}
	if r.Width() != 20 || r.Height() != 20 {
		t.Errorf("size: got %dx%d, want 20x20", r.Width(), r.Height())
	}
	if (Region{X1: 5, Y1: 5, X2: 5, Y2: 9}).Empty() != true {
		t.Error("zero-width region should be empty")
	}
}
