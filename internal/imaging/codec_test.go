package imaging

import (
	"encoding/base64"
	"errors"
	"image/color"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"jpeg", JPEG, false},
		{"JPG", JPEG, false},
		{" png ", PNG, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"/tmp/out.jpg", JPEG, false},
		{"photo.JPEG", JPEG, false},
		{"shot.png", PNG, false},
		{"noext", "", true},
		{"anim.gif", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormat_Properties(t *testing.T) {
	if JPEG.MimeType() != "image/jpeg" || PNG.MimeType() != "image/png" {
		t.Error("unexpected MIME types")
	}
	if JPEG.SupportsAlpha() {
		t.Error("JPEG should not support alpha")
	}
	if !PNG.SupportsAlpha() {
		t.Error("PNG should support alpha")
	}
}

func TestDefaultCodec_RoundTrip(t *testing.T) {
	codec := DefaultCodec{}
	src := createPatternImage(40, 30)

	for _, format := range []Format{JPEG, PNG} {
		t.Run(string(format), func(t *testing.T) {
			data, err := codec.Encode(src, format, 90)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			img, err := codec.Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
				t.Errorf("dimensions: got %v, want 40x30", img.Bounds())
			}

			d := MeanColorDistance(src, img)
			if format == PNG && d != 0 {
				t.Errorf("PNG should be lossless, delta %f", d)
			}
			if format == JPEG && d > 10 {
				t.Errorf("JPEG q90 too lossy, delta %f", d)
			}
		})
	}
}

func TestDefaultCodec_QualityAffectsJPEGSize(t *testing.T) {
	codec := DefaultCodec{}
	src := createNoiseImage(64, 64)

	low, err := codec.Encode(src, JPEG, 10)
	if err != nil {
		t.Fatalf("Encode q10: %v", err)
	}
	high, err := codec.Encode(src, JPEG, 95)
	if err != nil {
		t.Fatalf("Encode q95: %v", err)
	}
	if len(low) >= len(high) {
		t.Errorf("q10 (%d bytes) should be smaller than q95 (%d bytes)", len(low), len(high))
	}
}

func TestDefaultCodec_PNGIgnoresQuality(t *testing.T) {
	codec := DefaultCodec{}
	src := createPatternImage(32, 32)

	a, err := codec.Encode(src, PNG, 1)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := codec.Encode(src, PNG, 100)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(a) != len(b) {
		t.Errorf("PNG size changed with quality: %d vs %d", len(a), len(b))
	}
}

func TestDefaultCodec_UnsupportedFormat(t *testing.T) {
	_, err := DefaultCodec{}.Encode(createPatternImage(4, 4), Format("webp"), 80)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDefaultCodec_Resample(t *testing.T) {
	out := DefaultCodec{}.Resample(createPatternImage(100, 50), 0, 25)
	if out.Bounds().Dx() != 1 || out.Bounds().Dy() != 25 {
		t.Errorf("dimensions: got %v, want 1x25", out.Bounds())
	}
}

func TestEncodeForTransport(t *testing.T) {
	enc, err := EncodeForTransport(DefaultCodec{}, createInMemoryImage(20, 10, color.RGBA{0, 0, 255, 255}), PNG, 0)
	if err != nil {
		t.Fatalf("EncodeForTransport failed: %v", err)
	}
	if enc.Width != 20 || enc.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", enc.Width, enc.Height)
	}
	if enc.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", enc.MimeType)
	}
	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	if len(raw) != enc.SizeBytes {
		t.Errorf("SizeBytes=%d, decoded %d bytes", enc.SizeBytes, len(raw))
	}
}
