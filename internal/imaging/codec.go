package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Format identifies an output encoding.
type Format string

const (
	// JPEG is the lossy format. It has no alpha channel.
	JPEG Format = "jpeg"

	// PNG is the lossless format. The quality parameter has no effect on it.
	PNG Format = "png"
)

// ErrUnsupportedFormat is returned for formats the codec cannot read or write.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ParseFormat converts a user-supplied format name into a Format.
//
// Accepted names are case-insensitive: "jpeg", "jpg", and "png".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromPath infers the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: no extension on %q", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// MimeType returns the MIME type written for the format.
func (f Format) MimeType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// SupportsAlpha reports whether the format can store transparency.
func (f Format) SupportsAlpha() bool {
	return f == PNG
}

// Codec is the boundary between the engines and the actual image codecs.
//
// The compression engine and the viewport fitter depend only on these three
// operations, which keeps them testable with counting or failing fakes.
type Codec interface {
	// Decode parses encoded bytes into an image.
	Decode(data []byte) (image.Image, error)

	// Encode serializes img in the given format. Quality is 1-100 and only
	// affects lossy formats.
	Encode(img image.Image, format Format, quality int) ([]byte, error)

	// Resample scales img to exactly width x height with a high-quality filter.
	Resample(img image.Image, width, height int) image.Image
}

// DefaultCodec implements Codec on top of github.com/disintegration/imaging.
type DefaultCodec struct{}

// Decode decodes JPEG, PNG, GIF, or BMP data and applies EXIF orientation.
func (DefaultCodec) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Encode encodes img as JPEG at the given quality, or as maximally compressed PNG.
func (DefaultCodec) Encode(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case JPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(clampQuality(quality)))
	case PNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	return buf.Bytes(), nil
}

// Resample resizes img with a Lanczos filter. Dimensions below 1 are raised to 1.
func (DefaultCodec) Resample(img image.Image, width, height int) image.Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
