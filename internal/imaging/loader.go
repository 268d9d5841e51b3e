package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp" // Register BMP format decoder
)

// readableTypes maps the sniffed MIME types we accept to short format names.
var readableTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The cache stores decoded image.Image objects keyed by their file path. Once
// an image is loaded, subsequent Load() calls for the same path return the
// cached copy without disk I/O. Cached images are shared: callers must copy
// before mutating, which every operation in this package already does.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	codec  Codec
	images map[string]*cachedImage
}

type cachedImage struct {
	img    image.Image
	format string
	size   int64
}

// NewImageCache creates an empty cache that decodes with codec. A nil codec
// selects DefaultCodec.
func NewImageCache(codec Codec) *ImageCache {
	if codec == nil {
		codec = DefaultCodec{}
	}
	return &ImageCache{
		codec:  codec,
		images: make(map[string]*cachedImage),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// The file content is sniffed before decoding; anything other than JPEG, PNG,
// GIF, or BMP fails with ErrUnsupportedFormat regardless of its extension.
// Failed loads are not cached.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string) (*cachedImage, error) {
	c.mu.RLock()
	if entry, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mime := mimetype.Detect(data)
	format, ok := readableTypes[mime.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime.String())
	}

	img, err := c.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	entry := &cachedImage{img: img, format: format, size: int64(len(data))}

	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*cachedImage)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// The next Load() for this path reads from disk again, which is what callers
// want after the file has been overwritten by a save.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ColorMode classifies an image's channels.
type ColorMode string

const (
	ModeGray ColorMode = "L"
	ModeRGB  ColorMode = "RGB"
	ModeRGBA ColorMode = "RGBA"
)

// ColorModeOf reports the color mode implied by img's color model.
//
// Paletted images count as RGBA when their palette contains a non-opaque
// entry, since GIF transparency is carried that way.
func ColorModeOf(img image.Image) ColorMode {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.YCbCr, *image.CMYK:
		return ModeRGB
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return ModeRGBA
			}
		}
		return ModeRGB
	}

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return ModeGray
	case color.YCbCrModel, color.CMYKModel:
		return ModeRGB
	}
	return ModeRGBA
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the sniffed container format: "jpeg", "png", "gif", or "bmp".
	// Detection is based on file contents, not the extension.
	Format string `json:"format"`

	// ColorMode is "L", "RGB", or "RGBA".
	ColorMode ColorMode `json:"color_mode"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	bounds := entry.img.Bounds()
	mode := ColorModeOf(entry.img)

	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		ColorMode:     mode,
		HasAlpha:      mode == ModeRGBA,
		FileSizeBytes: entry.size,
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
