package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
)

// Compression defaults. The quality range matches what most JPEG encoders
// treat as useful; above 95 files grow with no visible gain.
const (
	DefaultQualityMin    = 1
	DefaultQualityMax    = 95
	DefaultScaleStepPct  = 10
	DefaultScaleFloorPct = 10
)

// CompressOptions tunes the size-constrained search.
type CompressOptions struct {
	// QualityMin and QualityMax bound the binary search over the encoder's
	// quality parameter (inclusive).
	QualityMin int
	QualityMax int

	// ScaleStepPct is the decrement, in percent of the original dimensions,
	// between fallback ladder rungs. The ladder starts at 100-ScaleStepPct.
	ScaleStepPct int

	// ScaleFloorPct is the smallest scale the ladder tries.
	ScaleFloorPct int

	// Background is composited under transparent pixels when the target
	// format has no alpha channel. Defaults to white.
	Background color.Color
}

// DefaultCompressOptions returns the standard search parameters.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{
		QualityMin:    DefaultQualityMin,
		QualityMax:    DefaultQualityMax,
		ScaleStepPct:  DefaultScaleStepPct,
		ScaleFloorPct: DefaultScaleFloorPct,
		Background:    color.White,
	}
}

func (o CompressOptions) normalized() CompressOptions {
	d := DefaultCompressOptions()
	if o.QualityMin < 1 || o.QualityMin > 100 {
		o.QualityMin = d.QualityMin
	}
	if o.QualityMax < 1 || o.QualityMax > 100 {
		o.QualityMax = d.QualityMax
	}
	if o.QualityMin > o.QualityMax {
		o.QualityMin, o.QualityMax = o.QualityMax, o.QualityMin
	}
	if o.ScaleStepPct <= 0 || o.ScaleStepPct >= 100 {
		o.ScaleStepPct = d.ScaleStepPct
	}
	if o.ScaleFloorPct <= 0 || o.ScaleFloorPct >= 100 {
		o.ScaleFloorPct = d.ScaleFloorPct
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	return o
}

// CompressResult describes the encoding chosen by CompressToSize.
type CompressResult struct {
	// Image is the decode of Data. Callers must adopt this image, not the
	// input, as the new current state: the codec round trip alters pixels.
	Image image.Image `json:"-"`

	// Data holds the encoded bytes.
	Data []byte `json:"-"`

	// Format is the encoding of Data.
	Format Format `json:"format"`

	// Bytes is len(Data). It may exceed TargetBytes when the budget is
	// unreachable; see WithinBudget.
	Bytes int `json:"bytes"`

	// TargetBytes echoes the requested budget.
	TargetBytes int `json:"target_bytes"`

	// WithinBudget reports Bytes <= TargetBytes.
	WithinBudget bool `json:"within_budget"`

	// Quality is the encoder quality used for Data.
	Quality int `json:"quality"`

	// ScalePct is the output size as a percentage of the input dimensions.
	ScalePct int `json:"scale_pct"`

	// Width and Height are the dimensions of Image.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Attempts counts encoder invocations made by the search.
	Attempts int `json:"attempts"`

	// MeanDeltaE is the average CIE Lab distance between the working image
	// at the output resolution and Image (0 = identical).
	MeanDeltaE float64 `json:"mean_delta_e"`
}

// Compressor runs the size-constrained search against a Codec.
type Compressor struct {
	codec  Codec
	opts   CompressOptions
	logger *slog.Logger
}

// NewCompressor creates a Compressor. A nil codec selects DefaultCodec and a
// nil logger discards log output.
func NewCompressor(codec Codec, opts CompressOptions, logger *slog.Logger) *Compressor {
	if codec == nil {
		codec = DefaultCodec{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compressor{codec: codec, opts: opts.normalized(), logger: logger}
}

// Options returns the effective (normalized) options.
func (c *Compressor) Options() CompressOptions {
	return c.opts
}

// CompressToSize encodes img with the package defaults. See Compressor.CompressToSize.
func CompressToSize(img image.Image, targetBytes int, format Format) (*CompressResult, error) {
	return NewCompressor(nil, DefaultCompressOptions(), nil).CompressToSize(img, targetBytes, format)
}

type candidate struct {
	data     []byte
	quality  int
	scalePct int
	working  image.Image
}

// CompressToSize finds the highest-fidelity encoding of img that fits in
// targetBytes.
//
// The search runs in three stages:
//
//  1. Binary search over [QualityMin, QualityMax] at full resolution. An
//     encoding that fits moves the search to the upper half, so the search
//     converges on the highest quality within budget.
//  2. If no quality fits, a downscale ladder (90%, 80%, ... down to the
//     floor) re-encodes at QualityMin and stops at the first fit.
//  3. If the floor is reached without a fit, the smallest encoding seen is
//     returned with WithinBudget=false.
//
// The number of encodes is bounded by ceil(log2(range)) plus the ladder
// length. Errors are only returned for invalid arguments or codec failures;
// an unreachable budget is not an error.
func (c *Compressor) CompressToSize(img image.Image, targetBytes int, format Format) (*CompressResult, error) {
	if targetBytes <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %d", targetBytes)
	}
	if format != JPEG && format != PNG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("cannot compress an empty image")
	}

	working := PrepareForFormat(img, format, c.opts.Background)
	attempts := 0

	var best, smallest *candidate
	consider := func(cand *candidate) {
		if smallest == nil || len(cand.data) < len(smallest.data) {
			smallest = cand
		}
	}

	// Stage 1: quality search at full size.
	lo, hi := c.opts.QualityMin, c.opts.QualityMax
	for lo <= hi {
		q := (lo + hi) / 2
		data, err := c.codec.Encode(working, format, q)
		if err != nil {
			return nil, err
		}
		attempts++

		cand := &candidate{data: data, quality: q, scalePct: 100, working: working}
		consider(cand)

		c.logger.Debug("quality probe", "quality", q, "bytes", len(data), "target", targetBytes)

		if len(data) <= targetBytes {
			best = cand
			lo = q + 1
		} else {
			hi = q - 1
		}
	}

	// Stage 2: downscale ladder at the lowest quality.
	if best == nil {
		w, h := bounds.Dx(), bounds.Dy()
		for pct := 100 - c.opts.ScaleStepPct; pct >= c.opts.ScaleFloorPct; pct -= c.opts.ScaleStepPct {
			sw := max(1, w*pct/100)
			sh := max(1, h*pct/100)
			scaled := c.codec.Resample(working, sw, sh)

			data, err := c.codec.Encode(scaled, format, c.opts.QualityMin)
			if err != nil {
				return nil, err
			}
			attempts++

			cand := &candidate{data: data, quality: c.opts.QualityMin, scalePct: pct, working: scaled}
			consider(cand)

			c.logger.Debug("scale probe", "scale_pct", pct, "width", sw, "height", sh, "bytes", len(data), "target", targetBytes)

			if len(data) <= targetBytes {
				best = cand
				break
			}
		}
	}

	// Stage 3: nothing fits, hand back the smallest encoding.
	chosen := best
	if chosen == nil {
		chosen = smallest
		c.logger.Info("target size unreachable, returning smallest encoding",
			"target", targetBytes, "bytes", len(chosen.data))
	}

	decoded, err := c.codec.Decode(chosen.data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode compressed output: %w", err)
	}

	db := decoded.Bounds()
	return &CompressResult{
		Image:        decoded,
		Data:         chosen.data,
		Format:       format,
		Bytes:        len(chosen.data),
		TargetBytes:  targetBytes,
		WithinBudget: len(chosen.data) <= targetBytes,
		Quality:      chosen.quality,
		ScalePct:     chosen.scalePct,
		Width:        db.Dx(),
		Height:       db.Dy(),
		Attempts:     attempts,
		MeanDeltaE:   math.Round(MeanColorDistance(chosen.working, decoded)*1000) / 1000,
	}, nil
}

// PrepareForFormat returns a copy of img that the given format can store.
//
// For formats without alpha (JPEG), images carrying an alpha channel are
// composited onto bg and every other color mode is converted to opaque RGB.
// Formats with alpha get a plain copy.
func PrepareForFormat(img image.Image, format Format, bg color.Color) *image.NRGBA {
	if format.SupportsAlpha() {
		return imaging.Clone(img)
	}
	if bg == nil {
		bg = color.White
	}

	b := img.Bounds()
	if ColorModeOf(img) != ModeRGBA {
		// Opaque source: a clone is already an opaque RGB raster.
		return imaging.Clone(img)
	}

	canvas := imaging.New(b.Dx(), b.Dy(), opaque(bg))
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

func opaque(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}
