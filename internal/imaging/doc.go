// Package imaging provides the raster operations behind the crop and compress tools.
//
// This package implements the codec boundary (decode, encode, resample), the
// crop operator (rectangle and center-anchored crops), and the
// size-constrained compression engine. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are image-space and 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive and (x2,y2) is exclusive once the
//     region has been normalized
//
// Regions may be passed in any corner order. Crop functions normalize them
// and clamp to the image bounds instead of failing.
//
// # Ownership
//
// No function in this package mutates its input. Crop and compression results
// are fresh *image.NRGBA values, so callers can keep earlier images around for
// undo and reset.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining operations are
// stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Geometry is never an error: a rectangle that clamps to nothing yields an
// empty image, and an unreachable byte budget yields the closest achievable
// encoding. Errors are reserved for:
//   - File I/O and decode failures while loading
//   - Unsupported input or output formats
//   - Encoder failures
package imaging
