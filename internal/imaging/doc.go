// Package imaging provides the pixel-level stages of the strip analysis pipeline.
//
// It owns the PixelBuffer type that every later stage consumes, the loaders that
// produce it, the preprocessing chain (white balance, bilateral denoise, adaptive
// contrast), Canny edge detection, and the overlay renderer used to annotate
// detected pads.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive and Max is exclusive
//
// # Buffers
//
// A PixelBuffer is a packed 8-bit RGB raster. Alpha is discarded on import.
// Every stage returns a new buffer; no function in this package mutates the
// buffer it was given, so a single decoded image can feed several stages
// concurrently.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Preprocessor and EdgeDetector
// hold only immutable options after construction and may be shared between
// goroutines.
//
// # Color Representation
//
// Colors are exposed as 8-bit RGB, "#RRGGBB" hex strings, HSL and CIELAB. Lab
// conversion assumes sRGB input and the D65 white point, and is delegated to
// go-colorful. Lab values use the conventional scale (L in 0-100) so that
// DeltaE distances read in standard ΔE76 units.
//
// # Error Handling
//
// Functions return errors for:
//   - Images with zero pixels (ErrEmptyImage)
//   - File I/O errors during image loading
//   - Unsupported or corrupt image encodings
//   - Encoding errors during image output
package imaging
