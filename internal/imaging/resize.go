package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension bounds the longest side of an image entering the pipeline.
const DefaultMaxDimension = 1024

// NeedsDownscale reports whether a width x height image exceeds maxDim on
// either side. A non-positive maxDim never requires downscaling.
func NeedsDownscale(width, height, maxDim int) bool {
	return maxDim > 0 && (width > maxDim || height > maxDim)
}

// Downscale shrinks img so that neither side exceeds maxDim, preserving the
// aspect ratio. Images that already fit are returned unchanged.
//
// Lanczos resampling is used; it keeps pad interiors flat while shrinking the
// blur band at pad borders to about one pixel.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if !NeedsDownscale(b.Dx(), b.Dy(), maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// CropResult contains a cropped image encoded as base64 PNG.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts rect from img, optionally scaling it, and encodes it as PNG.
//
// Used to return close-ups of detected pads. scale values <= 0 or equal to 1
// leave the crop at its native size.
func Crop(img image.Image, rect image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, bounds)
	}
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", rect)
	}

	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNGBase64 encodes img as PNG and returns the standard base64 text.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SavePNG writes img to path using disintegration/imaging's encoder.
func SavePNG(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
