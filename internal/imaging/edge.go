package imaging

import (
	"image"
	"math"
)

// Gradient selects the intensity EdgeDetector differentiates.
type Gradient string

const (
	// GradientColor differentiates R, G and B separately and keeps, per
	// pixel, the strongest of the three. Pad borders that differ from the
	// strip in hue but not in brightness still produce strong edges.
	GradientColor Gradient = "color"

	// GradientLuma differentiates BT.601 luma only.
	GradientLuma Gradient = "luma"
)

// Valid reports whether g names a known gradient. The empty value selects
// the default.
func (g Gradient) Valid() bool {
	return g == "" || g == GradientColor || g == GradientLuma
}

// EdgeOptions configures the hysteresis thresholds of EdgeDetector.
//
// Both thresholds are on the 0-255 gradient scale. With the 3x3 Gaussian
// pre-blur a clean step of d levels produces a peak magnitude of about 3d, so
// the default high threshold of 150 accepts pad borders with at least 50
// levels of contrast (in any one channel for GradientColor, in luma for
// GradientLuma).
type EdgeOptions struct {
	Low      float64  `yaml:"low"`
	High     float64  `yaml:"high"`
	Gradient Gradient `yaml:"gradient"`
}

// DefaultEdgeOptions returns the standard thresholds (low 50, high 150) on
// the color gradient.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{Low: 50, High: 150, Gradient: GradientColor}
}

// EdgeMask is a binary edge map with the dimensions of its source buffer.
type EdgeMask struct {
	Width  int
	Height int
	bits   []bool
}

// NewEdgeMask returns an empty mask.
func NewEdgeMask(width, height int) *EdgeMask {
	return &EdgeMask{Width: width, Height: height, bits: make([]bool, width*height)}
}

// At reports whether (x, y) is an edge pixel. Out-of-range coordinates are false.
func (m *EdgeMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.bits[y*m.Width+x]
}

// Set marks or clears (x, y). Out-of-range coordinates are ignored.
func (m *EdgeMask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.bits[y*m.Width+x] = v
}

// Count returns the number of edge pixels.
func (m *EdgeMask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Image renders the mask as grayscale: edges white (255), background black.
func (m *EdgeMask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, b := range m.bits {
		if b {
			img.Pix[i] = 255
		}
	}
	return img
}

// EdgeDetectResult contains an edge mask encoded as base64 PNG.
type EdgeDetectResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	EdgePixels  int    `json:"edge_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode renders the mask as a base64 PNG result.
func (m *EdgeMask) Encode() (*EdgeDetectResult, error) {
	encoded, err := EncodePNGBase64(m.Image())
	if err != nil {
		return nil, err
	}
	return &EdgeDetectResult{
		Width:       m.Width,
		Height:      m.Height,
		EdgePixels:  m.Count(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EdgeDetector performs Canny edge detection on a PixelBuffer.
type EdgeDetector struct {
	opts EdgeOptions
}

// NewEdgeDetector creates an EdgeDetector. Non-positive thresholds and an
// unknown gradient fall back to the defaults; a low threshold above the high
// one is lowered to match it.
func NewEdgeDetector(opts EdgeOptions) *EdgeDetector {
	def := DefaultEdgeOptions()
	if opts.Gradient == "" || !opts.Gradient.Valid() {
		opts.Gradient = def.Gradient
	}
	if opts.Low <= 0 {
		opts.Low = def.Low
	}
	if opts.High <= 0 {
		opts.High = def.High
	}
	if opts.Low > opts.High {
		opts.Low = opts.High
	}
	return &EdgeDetector{opts: opts}
}

// Detect returns the edge mask of buf.
//
// # Algorithm
//
//  1. Intensity planes: R, G and B for GradientColor, or a single ITU-R
//     BT.601 luma plane for GradientLuma (0-255 scale)
//
//  2. Gaussian blur of each plane with the 3x3 kernel [1 2 1; 2 4 2; 1 2 1] / 16
//
//  3. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²)
//     direction = atan2(Gy, Gx)
//     taken per pixel from the plane with the largest magnitude
//
//  4. Non-maximum suppression: keep only local maxima along the gradient
//     direction quantized to 0°, 45°, 90° or 135°
//
//  5. Hysteresis: pixels >= High are strong edges; pixels >= Low are weak
//     edges and are kept only when an 8-connected chain of weak pixels links
//     them to a strong edge
//
// An empty buffer yields an empty mask.
func (d *EdgeDetector) Detect(buf *PixelBuffer) *EdgeMask {
	width, height := buf.Width, buf.Height
	mask := NewEdgeMask(width, height)
	if buf.Empty() {
		return mask
	}

	var magnitude, direction [][]float64
	for _, plane := range d.planes(buf) {
		mag, dir := sobel(gaussianBlur3(plane, width, height), width, height)
		if magnitude == nil {
			magnitude, direction = mag, dir
			continue
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if mag[y][x] > magnitude[y][x] {
					magnitude[y][x] = mag[y][x]
					direction[y][x] = dir[y][x]
				}
			}
		}
	}
	suppressed := nonMaxSuppression(magnitude, direction, width, height)

	// Seed with strong pixels, then grow through weak ones.
	queue := make([]int, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] >= d.opts.High {
				mask.bits[y*width+x] = true
				queue = append(queue, y*width+x)
			}
		}
	}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		px, py := idx%width, idx/width
		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				nx, ny := px+kx, py+ky
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				n := ny*width + nx
				if mask.bits[n] || suppressed[ny][nx] < d.opts.Low {
					continue
				}
				mask.bits[n] = true
				queue = append(queue, n)
			}
		}
	}
	return mask
}

// planes splits buf into the intensity grids the gradient is taken on.
func (d *EdgeDetector) planes(buf *PixelBuffer) [][][]float64 {
	n := 3
	if d.opts.Gradient == GradientLuma {
		n = 1
	}
	planes := make([][][]float64, n)
	for c := range planes {
		planes[c] = make([][]float64, buf.Height)
		for y := range planes[c] {
			planes[c][y] = make([]float64, buf.Width)
		}
	}

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if n == 1 {
				planes[0][y][x] = buf.Luma(x, y)
				continue
			}
			i := (y*buf.Width + x) * 3
			for c := 0; c < 3; c++ {
				planes[c][y][x] = float64(buf.Pix[i+c])
			}
		}
	}
	return planes
}

// EdgeDetect is a convenience wrapper that converts img, detects edges with
// the given thresholds and returns the encoded mask.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EdgeDetectResult, error) {
	buf, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	det := NewEdgeDetector(EdgeOptions{
		Low:      float64(thresholdLow),
		High:     float64(thresholdHigh),
		Gradient: GradientColor,
	})
	return det.Detect(buf).Encode()
}

// gaussianBlur3 applies a 3x3 Gaussian blur with replicated borders.
func gaussianBlur3(img [][]float64, width, height int) [][]float64 {
	kernel := [3][3]float64{
		{1, 2, 1},
		{2, 4, 2},
		{1, 2, 1},
	}
	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += img[py][px] * kernel[ky+1][kx+1]
				}
			}
			result[y][x] = sum / 16
		}
	}
	return result
}

func sobel(img [][]float64, width, height int) (magnitude, direction [][]float64) {
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude = make([][]float64, height)
	direction = make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += img[py][px] * sobelX[ky+1][kx+1]
					gy += img[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}
	return magnitude, direction
}

// nonMaxSuppression thins ridges to local maxima. Border pixels are dropped.
func nonMaxSuppression(magnitude, direction [][]float64, width, height int) [][]float64 {
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]
			if mag == 0 {
				continue
			}

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}
	return suppressed
}
