package imaging

import (
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned when an image or buffer has no pixels.
var ErrEmptyImage = errors.New("imaging: image has no pixels")

// PixelBuffer is a packed 8-bit RGB raster.
//
// Pix holds Width*Height*3 bytes in row-major order. The zero value is an
// empty buffer and is rejected by every pipeline stage.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a black buffer of the given size.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// FromImage converts any image.Image into a PixelBuffer.
//
// The source is normalized to non-premultiplied RGBA first, so translucent
// pixels keep their color and simply lose their alpha. The returned buffer's
// origin is always (0,0) regardless of the source bounds.
//
// Returns ErrEmptyImage if img is nil or has zero area.
func FromImage(img image.Image) (*PixelBuffer, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	nrgba := imaging.Clone(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	buf := NewPixelBuffer(w, h)

	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		dst := buf.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3] = src[x*4]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return buf, nil
}

// Len returns the number of pixels in the buffer.
func (b *PixelBuffer) Len() int {
	if b == nil {
		return 0
	}
	return b.Width * b.Height
}

// Empty reports whether the buffer has no pixels.
func (b *PixelBuffer) Empty() bool {
	return b.Len() == 0 || len(b.Pix) < b.Len()*3
}

// InBounds reports whether (x, y) addresses a pixel of the buffer.
func (b *PixelBuffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// RGB returns the color at (x, y). Coordinates are clamped to the buffer.
func (b *PixelBuffer) RGB(x, y int) RGBColor {
	x = clamp(x, 0, b.Width-1)
	y = clamp(y, 0, b.Height-1)
	i := (y*b.Width + x) * 3
	return RGBColor{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

// SetRGB writes c at (x, y). Out-of-range coordinates are ignored.
func (b *PixelBuffer) SetRGB(x, y int, c RGBColor) {
	if !b.InBounds(x, y) {
		return
	}
	i := (y*b.Width + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = c.R, c.G, c.B
}

// Luma returns the BT.601 luminance (0-255) of the pixel at (x, y).
func (b *PixelBuffer) Luma(x, y int) float64 {
	return b.RGB(x, y).Luma()
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	out := &PixelBuffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Image returns the buffer as an opaque *image.NRGBA.
func (b *PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, j := 0, 0; i+2 < len(b.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = b.Pix[i]
		img.Pix[j+1] = b.Pix[i+1]
		img.Pix[j+2] = b.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// Fill paints every pixel of the rectangle r (clipped to the buffer) with c.
func (b *PixelBuffer) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(image.Rect(0, 0, b.Width, b.Height))
	rgb := RGBFromColor(c)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.SetRGB(x, y, rgb)
		}
	}
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// clampByte rounds v and constrains it to 0-255.
func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
