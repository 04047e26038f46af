package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates a solid color image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with four colored quadrants:
// red top-left, green top-right, blue bottom-left, white bottom-right
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createSquareBuffer returns a bg-colored buffer with an fg square at [x0,x0+size).
func createSquareBuffer(width, height, x0, y0, size int, bg, fg RGBColor) *PixelBuffer {
	buf := NewPixelBuffer(width, height)
	buf.Fill(image.Rect(0, 0, width, height), bg)
	buf.Fill(image.Rect(x0, y0, x0+size, y0+size), fg)
	return buf
}

func TestFromImage(t *testing.T) {
	img := createPatternImage(10, 10)

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Width != 10 || buf.Height != 10 || len(buf.Pix) != 300 {
		t.Fatalf("buffer shape: got %dx%d with %d bytes", buf.Width, buf.Height, len(buf.Pix))
	}

	tests := []struct {
		name string
		x, y int
		want RGBColor
	}{
		{"top-left red", 1, 1, RGBColor{255, 0, 0}},
		{"top-right green", 8, 1, RGBColor{0, 255, 0}},
		{"bottom-left blue", 1, 8, RGBColor{0, 0, 255}},
		{"bottom-right white", 8, 8, RGBColor{255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buf.RGB(tt.x, tt.y); got != tt.want {
				t.Errorf("RGB(%d,%d): got %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestFromImage_DropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 128
	}

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if got := buf.RGB(1, 1); got != (RGBColor{200, 100, 50}) {
		t.Errorf("translucent pixel: got %+v, want {200 100 50}", got)
	}
}

func TestFromImage_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 8, 9))
	img.Set(5, 5, color.RGBA{1, 2, 3, 255})

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Width != 3 || buf.Height != 4 {
		t.Errorf("dimensions: got %dx%d, want 3x4", buf.Width, buf.Height)
	}
	if got := buf.RGB(0, 0); got != (RGBColor{1, 2, 3}) {
		t.Errorf("origin pixel: got %+v", got)
	}
}

func TestFromImage_Empty(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"zero width", image.NewRGBA(image.Rect(0, 0, 0, 10))},
		{"zero area", image.NewRGBA(image.Rect(0, 0, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromImage(tt.img); !errors.Is(err, ErrEmptyImage) {
				t.Errorf("got %v, want ErrEmptyImage", err)
			}
		})
	}
}

func TestPixelBuffer_Accessors(t *testing.T) {
	buf := NewPixelBuffer(4, 3)
	if buf.Len() != 12 || buf.Empty() {
		t.Fatalf("Len/Empty: got %d/%v", buf.Len(), buf.Empty())
	}

	buf.SetRGB(2, 1, RGBColor{9, 8, 7})
	buf.SetRGB(10, 10, RGBColor{1, 1, 1}) // ignored
	if got := buf.RGB(2, 1); got != (RGBColor{9, 8, 7}) {
		t.Errorf("RGB after SetRGB: got %+v", got)
	}
	// Out-of-range reads clamp to the nearest edge pixel
	if got := buf.RGB(-5, 1); got != buf.RGB(0, 1) {
		t.Errorf("clamped read: got %+v", got)
	}

	clone := buf.Clone()
	clone.SetRGB(2, 1, RGBColor{0, 0, 0})
	if buf.RGB(2, 1) != (RGBColor{9, 8, 7}) {
		t.Error("Clone shares pixel storage with the original")
	}

	var empty PixelBuffer
	if !empty.Empty() {
		t.Error("zero PixelBuffer should be empty")
	}
}

func TestPixelBuffer_ImageRoundTrip(t *testing.T) {
	buf := createSquareBuffer(20, 20, 5, 5, 10, RGBColor{10, 20, 30}, RGBColor{200, 150, 100})

	back, err := FromImage(buf.Image())
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	for i := range buf.Pix {
		if buf.Pix[i] != back.Pix[i] {
			t.Fatalf("byte %d differs: %d vs %d", i, buf.Pix[i], back.Pix[i])
		}
	}
}
