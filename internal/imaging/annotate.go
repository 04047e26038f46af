package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Box is a rectangle to outline on an annotated image.
type Box struct {
	Rect  image.Rectangle
	Label string // digits, '.', ':' and '-' are rendered; other runes leave a gap
	Color RGBColor
}

// AnnotateResult contains an annotated image encoded as base64 PNG.
type AnnotateResult struct {
	Width       int    `json:"width" msgpack:"width"`
	Height      int    `json:"height" msgpack:"height"`
	Boxes       int    `json:"boxes" msgpack:"boxes"`
	ImageBase64 string `json:"image_base64" msgpack:"image_base64"`
	MimeType    string `json:"mime_type" msgpack:"mime_type"`
}

// Annotate draws an outline and label for every box over a copy of img.
func Annotate(img image.Image, boxes []Box) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 200}

	for _, b := range boxes {
		c := color.RGBA{b.Color.R, b.Color.G, b.Color.B, 255}
		r := b.Rect.Add(bounds.Min)
		drawRect(result, r, c, 2)
		if b.Label != "" {
			drawLabel(result, r.Min.X+2, r.Min.Y-9, b.Label, labelColor, bgColor)
		}
	}
	return result
}

// AnnotateEncoded is Annotate followed by base64 PNG encoding.
func AnnotateEncoded(img image.Image, boxes []Box) (*AnnotateResult, error) {
	out := Annotate(img, boxes)
	encoded, err := EncodePNGBase64(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &AnnotateResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Boxes:       len(boxes),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// drawRect outlines r with the given stroke thickness, clipped to img.
func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(bounds) {
			img.SetRGBA(x, y, c)
		}
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X - t; x <= r.Max.X+t; x++ {
			set(x, r.Min.Y-t)
			set(x, r.Max.Y+t)
		}
		for y := r.Min.Y - t; y <= r.Max.Y+t; y++ {
			set(r.Min.X-t, y)
			set(r.Max.X+t, y)
		}
	}
}

// glyphs is a 3x5 pixel font covering pad indices and reading values.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'.': {"000", "000", "000", "000", "010"},
	':': {"000", "010", "000", "010", "000"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel draws text on a filled background at (x, y), clipped to img.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	if y < bounds.Min.Y+1 {
		y = bounds.Min.Y + 1
	}
	charWidth := 4
	labelWidth := len([]rune(text)) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if (image.Point{X: px, Y: py}).In(bounds) {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				px, py := cx+col, y+row
				if (image.Point{X: px, Y: py}).In(bounds) {
					img.SetRGBA(px, py, fg)
				}
			}
		}
		cx += charWidth
	}
}
