package imaging

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r" yaml:"r" msgpack:"r"` // Red component (0-255)
	G uint8 `json:"g" yaml:"g" msgpack:"g"` // Green component (0-255)
	B uint8 `json:"b" yaml:"b" msgpack:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h" msgpack:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s" msgpack:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l" msgpack:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// LabColor is a CIELAB color on the conventional scale.
//
// L runs from 0 (black) to 100 (diffuse white); A and B are roughly -128..127.
type LabColor struct {
	L float64 `json:"l" msgpack:"l"`
	A float64 `json:"a" msgpack:"a"`
	B float64 `json:"b" msgpack:"b"`
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex" msgpack:"hex"` // "#RRGGBB"
	RGB RGBColor `json:"rgb" msgpack:"rgb"`
	HSL HSLColor `json:"hsl" msgpack:"hsl"`
	Lab LabColor `json:"lab" msgpack:"lab"`
}

// RGBFromColor converts any color.Color to 8-bit RGB, dropping alpha.
func RGBFromColor(c color.Color) RGBColor {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBColor{R: n.R, G: n.G, B: n.B}
}

// ParseHex parses "#RRGGBB" (or the 3-digit short form) into an RGBColor.
func ParseHex(s string) (RGBColor, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// Hex returns the color as an uppercase "#RRGGBB" string.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c RGBColor) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Luma returns the BT.601 luminance of the color on a 0-255 scale.
func (c RGBColor) Luma() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Colorful converts to a go-colorful color (sRGB, components in 0-1).
func (c RGBColor) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Lab converts the color to CIELAB (D65).
func (c RGBColor) Lab() LabColor {
	l, a, b := c.Colorful().Lab()
	return LabColor{L: l * 100, A: a * 100, B: b * 100}
}

// HSL converts the color to integer HSL.
func (c RGBColor) HSL() HSLColor {
	h, s, l := c.Colorful().Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}

// Describe returns c in every supported representation.
func (c RGBColor) Describe() ColorResult {
	return ColorResult{Hex: c.Hex(), RGB: c, HSL: c.HSL(), Lab: c.Lab()}
}

// DeltaE returns the CIE76 color difference between two Lab colors.
func DeltaE(a, b LabColor) float64 {
	dl, da, db := a.L-b.L, a.A-b.A, a.B-b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// DeltaERGB returns the CIE76 difference between two RGB colors.
//
// Equivalent to DeltaE(a.Lab(), b.Lab()) but computed by go-colorful directly.
func DeltaERGB(a, b RGBColor) float64 {
	return a.Colorful().DistanceLab(b.Colorful()) * 100
}

// Lerp linearly interpolates between a and b in RGB space; t is clamped to [0,1].
func Lerp(a, b RGBColor, t float64) RGBColor {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return clampByte(float64(x) + (float64(y)-float64(x))*t)
	}
	return RGBColor{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
