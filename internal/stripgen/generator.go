package stripgen

import (
	"fmt"
	"image"

	"github.com/ironsheep/stripscan/internal/colorimetry"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/water"
)

// Layout arranges the six pads.
type Layout string

const (
	LayoutGrid  Layout = "grid"  // 3 columns, 2 rows
	LayoutStrip Layout = "strip" // 6 columns, 1 row
)

// ParseLayout converts a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutGrid, LayoutStrip:
		return Layout(s), nil
	}
	return "", fmt.Errorf("unknown layout %q (use grid or strip)", s)
}

// Options controls the geometry of generated strips.
type Options struct {
	Layout     Layout           `yaml:"layout"`
	PadSize    int              `yaml:"pad_size"`
	Gap        int              `yaml:"gap"`
	Margin     int              `yaml:"margin"`
	Background imaging.RGBColor `yaml:"background"`
}

// DefaultOptions returns a 3x2 grid of 60 px pads, 30 px apart, on a
// near-black background.
func DefaultOptions() Options {
	return Options{
		Layout:     LayoutGrid,
		PadSize:    60,
		Gap:        30,
		Margin:     30,
		Background: imaging.RGBColor{R: 20, G: 20, B: 20},
	}
}

// Generator paints synthetic strips from known readings.
type Generator struct {
	cal  *colorimetry.Calibration
	opts Options
}

// New creates a Generator. Non-positive sizes and an empty layout take
// their defaults.
func New(cal *colorimetry.Calibration, opts Options) *Generator {
	def := DefaultOptions()
	if opts.Layout == "" {
		opts.Layout = def.Layout
	}
	if opts.PadSize <= 0 {
		opts.PadSize = def.PadSize
	}
	if opts.Gap < 0 {
		opts.Gap = def.Gap
	}
	if opts.Margin < 0 {
		opts.Margin = def.Margin
	}
	return &Generator{cal: cal, opts: opts}
}

func (g *Generator) grid() (cols, rows int) {
	if g.opts.Layout == LayoutStrip {
		return len(water.Parameters()), 1
	}
	return 3, 2
}

// Size returns the dimensions of generated images.
func (g *Generator) Size() (width, height int) {
	cols, rows := g.grid()
	o := g.opts
	return 2*o.Margin + cols*o.PadSize + (cols-1)*o.Gap,
		2*o.Margin + rows*o.PadSize + (rows-1)*o.Gap
}

// PadRects returns the pad rectangles in reading order, pad i holding
// parameter i.
func (g *Generator) PadRects() []image.Rectangle {
	cols, rows := g.grid()
	o := g.opts
	step := o.PadSize + o.Gap
	rects := make([]image.Rectangle, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := o.Margin+c*step, o.Margin+r*step
			rects = append(rects, image.Rect(x, y, x+o.PadSize, y+o.PadSize))
		}
	}
	return rects
}

// Colors returns the pad color of every parameter for the given values.
func (g *Generator) Colors(values map[water.Parameter]float64) ([]imaging.RGBColor, error) {
	params := water.Parameters()
	colors := make([]imaging.RGBColor, 0, len(params))
	for _, p := range params {
		v, ok := values[p]
		if !ok {
			return nil, fmt.Errorf("no value for %s", p)
		}
		curve, ok := g.cal.Curve(p)
		if !ok {
			return nil, fmt.Errorf("no calibration curve for %s", p)
		}
		colors = append(colors, curve.ColorFor(v))
	}
	return colors, nil
}

// Generate paints a strip showing values.
func (g *Generator) Generate(values map[water.Parameter]float64) (*imaging.PixelBuffer, error) {
	colors, err := g.Colors(values)
	if err != nil {
		return nil, err
	}
	w, h := g.Size()
	buf := imaging.NewPixelBuffer(w, h)
	buf.Fill(image.Rect(0, 0, w, h), g.opts.Background)
	for i, r := range g.PadRects() {
		buf.Fill(r, colors[i])
	}
	return buf, nil
}

// Scenario paints the named built-in scenario.
func (g *Generator) Scenario(name string) (*imaging.PixelBuffer, error) {
	s, ok := ScenarioByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	return g.Generate(s.Values)
}
