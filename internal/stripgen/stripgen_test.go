package stripgen

import (
	"bytes"
	"image"
	"testing"

	"github.com/ironsheep/stripscan/internal/colorimetry"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/quality"
	"github.com/ironsheep/stripscan/internal/water"
)

func newGenerator(t *testing.T, opts Options) *Generator {
	t.Helper()
	cal, err := colorimetry.Default()
	if err != nil {
		t.Fatalf("Default calibration: %v", err)
	}
	return New(cal, opts)
}

func meanLuma(buf *imaging.PixelBuffer) float64 {
	var sum float64
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			sum += buf.Luma(x, y)
		}
	}
	return sum / float64(buf.Len())
}

func TestSize(t *testing.T) {
	tests := []struct {
		layout Layout
		w, h   int
	}{
		{LayoutGrid, 300, 210},
		{LayoutStrip, 570, 120},
	}
	for _, tt := range tests {
		t.Run(string(tt.layout), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Layout = tt.layout
			g := newGenerator(t, opts)
			w, h := g.Size()
			if w != tt.w || h != tt.h {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
			if n := len(g.PadRects()); n != 6 {
				t.Errorf("PadRects() has %d rects, want 6", n)
			}
		})
	}
}

func TestPadRectsReadingOrder(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	rects := g.PadRects()
	want := []image.Point{{30, 30}, {120, 30}, {210, 30}, {30, 120}, {120, 120}, {210, 120}}
	for i, r := range rects {
		if r.Min != want[i] {
			t.Errorf("pad %d at %v, want %v", i, r.Min, want[i])
		}
		if r.Dx() != 60 || r.Dy() != 60 {
			t.Errorf("pad %d is %dx%d, want 60x60", i, r.Dx(), r.Dy())
		}
	}
}

func TestGenerateReferenceColors(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	buf, err := g.Scenario("reference")
	if err != nil {
		t.Fatalf("Scenario() error: %v", err)
	}
	want := []string{"#00BFFF", "#FF1493", "#FF4500", "#90EE90", "#008B8B", "#FFFFE0"}
	for i, r := range g.PadRects() {
		c := buf.RGB((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
		if c.Hex() != want[i] {
			t.Errorf("pad %d (%s) = %s, want %s", i, water.Parameters()[i], c.Hex(), want[i])
		}
	}
	if bg := buf.RGB(0, 0); bg != (imaging.RGBColor{R: 20, G: 20, B: 20}) {
		t.Errorf("background = %+v", bg)
	}
}

func TestColorsMissingValue(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	_, err := g.Colors(map[water.Parameter]float64{water.PH: 7})
	if err == nil {
		t.Fatal("expected error for missing parameters")
	}
}

func TestScenarios(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	for _, name := range ScenarioNames() {
		t.Run(name, func(t *testing.T) {
			s, ok := ScenarioByName(name)
			if !ok {
				t.Fatalf("ScenarioByName(%q) not found", name)
			}
			if len(s.Values) != len(water.Parameters()) {
				t.Errorf("scenario has %d values, want %d", len(s.Values), len(water.Parameters()))
			}
			if _, err := g.Generate(s.Values); err != nil {
				t.Errorf("Generate() error: %v", err)
			}
		})
	}

	if _, err := g.Scenario("muddy"); err == nil {
		t.Error("expected error for unknown scenario")
	}

	s, _ := ScenarioByName("excellent")
	s.Values[water.PH] = 1
	again, _ := ScenarioByName("excellent")
	if again.Values[water.PH] != 7.2 {
		t.Error("ScenarioByName returned shared state")
	}
}

func TestParseLayout(t *testing.T) {
	if l, err := ParseLayout("strip"); err != nil || l != LayoutStrip {
		t.Errorf("ParseLayout(strip) = %q, %v", l, err)
	}
	if _, err := ParseLayout("circle"); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestDegradeZeroIsCopy(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	buf, _ := g.Scenario("good")
	out, err := Degrade(buf, Degradation{})
	if err != nil {
		t.Fatalf("Degrade() error: %v", err)
	}
	if !bytes.Equal(out.Pix, buf.Pix) {
		t.Error("zero degradation changed pixels")
	}
	out.Pix[0] = 99
	if buf.Pix[0] == 99 {
		t.Error("Degrade did not copy the buffer")
	}
}

func TestDegradeBrightness(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	buf, _ := g.Scenario("good")
	dark, err := Degrade(buf, Degradation{Brightness: -0.5})
	if err != nil {
		t.Fatalf("Degrade() error: %v", err)
	}
	before, after := meanLuma(buf), meanLuma(dark)
	if after >= before*0.6 {
		t.Errorf("mean luma %.1f -> %.1f, want roughly halved", before, after)
	}
}

func TestDegradeBlurLowersSharpness(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	buf, _ := g.Scenario("good")
	blurred, err := Degrade(buf, Degradation{Blur: 3})
	if err != nil {
		t.Fatalf("Degrade() error: %v", err)
	}
	a := quality.NewAssessor(quality.DefaultOptions())
	sharp, _ := a.Assess(buf)
	soft, _ := a.Assess(blurred)
	if soft.Sharpness.Score >= sharp.Sharpness.Score {
		t.Errorf("sharpness %.1f -> %.1f, want lower after blur", sharp.Sharpness.Score, soft.Sharpness.Score)
	}
}

func TestDegradeNoiseIsSeeded(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	buf, _ := g.Scenario("good")
	a, _ := Degrade(buf, Degradation{Noise: 10, Seed: 7})
	b, _ := Degrade(buf, Degradation{Noise: 10, Seed: 7})
	c, _ := Degrade(buf, Degradation{Noise: 10, Seed: 8})
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same seed produced different noise")
	}
	if bytes.Equal(a.Pix, c.Pix) {
		t.Error("different seeds produced identical noise")
	}
	if bytes.Equal(a.Pix, buf.Pix) {
		t.Error("noise left the image unchanged")
	}
}

func TestDegradeRotateKeepsSize(t *testing.T) {
	g := newGenerator(t, DefaultOptions())
	buf, _ := g.Scenario("good")
	out, err := Degrade(buf, Degradation{Rotate: 10})
	if err != nil {
		t.Fatalf("Degrade() error: %v", err)
	}
	if out.Width != buf.Width || out.Height != buf.Height {
		t.Errorf("rotated size %dx%d, want %dx%d", out.Width, out.Height, buf.Width, buf.Height)
	}
}

func TestDegradeEmpty(t *testing.T) {
	if _, err := Degrade(&imaging.PixelBuffer{}, Degradation{Blur: 1}); err == nil {
		t.Error("expected error for empty buffer")
	}
}
