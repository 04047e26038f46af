package colorimetry

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/stripscan/internal/detection"
	"github.com/ironsheep/stripscan/internal/imaging"
)

// createPadBuffer returns a w x h buffer of bg with a pad square of fg.
func createPadBuffer(w, h int, pad image.Rectangle, bg, fg imaging.RGBColor) *imaging.PixelBuffer {
	buf := imaging.NewPixelBuffer(w, h)
	buf.Fill(image.Rect(0, 0, w, h), bg)
	buf.Fill(pad, fg)
	return buf
}

func TestSampler_UniformPad(t *testing.T) {
	pink := imaging.RGBColor{R: 255, G: 105, B: 180}
	buf := createPadBuffer(100, 100, image.Rect(30, 30, 70, 70), imaging.RGBColor{R: 20, G: 20, B: 20}, pink)

	s := NewSampler(DefaultSamplerOptions())
	got := s.Sample(buf, detection.Region{X: 30, Y: 30, Width: 40, Height: 40, Confidence: 100})

	if got.RGB != pink {
		t.Errorf("RGB: got %+v, want %+v", got.RGB, pink)
	}
	if got.Spread != 0 {
		t.Errorf("spread: got %v, want 0", got.Spread)
	}
	if got.Degenerate {
		t.Error("40px pad should not be degenerate")
	}
	if len(got.Samples) != 1+3*8 {
		t.Errorf("samples: got %d, want 25", len(got.Samples))
	}

	wantWeight := 1 + 8*(1.0/2+1.0/3+1.0/4)
	total := 0.0
	for _, smp := range got.Samples {
		total += smp.Weight
	}
	if math.Abs(total-wantWeight) > 1e-9 {
		t.Errorf("total weight: got %v, want %v", total, wantWeight)
	}
}

func TestSampler_MixedPadHasSpread(t *testing.T) {
	// Left half red, right half blue
	buf := createPadBuffer(100, 100, image.Rect(30, 30, 50, 70), imaging.RGBColor{}, imaging.RGBColor{R: 255})
	buf.Fill(image.Rect(50, 30, 70, 70), imaging.RGBColor{B: 255})

	got := NewSampler(SamplerOptions{}).Sample(buf, detection.Region{X: 30, Y: 30, Width: 40, Height: 40})
	if got.Spread < 50 {
		t.Errorf("spread: got %v, want a large spread for a two-color pad", got.Spread)
	}
}

func TestSampler_CenterWeighted(t *testing.T) {
	// A bright core inside a dark pad pulls the mean toward the core
	// more than its share of ring samples would.
	buf := createPadBuffer(100, 100, image.Rect(20, 20, 80, 80), imaging.RGBColor{}, imaging.RGBColor{R: 100, G: 100, B: 100})
	buf.Fill(image.Rect(48, 48, 53, 53), imaging.RGBColor{R: 200, G: 200, B: 200})

	got := NewSampler(DefaultSamplerOptions()).Sample(buf, detection.Region{X: 20, Y: 20, Width: 60, Height: 60})
	// Only the centroid lands in the core: 1 / (1 + 8*(13/12)) of the weight
	want := 100 + 100/(1+8*(13.0/12))
	if math.Abs(float64(got.RGB.R)-want) > 1 {
		t.Errorf("R: got %d, want about %.1f", got.RGB.R, want)
	}
}

func TestSampler_Degenerate(t *testing.T) {
	green := imaging.RGBColor{G: 255}
	buf := createPadBuffer(10, 10, image.Rect(4, 4, 7, 7), imaging.RGBColor{}, green)

	got := NewSampler(DefaultSamplerOptions()).Sample(buf, detection.Region{X: 4, Y: 4, Width: 2, Height: 2})
	if !got.Degenerate {
		t.Error("2px region should be degenerate")
	}
	if len(got.Samples) != 1 || got.Spread != 0 {
		t.Errorf("degenerate sample: got %d samples, spread %v", len(got.Samples), got.Spread)
	}
	if got.RGB != green {
		t.Errorf("RGB: got %+v, want %+v", got.RGB, green)
	}
}

func TestSampler_RegionAtBorder(t *testing.T) {
	buf := createPadBuffer(20, 20, image.Rect(0, 0, 20, 20), imaging.RGBColor{R: 9, G: 9, B: 9}, imaging.RGBColor{R: 9, G: 9, B: 9})

	// Ring points fall outside the buffer and are clamped to its edge
	got := NewSampler(DefaultSamplerOptions()).Sample(buf, detection.Region{X: 10, Y: 10, Width: 30, Height: 30})
	if got.RGB != (imaging.RGBColor{R: 9, G: 9, B: 9}) {
		t.Errorf("RGB: got %+v", got.RGB)
	}
}

func TestWeightedStats_IdenticalSamplesHaveNoSpread(t *testing.T) {
	c := imaging.RGBColor{R: 0, G: 139, B: 139}
	var samples []Sample
	for _, w := range []float64{1, 1.0 / 2, 1.0 / 3, 1.0 / 4, 1.0 / 3} {
		samples = append(samples, Sample{Color: c, Weight: w})
	}

	mean, spread := weightedStats(samples)
	if mean != c || spread != 0 {
		t.Errorf("got (%+v, %v), want (%+v, 0)", mean, spread, c)
	}

	samples[2].Color = imaging.RGBColor{R: 10, G: 139, B: 139}
	if _, spread := weightedStats(samples); spread <= 0 {
		t.Errorf("one differing sample should give a positive spread, got %v", spread)
	}
}
