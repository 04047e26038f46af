package colorimetry

import (
	"math"
	"testing"

	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/water"
)

func TestMatcher_AnchorRoundTrip(t *testing.T) {
	cal := mustDefault(t)
	m := NewMatcher(cal, DefaultMatcherOptions())

	for _, p := range water.Parameters() {
		curve, _ := cal.Curve(p)
		for _, a := range curve.Anchors() {
			got, err := m.MatchColor(a.RGB, p)
			if err != nil {
				t.Fatalf("%s %s: %v", p, a.Label, err)
			}
			if got.Value != a.Value {
				t.Errorf("%s %s: got value %v, want %v", p, a.Label, got.Value, a.Value)
			}
			if got.Label != a.Label {
				t.Errorf("%s %s: got label %q", p, a.Label, got.Label)
			}
			if got.Confidence != 100 {
				t.Errorf("%s %s: got confidence %v, want 100", p, a.Label, got.Confidence)
			}
			if got.Source != SourceDetected || got.Unit != curve.Unit() {
				t.Errorf("%s %s: got source %q unit %q", p, a.Label, got.Source, got.Unit)
			}
		}
	}
}

func TestMatcher_InterpolatesBetweenAnchors(t *testing.T) {
	cal := mustDefault(t)
	m := NewMatcher(cal, DefaultMatcherOptions())

	// Halfway between Neutral (7.0) and Slightly Alkaline (7.5)
	got, err := m.MatchColor(imaging.RGBColor{R: 214, G: 255, B: 24}, water.PH)
	if err != nil {
		t.Fatalf("MatchColor failed: %v", err)
	}
	if got.Value <= 6.9 || got.Value >= 7.6 {
		t.Errorf("value: got %v, want within (6.9, 7.6)", got.Value)
	}
	if len(got.Matches) != 3 {
		t.Fatalf("matches: got %d, want 3", len(got.Matches))
	}

	sum := 0.0
	for i, a := range got.Matches {
		sum += a.Weight
		if i > 0 && a.DeltaE < got.Matches[i-1].DeltaE {
			t.Error("matches should be ordered nearest first")
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights should sum to 1, got %v", sum)
	}
	if got.Confidence >= 100 || got.Confidence <= 50 {
		t.Errorf("confidence: got %v, want within (50, 100)", got.Confidence)
	}
}

func TestMatcher_ConfidenceFactors(t *testing.T) {
	m := NewMatcher(mustDefault(t), DefaultMatcherOptions())
	neutral := imaging.RGBColor{R: 255, G: 255, B: 0}

	tests := []struct {
		name       string
		sample     SampledColor
		regionConf float64
		want       float64
	}{
		{"perfect", SampledColor{RGB: neutral}, 100, 100},
		{"spread 10", SampledColor{RGB: neutral, Spread: 10}, 100, 80},
		{"spread capped", SampledColor{RGB: neutral, Spread: 40}, 100, 70},
		{"weak region", SampledColor{RGB: neutral}, 60, 60},
		{"degenerate", SampledColor{RGB: neutral, Degenerate: true}, 100, 50},
		{"combined", SampledColor{RGB: neutral, Spread: 10, Degenerate: true}, 50, 20},
		{"region above 100", SampledColor{RGB: neutral}, 150, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(tt.sample, water.PH, tt.regionConf)
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}
			if math.Abs(got.Confidence-tt.want) > 1e-9 {
				t.Errorf("confidence: got %v, want %v", got.Confidence, tt.want)
			}
		})
	}
}

func TestMatcher_SpreadLowersConfidenceMonotonically(t *testing.T) {
	m := NewMatcher(mustDefault(t), DefaultMatcherOptions())
	c := imaging.RGBColor{R: 250, G: 200, B: 20}

	prev := math.Inf(1)
	for _, spread := range []float64{0, 2, 5, 10, 20, 40} {
		got, _ := m.Match(SampledColor{RGB: c, Spread: spread}, water.PH, 90)
		if got.Confidence > prev {
			t.Errorf("spread %v: confidence %v rose above %v", spread, got.Confidence, prev)
		}
		prev = got.Confidence
	}
}

func TestMatcher_CalibrationGap(t *testing.T) {
	m := NewMatcher(mustDefault(t), DefaultMatcherOptions())

	got, err := m.MatchColor(imaging.RGBColor{}, water.PH)
	if err != nil {
		t.Fatalf("black pad should not fail: %v", err)
	}
	if got.Confidence >= 30 {
		t.Errorf("confidence for off-curve color: got %v, want < 30", got.Confidence)
	}
}

func TestMatcher_UnknownParameter(t *testing.T) {
	m := NewMatcher(mustDefault(t), DefaultMatcherOptions())
	if _, err := m.MatchColor(imaging.RGBColor{}, water.Parameter("lead")); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestMatcher_StatusFollowsStandards(t *testing.T) {
	m := NewMatcher(mustDefault(t), DefaultMatcherOptions())

	got, _ := m.MatchColor(imaging.RGBColor{R: 178, G: 34, B: 34}, water.Nitrates)
	if got.Status != water.StatusCritical {
		t.Errorf("100 ppm nitrates: got status %s, want critical", got.Status)
	}
	got, _ = m.MatchColor(imaging.RGBColor{R: 255, G: 255, B: 0}, water.PH)
	if got.Status != water.StatusSafe {
		t.Errorf("neutral pH: got status %s, want safe", got.Status)
	}
}
