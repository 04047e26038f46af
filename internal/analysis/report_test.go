package analysis

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/ironsheep/stripscan/internal/colorimetry"
	"github.com/ironsheep/stripscan/internal/detection"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/quality"
	"github.com/ironsheep/stripscan/internal/water"
)

// fixedRandom always returns the same value.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func metrics(lighting, sharpness, noise, contrast, wb float64) quality.Metrics {
	var m quality.Metrics
	m.Lighting.Score.Score = lighting
	m.Lighting.Recommendation = "Use more even lighting to reduce shadows"
	m.Sharpness.Score = sharpness
	m.Noise.Score = noise
	m.Contrast.Score = contrast
	m.WhiteBalance.Score = wb
	return m
}

var safeValues = []float64{7.2, 1, 0, 75, 100, 0}

// detectedPads builds one confident pad per parameter, laid out in a row.
func detectedPads(n int, values []float64, conf float64) []Pad {
	params := water.Parameters()
	pads := make([]Pad, n)
	for i := range pads {
		pads[i] = Pad{
			Region: detection.Region{X: 10 + 50*i, Y: 10, Width: 40, Height: 40, Confidence: 100},
			Sample: colorimetry.SampledColor{RGB: imaging.RGBColor{R: uint8(40 * i), G: 100, B: 200}},
			Reading: colorimetry.ParameterReading{
				Parameter:  params[i],
				Value:      values[i],
				Unit:       params[i].Unit(),
				Confidence: conf,
				Source:     colorimetry.SourceDetected,
			},
		}
	}
	return pads
}

func buildWith(t *testing.T, in BuildInput) *Report {
	t.Helper()
	if in.Random == nil {
		in.Random = fixedRandom(0.5)
	}
	if in.Source == "" {
		in.Source = water.Tap
	}
	in.Layout.Aligned = true
	return NewReportBuilder(DefaultReportOptions()).Build(in)
}

func TestBuildAllDetected(t *testing.T) {
	r := buildWith(t, BuildInput{
		Pads:    detectedPads(6, safeValues, 90),
		Quality: metrics(100, 100, 100, 100, 100),
	})

	if r.RegionsDetected != 6 {
		t.Errorf("RegionsDetected = %d, want 6", r.RegionsDetected)
	}
	for i, rd := range r.Readings {
		if rd.Source != colorimetry.SourceDetected {
			t.Errorf("reading %d source = %s, want detected", i, rd.Source)
		}
		if rd.Value != safeValues[i] {
			t.Errorf("reading %d value = %v, want %v", i, rd.Value, safeValues[i])
		}
	}
	if math.Abs(r.OverallConfidence-90) > 1e-9 {
		t.Errorf("OverallConfidence = %v, want 90", r.OverallConfidence)
	}
	if !r.QA.Passed || len(r.QA.Warnings) != 0 || len(r.QA.CriticalIssues) != 0 {
		t.Errorf("QA = %+v, want clean pass", r.QA)
	}
	if r.Summary.Quality != "Excellent" || r.Summary.Safety != "Safe" || r.Summary.Confidence != "High" {
		t.Errorf("Summary = %+v", r.Summary)
	}
	want := []string{"Water quality appears good - continue regular monitoring"}
	if !slices.Equal(r.Recommendations, want) {
		t.Errorf("Recommendations = %q, want %q", r.Recommendations, want)
	}
	for i, p := range r.Pads {
		if !p.Used || p.Position != i || p.Parameter != water.Parameters()[i] {
			t.Errorf("pad %d = %+v", i, p)
		}
	}
	if r.Separation.Label == "Unknown" {
		t.Error("separation not computed for six pads")
	}
}

func TestBuildCapsConfidenceByQuality(t *testing.T) {
	m := metrics(55, 100, 100, 80, 75)
	ceiling := m.Composite()
	r := buildWith(t, BuildInput{Pads: detectedPads(6, safeValues, 100), Quality: m})
	for _, rd := range r.Readings {
		if rd.Confidence > ceiling+1e-9 {
			t.Errorf("%s confidence %v above ceiling %v", rd.Parameter, rd.Confidence, ceiling)
		}
	}
	if r.QualityScore != ceiling {
		t.Errorf("QualityScore = %v, want %v", r.QualityScore, ceiling)
	}
}

func TestBuildNoPads(t *testing.T) {
	r := buildWith(t, BuildInput{Quality: metrics(40, 0, 100, 10, 50)})

	for _, rd := range r.Readings {
		if rd.Source != colorimetry.SourceFallback {
			t.Errorf("%s source = %s, want fallback", rd.Parameter, rd.Source)
		}
		if want := water.Baseline(water.Tap, rd.Parameter); rd.Value != want {
			t.Errorf("%s value = %v, want baseline %v with zero jitter", rd.Parameter, rd.Value, want)
		}
	}
	if r.OverallConfidence != 0 {
		t.Errorf("OverallConfidence = %v, want 0", r.OverallConfidence)
	}
	if r.QA.Passed {
		t.Error("QA passed for a dark, blurry image")
	}
	wantCritical := []string{"Poor lighting conditions detected", "Image too blurry for accurate analysis"}
	if !slices.Equal(r.QA.CriticalIssues, wantCritical) {
		t.Errorf("CriticalIssues = %q, want %q", r.QA.CriticalIssues, wantCritical)
	}
	if !slices.Contains(r.QA.Warnings, "Fewer than 4 test regions detected - results may be incomplete") {
		t.Errorf("missing region warning in %q", r.QA.Warnings)
	}
	wantFallback := "No usable pad for pH, Free Chlorine, Nitrates, Total Hardness, Total Alkalinity, Bacteria - values estimated from Tap Water baseline"
	if !slices.Contains(r.QA.Warnings, wantFallback) {
		t.Errorf("missing fallback warning in %q", r.QA.Warnings)
	}
	if r.Summary.Confidence != "Low" {
		t.Errorf("Summary.Confidence = %q, want Low", r.Summary.Confidence)
	}
	if r.Recommendations[0] != "Use more even lighting to reduce shadows" ||
		r.Recommendations[1] != "Hold camera steady and ensure test strip is in focus" {
		t.Errorf("Recommendations = %q", r.Recommendations)
	}
	if r.Separation.Label != "Unknown" {
		t.Errorf("Separation.Label = %q, want Unknown", r.Separation.Label)
	}
}

func TestBuildWeakPadFallsBack(t *testing.T) {
	pads := detectedPads(6, safeValues, 90)
	pads[2].Region.Confidence = 30

	r := buildWith(t, BuildInput{Pads: pads, Quality: metrics(100, 100, 100, 100, 100)})

	if r.Readings[2].Source != colorimetry.SourceFallback {
		t.Errorf("weak pad reading source = %s, want fallback", r.Readings[2].Source)
	}
	if r.Pads[2].Used {
		t.Error("weak pad marked as used")
	}
	// Five usable pads: 35 - 3*1 + 10 for a declared source.
	if got := r.Readings[2].Confidence; got != 42 {
		t.Errorf("fallback confidence = %v, want 42 (rejected pad counted as missing)", got)
	}
	want := "No usable pad for Nitrates - values estimated from Tap Water baseline"
	if !slices.Contains(r.QA.Warnings, want) {
		t.Errorf("Warnings = %q, want %q", r.QA.Warnings, want)
	}

	boxes := r.Boxes()
	if len(boxes) != 6 {
		t.Fatalf("Boxes() = %d, want 6", len(boxes))
	}
	if boxes[2].Color == boxes[0].Color {
		t.Error("rejected pad drawn in the same color as used pads")
	}
	if boxes[5].Label != "6" {
		t.Errorf("last box label = %q, want 6", boxes[5].Label)
	}
}

func TestBuildUnusualValueAndLayout(t *testing.T) {
	values := slices.Clone(safeValues)
	values[3] = 1500
	in := BuildInput{
		Source:  water.Well,
		Pads:    detectedPads(6, values, 90),
		Quality: metrics(100, 100, 100, 100, 100),
		Random:  fixedRandom(0.5),
	}
	in.Layout = detection.LayoutResult{Aligned: false}
	r := NewReportBuilder(DefaultReportOptions()).Build(in)

	if !slices.Contains(r.QA.Warnings, "Unusual Total Hardness value: 1500") {
		t.Errorf("Warnings = %q, want unusual hardness", r.QA.Warnings)
	}
	if !slices.Contains(r.QA.Warnings, "Pads are not aligned in rows - strip may be skewed") {
		t.Errorf("Warnings = %q, want alignment warning", r.QA.Warnings)
	}
	if !r.QA.Passed {
		t.Error("warnings alone must not fail QA")
	}
	if r.Summary.Safety != "Unsafe" {
		t.Errorf("Summary.Safety = %q, want Unsafe for critical hardness", r.Summary.Safety)
	}
	found := false
	for _, a := range r.Summary.Alerts {
		if strings.HasPrefix(a, "Critical hardness level") {
			found = true
		}
	}
	if !found {
		t.Errorf("Alerts = %q, want critical hardness", r.Summary.Alerts)
	}
}

func TestReportLookups(t *testing.T) {
	r := buildWith(t, BuildInput{Pads: detectedPads(6, safeValues, 90), Quality: metrics(100, 100, 100, 100, 100)})

	rd, ok := r.Reading(water.Hardness)
	if !ok || rd.Value != 75 {
		t.Errorf("Reading(hardness) = %+v, %v", rd, ok)
	}
	if _, ok := r.Reading(water.Parameter("iron")); ok {
		t.Error("Reading found an unknown parameter")
	}
	values := r.Values()
	if len(values) != 6 || values[water.PH] != 7.2 {
		t.Errorf("Values() = %v", values)
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		lighting float64
		want     string
	}{
		{95, "High"},
		{80, "Medium"},
		{61, "Medium"},
		{60, "Low"},
		{0, "Low"},
	}
	for _, tt := range tests {
		if got := confidenceLabel(tt.lighting); got != tt.want {
			t.Errorf("confidenceLabel(%v) = %q, want %q", tt.lighting, got, tt.want)
		}
	}
}

func TestOverallConfidence(t *testing.T) {
	readings := func(conf float64) []colorimetry.ParameterReading {
		out := make([]colorimetry.ParameterReading, 6)
		for i := range out {
			out[i].Confidence = conf
		}
		return out
	}

	tests := []struct {
		name    string
		conf    float64
		m       quality.Metrics
		regions int
		want    float64
	}{
		{"perfect", 80, metrics(100, 100, 100, 100, 100), 6, 80},
		// 80 * (0.4*0.55 + 0.3*1 + 0.3*1) - 15
		{"dim", 80, metrics(55, 100, 100, 100, 100), 6, 80*0.82 - 15},
		// noise halves effective sharpness: 80 * (0.4 + 0.3*0.5 + 0.3)
		{"grainy", 80, metrics(100, 100, 50, 100, 100), 6, 80 * 0.85},
		// 80 * (0.4 + 0.3*0.2 + 0.3*0.5) - 10 - 10
		{"sparse blur", 80, metrics(100, 20, 100, 100, 100), 3, 80*0.61 - 20},
		{"floor", 10, metrics(10, 0, 0, 0, 0), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overallConfidence(readings(tt.conf), tt.m, tt.regions)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("overallConfidence() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := overallConfidence(nil, metrics(100, 100, 100, 100, 100), 6); got != 0 {
		t.Errorf("overallConfidence(nil) = %v, want 0", got)
	}
}
