package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ironsheep/stripscan/internal/colorimetry"
	"github.com/ironsheep/stripscan/internal/detection"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/quality"
	"github.com/ironsheep/stripscan/internal/water"
)

// QA is the quality-assurance verdict on an analysis.
type QA struct {
	Passed         bool     `json:"passed" msgpack:"passed"`
	Warnings       []string `json:"warnings" msgpack:"warnings"`
	CriticalIssues []string `json:"critical_issues" msgpack:"critical_issues"`
}

// Summary is the water-quality verdict derived from the readings.
type Summary struct {
	Quality     string   `json:"quality" msgpack:"quality"`
	Safety      string   `json:"safety" msgpack:"safety"`
	Score       int      `json:"score" msgpack:"score"`
	Confidence  string   `json:"confidence" msgpack:"confidence"` // High, Medium or Low
	KeyFindings []string `json:"key_findings" msgpack:"key_findings"`
	Alerts      []string `json:"alerts" msgpack:"alerts"`
}

// PadObservation describes one detected pad.
type PadObservation struct {
	Position   int                 `json:"position" msgpack:"position"` // 0-based, reading order
	Parameter  water.Parameter     `json:"parameter" msgpack:"parameter"`
	Region     detection.Region    `json:"region" msgpack:"region"`
	Color      imaging.ColorResult `json:"color" msgpack:"color"`
	Spread     float64             `json:"spread" msgpack:"spread"`
	Degenerate bool                `json:"degenerate" msgpack:"degenerate"`
	Used       bool                `json:"used" msgpack:"used"` // fed the reading of Parameter
}

// Report is the result of analyzing one strip image.
type Report struct {
	Source            water.Source                   `json:"water_source" msgpack:"water_source"`
	Width             int                            `json:"width" msgpack:"width"`
	Height            int                            `json:"height" msgpack:"height"`
	Readings          []colorimetry.ParameterReading `json:"readings" msgpack:"readings"`
	Quality           quality.Metrics                `json:"image_quality" msgpack:"image_quality"`
	QualityScore      float64                        `json:"image_quality_score" msgpack:"image_quality_score"`
	OverallConfidence float64                        `json:"overall_confidence" msgpack:"overall_confidence"`
	RegionsDetected   int                            `json:"regions_detected" msgpack:"regions_detected"`
	Pads              []PadObservation               `json:"pads" msgpack:"pads"`
	Layout            detection.LayoutResult         `json:"layout" msgpack:"layout"`
	Separation        quality.Separation             `json:"color_separation" msgpack:"color_separation"`
	QA                QA                             `json:"qa" msgpack:"qa"`
	Recommendations   []string                       `json:"recommendations" msgpack:"recommendations"`
	Summary           Summary                        `json:"summary" msgpack:"summary"`
}

// Reading returns the reading for p.
func (r *Report) Reading(p water.Parameter) (colorimetry.ParameterReading, bool) {
	for _, rd := range r.Readings {
		if rd.Parameter == p {
			return rd, true
		}
	}
	return colorimetry.ParameterReading{}, false
}

// Values returns every reading's value keyed by parameter.
func (r *Report) Values() map[water.Parameter]float64 {
	values := make(map[water.Parameter]float64, len(r.Readings))
	for _, rd := range r.Readings {
		values[rd.Parameter] = rd.Value
	}
	return values
}

// Boxes returns an overlay box per pad, labelled with its 1-based position.
// Pads that fed a reading are green, rejected ones orange.
func (r *Report) Boxes() []imaging.Box {
	boxes := make([]imaging.Box, 0, len(r.Pads))
	for _, p := range r.Pads {
		c := imaging.RGBColor{R: 0, G: 220, B: 0}
		if !p.Used {
			c = imaging.RGBColor{R: 255, G: 140, B: 0}
		}
		boxes = append(boxes, imaging.Box{Rect: p.Region.Rect(), Label: strconv.Itoa(p.Position + 1), Color: c})
	}
	return boxes
}

// ReportOptions configures aggregation.
type ReportOptions struct {
	// MinRegionConfidence is the region confidence a pad needs to feed its
	// parameter; weaker pads are replaced by the fallback estimate.
	MinRegionConfidence float64 `yaml:"min_region_confidence"`

	// LayoutTolerance is the row deviation, in pixels, still considered aligned.
	LayoutTolerance float64 `yaml:"layout_tolerance"`

	Fallback FallbackOptions `yaml:"fallback"`
}

// DefaultReportOptions returns the default aggregation settings.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		MinRegionConfidence: 50,
		LayoutTolerance:     10,
		Fallback:            DefaultFallbackOptions(),
	}
}

// Pad is a detected pad with its sampled color and matched reading.
type Pad struct {
	Region  detection.Region
	Sample  colorimetry.SampledColor
	Reading colorimetry.ParameterReading
}

// BuildInput is everything ReportBuilder needs from the earlier stages.
type BuildInput struct {
	Source  water.Source
	Width   int
	Height  int
	Pads    []Pad // reading order; pad i measures parameter i
	Quality quality.Metrics
	Layout  detection.LayoutResult
	Random  RandomSource // drives fallback jitter
}

// ReportBuilder merges detected readings, fallbacks and image quality into
// a Report.
type ReportBuilder struct {
	opts ReportOptions
}

// NewReportBuilder creates a ReportBuilder. A non-positive layout tolerance
// and an all-zero Fallback fall back to defaults.
func NewReportBuilder(opts ReportOptions) *ReportBuilder {
	def := DefaultReportOptions()
	if opts.LayoutTolerance <= 0 {
		opts.LayoutTolerance = def.LayoutTolerance
	}
	if opts.Fallback == (FallbackOptions{}) {
		opts.Fallback = def.Fallback
	}
	return &ReportBuilder{opts: opts}
}

// Build assembles the report. A nil in.Random is replaced by NewRandom(0).
func (b *ReportBuilder) Build(in BuildInput) *Report {
	params := water.Parameters()
	rnd := in.Random
	if rnd == nil {
		rnd = NewRandom(0)
	}
	ceiling := in.Quality.Composite()

	report := &Report{
		Source:          in.Source,
		Width:           in.Width,
		Height:          in.Height,
		Readings:        make([]colorimetry.ParameterReading, 0, len(params)),
		Quality:         in.Quality,
		QualityScore:    ceiling,
		RegionsDetected: len(in.Pads),
		Pads:            make([]PadObservation, 0, len(in.Pads)),
		Layout:          in.Layout,
	}

	usable := 0
	for i := range params {
		if b.usable(in.Pads, i) {
			usable++
		}
	}

	var fallbacks []string
	for i, p := range params {
		var rd colorimetry.ParameterReading
		if b.usable(in.Pads, i) {
			rd = in.Pads[i].Reading
		} else {
			rd = Fallback(p, in.Source, usable, rnd, b.opts.Fallback)
			fallbacks = append(fallbacks, p.DisplayName())
		}
		if rd.Confidence > ceiling {
			rd.Confidence = ceiling
		}
		report.Readings = append(report.Readings, rd)
	}

	colors := make([]imaging.RGBColor, 0, len(in.Pads))
	for i, pad := range in.Pads {
		obs := PadObservation{
			Position:   i,
			Region:     pad.Region,
			Color:      pad.Sample.RGB.Describe(),
			Spread:     pad.Sample.Spread,
			Degenerate: pad.Sample.Degenerate,
		}
		if i < len(params) {
			obs.Parameter = params[i]
			obs.Used = report.Readings[i].Source == colorimetry.SourceDetected
		}
		report.Pads = append(report.Pads, obs)
		colors = append(colors, pad.Sample.RGB)
	}
	report.Separation = quality.ColorSeparation(colors)

	report.OverallConfidence = overallConfidence(report.Readings, in.Quality, len(in.Pads))
	report.QA = b.qa(report, fallbacks)

	values := report.Values()
	assessment := water.Assess(values)
	report.Summary = Summary{
		Quality:     assessment.Quality,
		Safety:      assessment.Safety,
		Score:       assessment.Score,
		Confidence:  confidenceLabel(in.Quality.Lighting.Score.Score),
		KeyFindings: water.KeyFindings(values),
		Alerts:      assessment.Alerts,
	}
	report.Recommendations = recommendations(in.Quality, values, assessment)
	return report
}

// usable reports whether pad i exists and is trusted enough to be read.
func (b *ReportBuilder) usable(pads []Pad, i int) bool {
	return i < len(pads) && pads[i].Region.Confidence >= b.opts.MinRegionConfidence
}

func (b *ReportBuilder) qa(r *Report, fallbacks []string) QA {
	qa := QA{Warnings: []string{}, CriticalIssues: []string{}}

	if r.RegionsDetected < 4 {
		qa.Warnings = append(qa.Warnings, "Fewer than 4 test regions detected - results may be incomplete")
	}
	if r.Quality.Lighting.Score.Score < 50 {
		qa.CriticalIssues = append(qa.CriticalIssues, "Poor lighting conditions detected")
	}
	if r.Quality.Sharpness.Score < 30 {
		qa.CriticalIssues = append(qa.CriticalIssues, "Image too blurry for accurate analysis")
	}
	for _, rd := range r.Readings {
		if rd.Value < 0 || rd.Value > 1000 {
			qa.Warnings = append(qa.Warnings, fmt.Sprintf("Unusual %s value: %s", rd.Parameter.DisplayName(), water.FormatValue(rd.Value)))
		}
	}
	if len(fallbacks) > 0 {
		qa.Warnings = append(qa.Warnings, fmt.Sprintf("No usable pad for %s - values estimated from %s baseline",
			strings.Join(fallbacks, ", "), r.Source))
	}
	if r.RegionsDetected >= 2 && !r.Layout.Aligned {
		qa.Warnings = append(qa.Warnings, "Pads are not aligned in rows - strip may be skewed")
	}

	qa.Passed = len(qa.CriticalIssues) == 0
	return qa
}

func confidenceLabel(lighting float64) string {
	switch {
	case lighting > 80:
		return "High"
	case lighting > 60:
		return "Medium"
	default:
		return "Low"
	}
}

func recommendations(m quality.Metrics, values map[water.Parameter]float64, a water.Assessment) []string {
	recs := make([]string, 0)
	if m.Lighting.Score.Score < 70 {
		recs = append(recs, m.Lighting.Recommendation)
	}
	if m.Sharpness.Score < 60 {
		recs = append(recs, "Hold camera steady and ensure test strip is in focus")
	}
	recs = append(recs, water.Advice(values, a)...)

	if len(recs) == 0 {
		recs = append(recs, "Water quality appears good - continue regular monitoring")
	}
	return recs
}
