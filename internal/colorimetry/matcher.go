package colorimetry

import (
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/water"
)

// MatcherOptions tunes interpolation and confidence.
type MatcherOptions struct {
	// Neighbors is how many nearest anchors are interpolated.
	Neighbors int `yaml:"neighbors"`

	// Power is the inverse-distance weighting exponent.
	Power float64 `yaml:"power"`

	// SpreadScale and MaxSpreadPenalty set the spread factor
	// 1 - min(spread/SpreadScale, MaxSpreadPenalty).
	SpreadScale      float64 `yaml:"spread_scale"`
	MaxSpreadPenalty float64 `yaml:"max_spread_penalty"`

	// DegenerateFactor multiplies the confidence of single-sample pads.
	DegenerateFactor float64 `yaml:"degenerate_factor"`
}

// DefaultMatcherOptions returns 3-neighbor IDW with power 2.
func DefaultMatcherOptions() MatcherOptions {
	return MatcherOptions{
		Neighbors:        3,
		Power:            2,
		SpreadScale:      50,
		MaxSpreadPenalty: 0.3,
		DegenerateFactor: 0.5,
	}
}

// exactMatch is the ΔE below which a sample is treated as the anchor itself.
const exactMatch = 1e-9

// ReadingSource tells where a reading came from.
type ReadingSource string

const (
	SourceDetected ReadingSource = "detected"
	SourceFallback ReadingSource = "fallback"
)

// AnchorMatch is one anchor that contributed to a reading.
type AnchorMatch struct {
	Label  string  `json:"label" msgpack:"label"`
	Value  float64 `json:"value" msgpack:"value"`
	DeltaE float64 `json:"delta_e" msgpack:"delta_e"`
	Weight float64 `json:"weight" msgpack:"weight"`
}

// ParameterReading is the numeric result for one parameter.
type ParameterReading struct {
	Parameter  water.Parameter  `json:"parameter" msgpack:"parameter"`
	Value      float64          `json:"value" msgpack:"value"`
	Unit       string           `json:"unit" msgpack:"unit"`
	Confidence float64          `json:"confidence" msgpack:"confidence"`
	Source     ReadingSource    `json:"source" msgpack:"source"`
	Label      string           `json:"label,omitempty" msgpack:"label,omitempty"`
	Color      imaging.RGBColor `json:"color" msgpack:"color"`
	Matches    []AnchorMatch    `json:"matches,omitempty" msgpack:"matches,omitempty"`
	Status     water.Status     `json:"status" msgpack:"status"`
}

// Matcher converts sampled colors into readings against a Calibration.
// A Matcher holds no mutable state and is safe for concurrent use.
type Matcher struct {
	cal  *Calibration
	opts MatcherOptions
}

// NewMatcher creates a Matcher over cal. Non-positive options fall back to
// defaults.
func NewMatcher(cal *Calibration, opts MatcherOptions) *Matcher {
	def := DefaultMatcherOptions()
	if opts.Neighbors <= 0 {
		opts.Neighbors = def.Neighbors
	}
	if opts.Power <= 0 {
		opts.Power = def.Power
	}
	if opts.SpreadScale <= 0 {
		opts.SpreadScale = def.SpreadScale
	}
	if opts.MaxSpreadPenalty <= 0 {
		opts.MaxSpreadPenalty = def.MaxSpreadPenalty
	}
	if opts.DegenerateFactor <= 0 {
		opts.DegenerateFactor = def.DegenerateFactor
	}
	return &Matcher{cal: cal, opts: opts}
}

// Calibration returns the calibration the matcher reads against.
func (m *Matcher) Calibration() *Calibration { return m.cal }

// Match interpolates a reading for parameter p from a sampled pad color.
//
// The value is the inverse-distance weighted mean of the nearest anchors in
// CIELAB. Confidence starts from how close those anchors are, then drops
// with sample spread, low region confidence and degenerate sampling. A color
// far from every anchor yields a low-confidence reading, not an error.
func (m *Matcher) Match(sample SampledColor, p water.Parameter, regionConfidence float64) (ParameterReading, error) {
	curve, ok := m.cal.Curve(p)
	if !ok {
		return ParameterReading{}, fmt.Errorf("no calibration curve for parameter %q", p)
	}

	matches := m.nearest(curve, sample.RGB.Lab())
	value, closeness := interpolate(matches)

	spreadFactor := 1 - math.Min(sample.Spread/m.opts.SpreadScale, m.opts.MaxSpreadPenalty)
	regionFactor := math.Max(0, math.Min(regionConfidence, 100)) / 100
	confidence := closeness * spreadFactor * regionFactor
	if sample.Degenerate {
		confidence *= m.opts.DegenerateFactor
	}

	return ParameterReading{
		Parameter:  p,
		Value:      value,
		Unit:       curve.Unit(),
		Confidence: math.Max(0, math.Min(100, confidence)),
		Source:     SourceDetected,
		Label:      matches[0].Label,
		Color:      sample.RGB,
		Matches:    matches,
		Status:     water.Classify(p, value),
	}, nil
}

// MatchColor matches a single color as if it were a perfectly sampled pad
// in a fully confident region.
func (m *Matcher) MatchColor(c imaging.RGBColor, p water.Parameter) (ParameterReading, error) {
	return m.Match(SampledColor{RGB: c}, p, 100)
}

// nearest returns the closest anchors of curve to lab, nearest first, with
// their ΔE distances. Ties keep curve order.
func (m *Matcher) nearest(curve *Curve, lab imaging.LabColor) []AnchorMatch {
	all := make([]AnchorMatch, len(curve.anchors))
	for i, a := range curve.anchors {
		all[i] = AnchorMatch{Label: a.Label, Value: a.Value, DeltaE: imaging.DeltaE(lab, curve.labs[i])}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].DeltaE < all[j].DeltaE })

	k := min(m.opts.Neighbors, len(all))
	matches := all[:k]

	if matches[0].DeltaE < exactMatch {
		for i := range matches {
			matches[i].Weight = 0
		}
		matches[0].Weight = 1
		return matches
	}

	total := 0.0
	for i := range matches {
		matches[i].Weight = 1 / math.Pow(matches[i].DeltaE, m.opts.Power)
		total += matches[i].Weight
	}
	for i := range matches {
		matches[i].Weight /= total
	}
	return matches
}

// interpolate returns the weighted value and the weighted closeness
// sum(w * (100 - min(ΔE, 100))) of normalized matches.
func interpolate(matches []AnchorMatch) (value, closeness float64) {
	for _, a := range matches {
		value += a.Weight * a.Value
		closeness += a.Weight * (100 - math.Min(a.DeltaE, 100))
	}
	return value, closeness
}
