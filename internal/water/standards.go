package water

import (
	"fmt"
	"math"
	"strconv"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min" yaml:"min" msgpack:"min"`
	Max float64 `json:"max" yaml:"max" msgpack:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Standard holds the safe and critical ranges of a parameter. A reading
// outside Safe needs attention; outside Critical it makes water unsafe.
type Standard struct {
	Safe     Range `json:"safe" msgpack:"safe"`
	Critical Range `json:"critical" msgpack:"critical"`
}

var standards = map[Parameter]Standard{
	PH:         {Safe: Range{6.5, 8.5}, Critical: Range{5.0, 9.5}},
	Chlorine:   {Safe: Range{0.2, 2.0}, Critical: Range{0, 5.0}},
	Nitrates:   {Safe: Range{0, 10}, Critical: Range{0, 50}},
	Hardness:   {Safe: Range{60, 120}, Critical: Range{0, 400}},
	Alkalinity: {Safe: Range{80, 120}, Critical: Range{0, 300}},
	Bacteria:   {Safe: Range{0, 0}, Critical: Range{0, 1}},
}

// StandardFor returns the standard of p.
func StandardFor(p Parameter) (Standard, bool) {
	s, ok := standards[p]
	return s, ok
}

// Status classifies a single reading against its standard.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusCaution  Status = "caution"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

// Classify returns the status of value v for parameter p.
func Classify(p Parameter, v float64) Status {
	s, ok := StandardFor(p)
	if !ok {
		return StatusUnknown
	}
	switch {
	case s.Safe.Contains(v):
		return StatusSafe
	case s.Critical.Contains(v):
		return StatusCaution
	default:
		return StatusCritical
	}
}

// Assessment is the overall verdict on a set of readings.
type Assessment struct {
	Quality string   `json:"quality" msgpack:"quality"` // Excellent, Good, Fair or Poor
	Safety  string   `json:"safety" msgpack:"safety"`   // Safe, Caution or Unsafe
	Score   int      `json:"score" msgpack:"score"`
	Alerts  []string `json:"alerts" msgpack:"alerts"`
	Actions []string `json:"actions" msgpack:"actions"`
}

// Assess scores readings against the standards.
//
// Each reading outside its safe range costs 15 points from 100. Any reading
// outside its critical range makes the water Poor/Unsafe outright; otherwise
// the score maps to Excellent (>=90), Good (>=75), Fair/Caution (>=60) or
// Poor/Unsafe.
func Assess(values map[Parameter]float64) Assessment {
	a := Assessment{Score: 100, Alerts: []string{}, Actions: []string{}}
	critical := 0

	for _, p := range canonical {
		v, ok := values[p]
		if !ok {
			continue
		}
		switch Classify(p, v) {
		case StatusCaution:
			a.Score -= 15
			a.Alerts = append(a.Alerts, fmt.Sprintf("%s outside optimal range: %s", p, FormatValue(v)))
			a.Actions = append(a.Actions, fmt.Sprintf("Monitor %s levels closely", p))
		case StatusCritical:
			a.Score -= 15
			critical++
			a.Alerts = append(a.Alerts, fmt.Sprintf("Critical %s level: %s", p, FormatValue(v)))
			a.Actions = append(a.Actions, fmt.Sprintf("Immediate action required for %s", p))
		}
	}

	switch {
	case critical > 0:
		a.Quality, a.Safety = "Poor", "Unsafe"
	case a.Score >= 90:
		a.Quality, a.Safety = "Excellent", "Safe"
	case a.Score >= 75:
		a.Quality, a.Safety = "Good", "Safe"
	case a.Score >= 60:
		a.Quality, a.Safety = "Fair", "Caution"
	default:
		a.Quality, a.Safety = "Poor", "Unsafe"
	}
	return a
}

// KeyFindings lists notable readings in plain language.
func KeyFindings(values map[Parameter]float64) []string {
	findings := make([]string, 0)

	if v, ok := values[PH]; ok && (v < 6.5 || v > 8.5) {
		findings = append(findings, fmt.Sprintf("pH level (%s) is outside safe range", FormatValue(v)))
	}
	if v, ok := values[Chlorine]; ok && v > 4 {
		findings = append(findings, fmt.Sprintf("High chlorine levels detected (%s ppm)", FormatValue(v)))
	}
	if v, ok := values[Nitrates]; ok && v > 10 {
		findings = append(findings, fmt.Sprintf("Elevated nitrates detected (%s ppm)", FormatValue(v)))
	}
	if v, ok := values[Bacteria]; ok && v > 0 {
		findings = append(findings, "Potential bacterial contamination detected")
	}

	if len(findings) == 0 {
		findings = append(findings, "All parameters within normal ranges")
	}
	return findings
}

// Advice returns treatment recommendations for the readings.
func Advice(values map[Parameter]float64, a Assessment) []string {
	advice := make([]string, 0)

	switch a.Safety {
	case "Unsafe":
		advice = append(advice, "Do not consume this water - seek alternative source")
	case "Caution":
		advice = append(advice, "Consider additional treatment or professional testing")
	}

	if v, ok := values[PH]; ok {
		if v < 6.5 {
			advice = append(advice, "pH too low - consider pH adjustment or filtration")
		} else if v > 8.5 {
			advice = append(advice, "pH too high - may indicate contamination")
		}
	}
	if v, ok := values[Chlorine]; ok && v > 4 {
		advice = append(advice, "High chlorine - allow water to sit or use carbon filter")
	}
	if v, ok := values[Nitrates]; ok && v > 10 {
		advice = append(advice, "Elevated nitrates - check for agricultural runoff")
	}
	if v, ok := values[Bacteria]; ok && v > 0 {
		advice = append(advice, "Potential contamination - boil water or use disinfection")
	}
	return advice
}

// FormatValue renders a reading rounded to two decimals without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
