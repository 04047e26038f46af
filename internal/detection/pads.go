package detection

import "sort"

// PadCriteria bounds what counts as a test-strip pad.
type PadCriteria struct {
	// MinArea and MaxArea bound Width*Height in square pixels, inclusive.
	MinArea int `yaml:"min_area"`
	MaxArea int `yaml:"max_area"`

	// MinAspect and MaxAspect bound Width/Height, inclusive.
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`

	// MaxPads caps the number of pads returned.
	MaxPads int `yaml:"max_pads"`

	// MinContourPoints drops contours with fewer edge pixels.
	MinContourPoints int `yaml:"min_contour_points"`

	// MergeGap merges fragments whose boxes lie within this many pixels.
	MergeGap int `yaml:"merge_gap"`
}

// DefaultPadCriteria returns the standard six-pad window: area 100-10000,
// aspect 0.5-3.0, 20-point minimum contours, 2px merge gap.
func DefaultPadCriteria() PadCriteria {
	return PadCriteria{
		MinArea:          100,
		MaxArea:          10000,
		MinAspect:        0.5,
		MaxAspect:        3.0,
		MaxPads:          6,
		MinContourPoints: 20,
		MergeGap:         2,
	}
}

// Accepts reports whether r falls inside the area and aspect-ratio window.
// Both windows include their boundaries.
func (c PadCriteria) Accepts(r Region) bool {
	area := r.Area()
	if area < c.MinArea || area > c.MaxArea {
		return false
	}
	aspect := r.AspectRatio()
	return aspect >= c.MinAspect && aspect <= c.MaxAspect
}

// PadSelector filters contours down to the strip's pads.
type PadSelector struct {
	criteria PadCriteria
}

// NewPadSelector creates a PadSelector with the given criteria.
func NewPadSelector(criteria PadCriteria) *PadSelector {
	return &PadSelector{criteria: criteria}
}

// Criteria returns the selector's criteria.
func (s *PadSelector) Criteria() PadCriteria {
	return s.criteria
}

// Select merges contours into regions and returns the accepted pads.
//
// Accepted regions are ranked by area, largest first (ties resolved by
// reading order), truncated to MaxPads, and returned in reading order.
func (s *PadSelector) Select(contours []Contour) []Region {
	regions := BuildRegions(contours, s.criteria.MergeGap)

	accepted := make([]Region, 0, len(regions))
	for _, r := range regions {
		if s.criteria.Accepts(r) {
			accepted = append(accepted, r)
		}
	}

	accepted = ReadingOrder(accepted)
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Area() > accepted[j].Area()
	})
	if s.criteria.MaxPads > 0 && len(accepted) > s.criteria.MaxPads {
		accepted = accepted[:s.criteria.MaxPads]
	}
	return ReadingOrder(accepted)
}

// ReadingOrder sorts regions into rows and then left to right.
//
// Two regions share a row when their vertical centers differ by less than
// half the smaller height. Rows are ordered top to bottom. The input slice
// is not modified.
func ReadingOrder(regions []Region) []Region {
	out := make([]Region, 0, len(regions))
	for _, row := range rowsOf(regions) {
		out = append(out, row...)
	}
	return out
}

// rowsOf groups regions into rows, top to bottom, each sorted by X.
// Each region is compared with the first region of the current row.
func rowsOf(regions []Region) [][]Region {
	sorted := append([]Region(nil), regions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		_, ci := sorted[i].Center()
		_, cj := sorted[j].Center()
		return ci < cj
	})

	rows := make([][]Region, 0)
	for _, r := range sorted {
		n := len(rows)
		if n > 0 {
			anchor := rows[n-1][0]
			_, ca := anchor.Center()
			_, cr := r.Center()
			limit := float64(min(anchor.Height, r.Height)) / 2
			if cr-ca < limit {
				rows[n-1] = append(rows[n-1], r)
				continue
			}
		}
		rows = append(rows, []Region{r})
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
	}
	return rows
}
