package detection

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LayoutResult describes how the detected pads are arranged.
type LayoutResult struct {
	Rows int `json:"rows" msgpack:"rows"`

	// PadsPerRow lists the pad count of each row, top to bottom.
	PadsPerRow []int `json:"pads_per_row" msgpack:"pads_per_row"`

	// RowDeviation is the largest population standard deviation of vertical
	// pad centers within a single row, in pixels.
	RowDeviation float64 `json:"row_deviation" msgpack:"row_deviation"`

	// SpacingDeviation is the coefficient of variation of horizontal gaps
	// between neighbouring pads in the same row (0 = perfectly even).
	SpacingDeviation float64 `json:"spacing_deviation" msgpack:"spacing_deviation"`

	// Aligned is true when RowDeviation is within the tolerance.
	Aligned bool `json:"aligned" msgpack:"aligned"`
}

// CheckLayout groups regions into rows and measures how straight and evenly
// spaced they are. Fewer than two regions are trivially aligned.
//
// Parameters:
//   - regions: pads in any order.
//   - tolerance: maximum RowDeviation, in pixels, still considered aligned.
func CheckLayout(regions []Region, tolerance float64) LayoutResult {
	if len(regions) == 0 {
		return LayoutResult{Aligned: true}
	}

	rows := rowsOf(regions)

	res := LayoutResult{Rows: len(rows)}
	var gaps []float64
	for _, row := range rows {
		res.PadsPerRow = append(res.PadsPerRow, len(row))
		if len(row) < 2 {
			continue
		}

		centers := make([]float64, len(row))
		for i, r := range row {
			_, centers[i] = r.Center()
		}
		_, std := stat.PopMeanStdDev(centers, nil)
		res.RowDeviation = math.Max(res.RowDeviation, std)

		for i := 1; i < len(row); i++ {
			gaps = append(gaps, float64(row[i].X-(row[i-1].X+row[i-1].Width)))
		}
	}

	if len(gaps) > 1 {
		mean, std := stat.PopMeanStdDev(gaps, nil)
		if mean > 0 {
			res.SpacingDeviation = std / mean
		}
	}
	res.Aligned = res.RowDeviation <= tolerance
	return res
}
