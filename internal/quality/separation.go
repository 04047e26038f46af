package quality

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/stripscan/internal/imaging"
)

// Separation describes how distinguishable the pad colors are from each other.
type Separation struct {
	MeanDeltaE float64 `json:"mean_delta_e" msgpack:"mean_delta_e"`
	MinDeltaE  float64 `json:"min_delta_e" msgpack:"min_delta_e"`
	Label      string  `json:"label" msgpack:"label"`
}

// ColorSeparation returns the mean and minimum pairwise CIE76 distance
// between colors. Fewer than two colors yields a zero "Unknown" result.
func ColorSeparation(colors []imaging.RGBColor) Separation {
	if len(colors) < 2 {
		return Separation{Label: "Unknown"}
	}

	var dists []float64
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			dists = append(dists, imaging.DeltaERGB(colors[i], colors[j]))
		}
	}

	s := Separation{MeanDeltaE: stat.Mean(dists, nil), MinDeltaE: floats.Min(dists)}

	switch {
	case s.MeanDeltaE > 40:
		s.Label = "Excellent"
	case s.MeanDeltaE > 20:
		s.Label = "Good"
	case s.MeanDeltaE > 10:
		s.Label = "Fair"
	default:
		s.Label = "Poor"
	}
	return s
}
