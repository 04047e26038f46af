package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/stripscan/internal/colorimetry"
	"github.com/ironsheep/stripscan/internal/quality"
)

// overallConfidence combines reading confidences with image quality.
//
// The mean reading confidence is scaled by a quality factor built from
// lighting (40%), effective sharpness (30%) and pad coverage (30%), then
// reduced by fixed penalties for dark, blurry, noisy or sparse images.
// Effective sharpness discounts the Laplacian score by the noise score so
// grain is not mistaken for detail.
func overallConfidence(readings []colorimetry.ParameterReading, m quality.Metrics, regions int) float64 {
	if len(readings) == 0 {
		return 0
	}
	confs := make([]float64, len(readings))
	for i, r := range readings {
		confs[i] = r.Confidence
	}
	mean := stat.Mean(confs, nil)

	lighting := m.Lighting.Score.Score
	effSharp := m.Sharpness.Score * m.Noise.Score / 100
	coverage := math.Min(float64(regions)/6, 1)
	factor := 0.4*lighting/100 + 0.3*math.Min(effSharp/100, 1) + 0.3*coverage

	penalty := 0.0
	if lighting < 60 {
		penalty += 15
	}
	if m.Sharpness.Score < 40 {
		penalty += 10
	}
	if regions < 4 {
		penalty += 10
	}
	if m.Noise.Score < 40 {
		penalty += 10
	}

	return math.Max(0, math.Min(100, mean*factor-penalty))
}
