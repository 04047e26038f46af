package colorimetry

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/stripscan/internal/detection"
	"github.com/ironsheep/stripscan/internal/imaging"
)

// SamplerOptions controls the ring pattern used to sample a pad.
type SamplerOptions struct {
	Rings          int     `yaml:"rings"`
	PointsPerRing  int     `yaml:"points_per_ring"`
	RadiusFraction float64 `yaml:"radius_fraction"` // outer ring radius as a fraction of min(w, h)
}

// DefaultSamplerOptions returns 3 rings of 8 points reaching 0.35 of the
// pad's shorter side.
func DefaultSamplerOptions() SamplerOptions {
	return SamplerOptions{Rings: 3, PointsPerRing: 8, RadiusFraction: 0.35}
}

// Sample is a single weighted pixel read.
type Sample struct {
	Point  detection.Point  `json:"point" msgpack:"point"`
	Color  imaging.RGBColor `json:"color" msgpack:"color"`
	Weight float64          `json:"weight" msgpack:"weight"`
}

// SampledColor is the robust color estimate of one pad.
type SampledColor struct {
	RGB        imaging.RGBColor `json:"rgb" msgpack:"rgb"`
	Spread     float64          `json:"spread" msgpack:"spread"` // weighted RMS distance from RGB
	Samples    []Sample         `json:"-" msgpack:"-"`
	Degenerate bool             `json:"degenerate" msgpack:"degenerate"`
}

// Sampler reads pad colors from a buffer.
type Sampler struct {
	opts SamplerOptions
}

// NewSampler creates a Sampler. Non-positive options fall back to defaults.
func NewSampler(opts SamplerOptions) *Sampler {
	def := DefaultSamplerOptions()
	if opts.Rings <= 0 {
		opts.Rings = def.Rings
	}
	if opts.PointsPerRing <= 0 {
		opts.PointsPerRing = def.PointsPerRing
	}
	if opts.RadiusFraction <= 0 {
		opts.RadiusFraction = def.RadiusFraction
	}
	return &Sampler{opts: opts}
}

// Sample estimates the color of region in buf.
//
// The centroid is read with weight 1 and ring k (1-based) with weight
// 1/(k+1), so the interior dominates and pad borders contribute least. When
// the outer radius is 1 pixel or less only the centroid is read and the
// result is marked Degenerate.
func (s *Sampler) Sample(buf *imaging.PixelBuffer, region detection.Region) SampledColor {
	cx, cy := region.Center()
	outer := s.opts.RadiusFraction * float64(min(region.Width, region.Height))

	samples := []Sample{s.read(buf, cx, cy, 1)}
	degenerate := outer <= 1
	if !degenerate {
		for k := 1; k <= s.opts.Rings; k++ {
			radius := float64(k) / float64(s.opts.Rings) * outer
			weight := 1 / float64(k+1)
			for j := 0; j < s.opts.PointsPerRing; j++ {
				angle := 2 * math.Pi * float64(j) / float64(s.opts.PointsPerRing)
				samples = append(samples, s.read(buf, cx+radius*math.Cos(angle), cy+radius*math.Sin(angle), weight))
			}
		}
	}

	mean, spread := weightedStats(samples)
	return SampledColor{RGB: mean, Spread: spread, Samples: samples, Degenerate: degenerate}
}

func (s *Sampler) read(buf *imaging.PixelBuffer, x, y, weight float64) Sample {
	p := detection.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
	return Sample{Point: p, Color: buf.RGB(p.X, p.Y), Weight: weight}
}

// weightedStats returns the weighted mean color and the weighted RMS
// Euclidean RGB distance of the samples from it. Identical samples return
// their shared color with zero spread.
func weightedStats(samples []Sample) (imaging.RGBColor, float64) {
	if uniform(samples) {
		return samples[0].Color, 0
	}
	n := len(samples)
	r, g, b := make([]float64, n), make([]float64, n), make([]float64, n)
	weights := make([]float64, n)
	for i, s := range samples {
		r[i], g[i], b[i] = float64(s.Color.R), float64(s.Color.G), float64(s.Color.B)
		weights[i] = s.Weight
	}

	mr, mg, mb := stat.Mean(r, weights), stat.Mean(g, weights), stat.Mean(b, weights)

	sq := make([]float64, n)
	for i := range samples {
		dr, dg, db := r[i]-mr, g[i]-mg, b[i]-mb
		sq[i] = dr*dr + dg*dg + db*db
	}
	spread := math.Sqrt(stat.Mean(sq, weights))

	return imaging.RGBColor{R: toByte(mr), G: toByte(mg), B: toByte(mb)}, spread
}

func uniform(samples []Sample) bool {
	if len(samples) == 0 {
		return false
	}
	for _, s := range samples[1:] {
		if s.Color != samples[0].Color {
			return false
		}
	}
	return true
}

func toByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
