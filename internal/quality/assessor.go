package quality

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/stripscan/internal/imaging"
)

// Options defines the sampling strides and lighting thresholds.
type Options struct {
	LightingStride int     `yaml:"lighting_stride"` // every Nth pixel feeds the lighting statistics
	NoiseStride    int     `yaml:"noise_stride"`    // grid step of noise probes
	BrightPixel    float64 `yaml:"bright_pixel"`    // channel mean above which a pixel is treated as near-white

	DarkMean    float64 `yaml:"dark_mean"`
	BrightMean  float64 `yaml:"bright_mean"`
	OptimalLow  float64 `yaml:"optimal_low"`
	OptimalHigh float64 `yaml:"optimal_high"`
	OptimalStd  float64 `yaml:"optimal_std"`
	UnevenStd   float64 `yaml:"uneven_std"`
}

// DefaultOptions returns the default strides and lighting thresholds.
func DefaultOptions() Options {
	return Options{
		LightingStride: 10,
		NoiseStride:    5,
		BrightPixel:    200,
		DarkMean:       60,
		BrightMean:     200,
		OptimalLow:     120,
		OptimalHigh:    160,
		OptimalStd:     40,
		UnevenStd:      60,
	}
}

// Score is one graded metric.
type Score struct {
	Score float64 `json:"score" msgpack:"score"` // 0-100
	Label string  `json:"label" msgpack:"label"`
	Value float64 `json:"value" msgpack:"value"` // raw measurement the score was derived from
}

// LightingScore extends Score with the luma statistics behind it.
type LightingScore struct {
	Score
	Mean           float64 `json:"mean" msgpack:"mean"`
	StdDev         float64 `json:"std_dev" msgpack:"std_dev"`
	Uniformity     float64 `json:"uniformity" msgpack:"uniformity"`
	Recommendation string  `json:"recommendation" msgpack:"recommendation"`
}

// Metrics is the full image-quality assessment.
type Metrics struct {
	Lighting     LightingScore `json:"lighting" msgpack:"lighting"`
	Sharpness    Score         `json:"sharpness" msgpack:"sharpness"`
	Noise        Score         `json:"noise" msgpack:"noise"`
	Contrast     Score         `json:"contrast" msgpack:"contrast"`
	WhiteBalance Score         `json:"white_balance" msgpack:"white_balance"`
}

// Composite returns the weighted image-quality score used as a ceiling on
// reading confidence.
func (m Metrics) Composite() float64 {
	c := 0.30*m.Lighting.Score.Score +
		0.25*m.Sharpness.Score +
		0.20*m.Noise.Score +
		0.10*m.Contrast.Score +
		0.15*m.WhiteBalance.Score
	return math.Max(0, math.Min(100, c))
}

// Assessor grades the photographic quality of a buffer.
type Assessor struct {
	opts Options
}

// NewAssessor creates an Assessor. Zero-valued options fall back to defaults.
func NewAssessor(opts Options) *Assessor {
	def := DefaultOptions()
	if opts.LightingStride <= 0 {
		opts.LightingStride = def.LightingStride
	}
	if opts.NoiseStride <= 0 {
		opts.NoiseStride = def.NoiseStride
	}
	if opts.BrightPixel <= 0 {
		opts.BrightPixel = def.BrightPixel
	}
	if opts.DarkMean <= 0 {
		opts.DarkMean = def.DarkMean
	}
	if opts.BrightMean <= 0 {
		opts.BrightMean = def.BrightMean
	}
	if opts.OptimalLow <= 0 {
		opts.OptimalLow = def.OptimalLow
	}
	if opts.OptimalHigh <= 0 {
		opts.OptimalHigh = def.OptimalHigh
	}
	if opts.OptimalStd <= 0 {
		opts.OptimalStd = def.OptimalStd
	}
	if opts.UnevenStd <= 0 {
		opts.UnevenStd = def.UnevenStd
	}
	return &Assessor{opts: opts}
}

// Assess grades buf. It should be given the raw image, not a preprocessed
// one, so the scores describe what the camera captured.
func (a *Assessor) Assess(buf *imaging.PixelBuffer) (Metrics, error) {
	if buf == nil || buf.Empty() {
		return Metrics{}, imaging.ErrEmptyImage
	}

	luma := lumaPlane(buf)
	return Metrics{
		Lighting:     a.lighting(luma),
		Sharpness:    sharpness(luma, buf.Width, buf.Height),
		Noise:        a.noise(luma, buf.Width, buf.Height),
		Contrast:     contrast(luma),
		WhiteBalance: a.whiteBalance(buf),
	}, nil
}

func lumaPlane(buf *imaging.PixelBuffer) []float64 {
	luma := make([]float64, buf.Width*buf.Height)
	for i := range luma {
		r, g, b := buf.Pix[i*3], buf.Pix[i*3+1], buf.Pix[i*3+2]
		luma[i] = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	}
	return luma
}

func (a *Assessor) lighting(luma []float64) LightingScore {
	samples := make([]float64, 0, len(luma)/a.opts.LightingStride+1)
	for i := 0; i < len(luma); i += a.opts.LightingStride {
		samples = append(samples, luma[i])
	}
	mean, std := stat.PopMeanStdDev(samples, nil)

	ls := LightingScore{Mean: mean, StdDev: std, Uniformity: math.Max(0, 100-std)}
	ls.Value = mean

	switch {
	case mean < a.opts.DarkMean:
		ls.Score.Score, ls.Label = 40, "Too Dark"
	case mean > a.opts.BrightMean:
		ls.Score.Score, ls.Label = 45, "Too Bright"
	case mean >= a.opts.OptimalLow && mean <= a.opts.OptimalHigh && std < a.opts.OptimalStd:
		ls.Score.Score, ls.Label = 95, "Optimal"
	case std > a.opts.UnevenStd:
		ls.Score.Score, ls.Label = 55, "Uneven Lighting"
	default:
		ls.Score.Score, ls.Label = 75, "Good"
	}

	switch {
	case mean < a.opts.DarkMean:
		ls.Recommendation = "Increase lighting or move to brighter area"
	case mean > a.opts.BrightMean:
		ls.Recommendation = "Reduce lighting or avoid direct sunlight"
	case std > a.opts.UnevenStd:
		ls.Recommendation = "Use more even lighting to reduce shadows"
	default:
		ls.Recommendation = "Lighting conditions are good"
	}
	return ls
}

// sharpness is the variance of the 4-neighbour Laplacian over the interior.
func sharpness(luma []float64, w, h int) Score {
	var lap []float64
	if w > 2 && h > 2 {
		lap = make([]float64, 0, (w-2)*(h-2))
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				i := y*w + x
				lap = append(lap, luma[i-w]+luma[i+w]+luma[i-1]+luma[i+1]-4*luma[i])
			}
		}
	}

	variance := 0.0
	if len(lap) > 1 {
		variance = stat.Variance(lap, nil)
	}

	s := Score{Score: math.Min(100, variance/10), Value: variance}
	switch {
	case variance > 1000:
		s.Label = "Excellent"
	case variance > 500:
		s.Label = "Good"
	case variance > 200:
		s.Label = "Fair"
	default:
		s.Label = "Blurry"
	}
	return s
}

// noise averages, over a sparse grid, the mean squared luma deviation of
// each 3x3 neighbourhood from its center pixel.
func (a *Assessor) noise(luma []float64, w, h int) Score {
	var levels []float64
	step := a.opts.NoiseStride
	for y := 1; y < h-1; y += step {
		for x := 1; x < w-1; x += step {
			c := luma[y*w+x]
			local := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					d := luma[(y+dy)*w+x+dx] - c
					local += d * d
				}
			}
			levels = append(levels, local/9)
		}
	}

	level := 0.0
	if len(levels) > 0 {
		level = stat.Mean(levels, nil)
	}

	s := Score{Score: math.Max(0, 100-level/5), Value: level}
	switch {
	case level < 50:
		s.Label = "Excellent"
	case level < 150:
		s.Label = "Good"
	case level < 300:
		s.Label = "Fair"
	default:
		s.Label = "Noisy"
	}
	return s
}

// contrast is the luminance ratio (Lmax+0.05)/(Lmin+0.05) on a 0-1 scale.
func contrast(luma []float64) Score {
	lo, hi := floats.Min(luma)/255, floats.Max(luma)/255
	ratio := (hi + 0.05) / (lo + 0.05)

	s := Score{Score: math.Min(100, ratio*10), Value: ratio}
	switch {
	case ratio > 7:
		s.Label = "Excellent"
	case ratio > 4.5:
		s.Label = "Good"
	case ratio > 3:
		s.Label = "Fair"
	default:
		s.Label = "Poor"
	}
	return s
}

// whiteBalance measures the color cast of near-white pixels.
func (a *Assessor) whiteBalance(buf *imaging.PixelBuffer) Score {
	var r, g, b []float64
	for i := 0; i < buf.Len(); i++ {
		pr, pg, pb := float64(buf.Pix[i*3]), float64(buf.Pix[i*3+1]), float64(buf.Pix[i*3+2])
		if (pr+pg+pb)/3 > a.opts.BrightPixel {
			r, g, b = append(r, pr), append(g, pg), append(b, pb)
		}
	}
	if len(r) == 0 {
		return Score{Score: 50, Label: "Unknown"}
	}

	means := []float64{stat.Mean(r, nil), stat.Mean(g, nil), stat.Mean(b, nil)}
	hi, lo := floats.Max(means), floats.Min(means)
	cast := (hi - lo) / hi * 100

	s := Score{Score: math.Max(0, 100-2*cast), Value: cast}
	switch {
	case cast < 5:
		s.Label = "Excellent"
	case cast < 15:
		s.Label = "Good"
	case cast < 25:
		s.Label = "Fair"
	default:
		s.Label = "Poor"
	}
	return s
}
