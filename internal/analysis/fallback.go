package analysis

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/stripscan/internal/colorimetry"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/water"
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// FallbackOptions configures readings estimated from the water source when
// no usable pad was found for a parameter.
type FallbackOptions struct {
	// Jitter is the full width of the relative perturbation: the value moves
	// by (u - 0.5) * Jitter * baseline.
	Jitter float64 `yaml:"jitter"`

	BaseConfidence    float64 `yaml:"base_confidence"`
	MissingPadPenalty float64 `yaml:"missing_pad_penalty"` // per pad short of six
	DeclaredBonus     float64 `yaml:"declared_bonus"`      // source is not Other
	MinConfidence     float64 `yaml:"min_confidence"`
	MaxConfidence     float64 `yaml:"max_confidence"`

	PHMin float64 `yaml:"ph_min"`
	PHMax float64 `yaml:"ph_max"`
}

// DefaultFallbackOptions returns a 12% jitter with confidence 35 - 3 per
// missing pad, +10 for a declared source, clamped to 15-85.
func DefaultFallbackOptions() FallbackOptions {
	return FallbackOptions{
		Jitter:            0.12,
		BaseConfidence:    35,
		MissingPadPenalty: 3,
		DeclaredBonus:     10,
		MinConfidence:     15,
		MaxConfidence:     85,
		PHMin:             5,
		PHMax:             9.5,
	}
}

// Fallback estimates a reading for p from the baseline of source.
func Fallback(p water.Parameter, source water.Source, regions int, rnd RandomSource, opts FallbackOptions) colorimetry.ParameterReading {
	base := water.Baseline(source, p)
	value := base + (rnd.Float64()-0.5)*opts.Jitter*base
	if p == water.PH {
		value = math.Max(opts.PHMin, math.Min(opts.PHMax, value))
	}

	missing := float64(len(water.Parameters()) - min(regions, len(water.Parameters())))
	conf := opts.BaseConfidence - opts.MissingPadPenalty*missing
	if source.Declared() {
		conf += opts.DeclaredBonus
	}
	conf = math.Max(opts.MinConfidence, math.Min(opts.MaxConfidence, conf))

	return colorimetry.ParameterReading{
		Parameter:  p,
		Value:      value,
		Unit:       p.Unit(),
		Confidence: conf,
		Source:     colorimetry.SourceFallback,
		Label:      "Estimated from " + string(source),
		Status:     water.Classify(p, value),
	}
}

// Seed derives a reproducible seed from the pixels and the water source,
// so analyzing the same image twice yields identical fallback values.
func Seed(buf *imaging.PixelBuffer, source water.Source) uint64 {
	h := fnv.New64a()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[:4], uint32(buf.Width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(buf.Height))
	h.Write(dims[:])
	h.Write(buf.Pix)
	h.Write([]byte(source))
	return h.Sum64()
}

// NewRandom returns the default RandomSource for seed.
func NewRandom(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
