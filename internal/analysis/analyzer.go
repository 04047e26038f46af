package analysis

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/stripscan/internal/colorimetry"
	"github.com/ironsheep/stripscan/internal/detection"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/quality"
	"github.com/ironsheep/stripscan/internal/water"
)

// Options aggregates the settings of every pipeline stage.
type Options struct {
	// MaxDimension bounds the longest side of an image before analysis.
	MaxDimension int `yaml:"max_dimension"`

	Preprocess imaging.PreprocessOptions  `yaml:"preprocess"`
	Edges      imaging.EdgeOptions        `yaml:"edges"`
	Pads       detection.PadCriteria      `yaml:"pads"`
	Sampler    colorimetry.SamplerOptions `yaml:"sampler"`
	Matcher    colorimetry.MatcherOptions `yaml:"matcher"`
	Quality    quality.Options            `yaml:"quality"`
	Report     ReportOptions              `yaml:"report"`
}

// DefaultOptions returns the default settings of every stage.
func DefaultOptions() Options {
	return Options{
		MaxDimension: imaging.DefaultMaxDimension,
		Preprocess:   imaging.DefaultPreprocessOptions(),
		Edges:        imaging.DefaultEdgeOptions(),
		Pads:         detection.DefaultPadCriteria(),
		Sampler:      colorimetry.DefaultSamplerOptions(),
		Matcher:      colorimetry.DefaultMatcherOptions(),
		Quality:      quality.DefaultOptions(),
		Report:       DefaultReportOptions(),
	}
}

// Analyzer runs the full strip pipeline. It holds no per-call state and is
// safe for concurrent use.
type Analyzer struct {
	opts         Options
	preprocessor *imaging.Preprocessor
	edges        *imaging.EdgeDetector
	selector     *detection.PadSelector
	sampler      *colorimetry.Sampler
	matcher      *colorimetry.Matcher
	assessor     *quality.Assessor
	builder      *ReportBuilder
	newRandom    func(seed uint64) RandomSource
	logger       *zap.SugaredLogger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for stage timings.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRandom replaces the fallback random source factory. It receives the
// per-image seed.
func WithRandom(f func(seed uint64) RandomSource) Option {
	return func(a *Analyzer) {
		if f != nil {
			a.newRandom = f
		}
	}
}

// New creates an Analyzer. A nil cal selects the built-in calibration.
func New(cal *colorimetry.Calibration, opts Options, options ...Option) (*Analyzer, error) {
	if cal == nil {
		var err error
		if cal, err = colorimetry.Default(); err != nil {
			return nil, newError(KindCalibration, "calibration", err)
		}
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = imaging.DefaultMaxDimension
	}

	a := &Analyzer{
		opts:         opts,
		preprocessor: imaging.NewPreprocessor(opts.Preprocess),
		edges:        imaging.NewEdgeDetector(opts.Edges),
		selector:     detection.NewPadSelector(opts.Pads),
		sampler:      colorimetry.NewSampler(opts.Sampler),
		matcher:      colorimetry.NewMatcher(cal, opts.Matcher),
		assessor:     quality.NewAssessor(opts.Quality),
		builder:      NewReportBuilder(opts.Report),
		newRandom:    NewRandom,
		logger:       zap.NewNop().Sugar(),
	}
	for _, o := range options {
		o(a)
	}
	return a, nil
}

// Options returns the settings the analyzer was built with.
func (a *Analyzer) Options() Options { return a.opts }

// Matcher returns the calibration matcher the analyzer uses.
func (a *Analyzer) Matcher() *colorimetry.Matcher { return a.matcher }

// Analyze downscales img if needed and runs the pipeline on it.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image, source water.Source) (*Report, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, newError(KindInvalidInput, "load", imaging.ErrEmptyImage)
	}

	img = imaging.Downscale(img, a.opts.MaxDimension)
	buf, err := imaging.FromImage(img)
	if err != nil {
		return nil, newError(KindInvalidInput, "load", err)
	}
	return a.AnalyzeBuffer(ctx, buf, source)
}

// AnalyzeBuffer runs the pipeline on a prepared buffer. The buffer is not
// modified. Cancellation of ctx is checked between stages.
func (a *Analyzer) AnalyzeBuffer(ctx context.Context, buf *imaging.PixelBuffer, source water.Source) (*Report, error) {
	if buf == nil || buf.Empty() {
		return nil, newError(KindInvalidInput, "load", imaging.ErrEmptyImage)
	}
	start := time.Now()

	stages, err := a.preprocessor.Run(buf)
	if err != nil {
		return nil, newError(KindInvalidInput, "preprocess", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, "preprocess", err)
	}
	tPre := time.Since(start)

	mask, contours, regions := a.detect(stages)
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, "detect", err)
	}
	tDetect := time.Since(start) - tPre

	params := water.Parameters()
	pads := make([]Pad, 0, len(regions))
	for i, r := range regions {
		if i >= len(params) {
			break
		}
		sample := a.sampler.Sample(stages.Denoised, r)
		reading, err := a.matcher.Match(sample, params[i], r.Confidence)
		if err != nil {
			return nil, newError(KindCalibration, "match", err)
		}
		pads = append(pads, Pad{Region: r, Sample: sample, Reading: reading})
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, "match", err)
	}

	metrics, err := a.assessor.Assess(buf)
	if err != nil {
		return nil, newError(KindInvalidInput, "quality", err)
	}

	report := a.builder.Build(BuildInput{
		Source:  source,
		Width:   buf.Width,
		Height:  buf.Height,
		Pads:    pads,
		Quality: metrics,
		Layout:  detection.CheckLayout(regions, a.builder.opts.LayoutTolerance),
		Random:  a.newRandom(Seed(buf, source)),
	})

	a.logger.Debugw("analysis complete",
		"width", buf.Width,
		"height", buf.Height,
		"edge_pixels", mask.Count(),
		"contours", contours,
		"regions", len(regions),
		"preprocess", tPre,
		"detect", tDetect,
		"total", time.Since(start),
		"overall_confidence", report.OverallConfidence,
		"qa_passed", report.QA.Passed,
	)
	return report, nil
}

func (a *Analyzer) detect(stages *imaging.Stages) (*imaging.EdgeMask, int, []detection.Region) {
	mask := a.edges.Detect(stages.Enhanced)
	contours := detection.ExtractContours(mask, a.selector.Criteria().MinContourPoints)
	return mask, len(contours), a.selector.Select(contours)
}

// DetectPads runs preprocessing and pad detection only. Regions are in
// reading order; the mask is the edge map they were traced from.
func (a *Analyzer) DetectPads(ctx context.Context, buf *imaging.PixelBuffer) ([]detection.Region, *imaging.EdgeMask, error) {
	if buf == nil || buf.Empty() {
		return nil, nil, newError(KindInvalidInput, "load", imaging.ErrEmptyImage)
	}
	stages, err := a.preprocessor.Run(buf)
	if err != nil {
		return nil, nil, newError(KindInvalidInput, "preprocess", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, newError(KindCanceled, "preprocess", err)
	}
	mask, _, regions := a.detect(stages)
	return regions, mask, nil
}

// AssessQuality grades the photographic quality of buf.
func (a *Analyzer) AssessQuality(buf *imaging.PixelBuffer) (quality.Metrics, error) {
	m, err := a.assessor.Assess(buf)
	if err != nil {
		return quality.Metrics{}, newError(KindInvalidInput, "quality", err)
	}
	return m, nil
}
