// Package config loads stripscan settings from YAML.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/stripscan/internal/analysis"
	"github.com/ironsheep/stripscan/internal/colorimetry"
)

// EnvLogLevel overrides Config.LogLevel when set.
const EnvLogLevel = "STRIPSCAN_LOG_LEVEL"

// Config is the complete runtime configuration.
type Config struct {
	// CalibrationFile replaces the embedded calibration table when set.
	CalibrationFile string `yaml:"calibration_file"`

	LogLevel string `yaml:"log_level"`

	// Workers bounds concurrent analyses in batch mode.
	Workers int `yaml:"workers"`

	HTTP     HTTPConfig       `yaml:"http"`
	Analysis analysis.Options `yaml:"analysis"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
}

// Address returns host:port.
func (h HTTPConfig) Address() string {
	return net.JoinHostPort(strings.TrimSpace(h.Host), strings.TrimSpace(h.Port))
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Workers:  4,
		HTTP: HTTPConfig{
			Host:               "0.0.0.0",
			Port:               "8080",
			RequestTimeout:     30 * time.Second,
			MaxRequestBodySize: 10 * 1024 * 1024,
		},
		Analysis: analysis.DefaultOptions(),
	}
}

// Load reads path over the defaults, applies the environment and validates
// the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every inconsistent setting.
func (c *Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}

	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log_level: %w", lerr))
	}
	check(c.Workers >= 1, "workers must be >= 1 (got %d)", c.Workers)

	p, perr := strconv.Atoi(strings.TrimSpace(c.HTTP.Port))
	check(perr == nil && p >= 1 && p <= 65535, "http.port: invalid port %q", c.HTTP.Port)
	check(c.HTTP.RequestTimeout > 0, "http.request_timeout must be > 0 (got %s)", c.HTTP.RequestTimeout)
	check(c.HTTP.MaxRequestBodySize > 0, "http.max_request_body_size must be > 0 (got %d)", c.HTTP.MaxRequestBodySize)

	a := c.Analysis
	check(a.MaxDimension > 0, "analysis.max_dimension must be > 0 (got %d)", a.MaxDimension)
	check(a.Preprocess.BilateralRadius >= 0, "analysis.preprocess.bilateral_radius must be >= 0")
	check(a.Preprocess.SigmaSpace > 0 && a.Preprocess.SigmaColor > 0, "analysis.preprocess sigmas must be > 0")
	check(a.Edges.Low >= 0 && a.Edges.Low <= a.Edges.High,
		"analysis.edges: need 0 <= low <= high (got %g, %g)", a.Edges.Low, a.Edges.High)
	check(a.Edges.Gradient.Valid(), "analysis.edges.gradient: unknown gradient %q (use color or luma)", a.Edges.Gradient)
	check(a.Pads.MinArea >= 0 && a.Pads.MinArea <= a.Pads.MaxArea,
		"analysis.pads: min_area %d exceeds max_area %d", a.Pads.MinArea, a.Pads.MaxArea)
	check(a.Pads.MinAspect > 0 && a.Pads.MinAspect <= a.Pads.MaxAspect,
		"analysis.pads: need 0 < min_aspect <= max_aspect (got %g, %g)", a.Pads.MinAspect, a.Pads.MaxAspect)
	check(a.Pads.MaxPads >= 1, "analysis.pads.max_pads must be >= 1")
	check(a.Sampler.Rings >= 0 && a.Sampler.PointsPerRing >= 1, "analysis.sampler: need rings >= 0 and points_per_ring >= 1")
	check(a.Sampler.RadiusFraction > 0 && a.Sampler.RadiusFraction <= 0.5,
		"analysis.sampler.radius_fraction must be in (0, 0.5] (got %g)", a.Sampler.RadiusFraction)
	check(a.Matcher.Neighbors >= 1 && a.Matcher.Power > 0, "analysis.matcher: need neighbors >= 1 and power > 0")
	check(a.Quality.OptimalLow <= a.Quality.OptimalHigh,
		"analysis.quality: optimal_low %g exceeds optimal_high %g", a.Quality.OptimalLow, a.Quality.OptimalHigh)
	check(a.Quality.LightingStride >= 1 && a.Quality.NoiseStride >= 1, "analysis.quality strides must be >= 1")
	check(a.Report.MinRegionConfidence >= 0 && a.Report.MinRegionConfidence <= 100,
		"analysis.report.min_region_confidence must be in [0, 100]")

	fb := a.Report.Fallback
	check(fb.MinConfidence <= fb.MaxConfidence, "analysis.report.fallback: min_confidence exceeds max_confidence")
	check(fb.PHMin < fb.PHMax, "analysis.report.fallback: ph_min must be below ph_max")
	check(fb.Jitter >= 0, "analysis.report.fallback.jitter must be >= 0")

	return err
}

// Calibration returns the calibration named by CalibrationFile, or the
// embedded table.
func (c *Config) Calibration() (*colorimetry.Calibration, error) {
	if c.CalibrationFile == "" {
		return colorimetry.Default()
	}
	return colorimetry.LoadFile(c.CalibrationFile)
}
