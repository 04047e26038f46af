package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/stripscan/internal/analysis"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/quality"
	"github.com/ironsheep/stripscan/internal/water"
)

var (
	sourceName  string
	annotateDir string
	workers     int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-path...]",
	Short: "Analyze one or more test-strip photographs",
	Long: "Detects the pads in each photograph, reads every parameter and prints a JSON report. " +
		"Several images are analyzed in parallel; one failing image does not stop the others.",
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var qualityCmd = &cobra.Command{
	Use:   "quality [image-path...]",
	Short: "Grade the photographic quality of images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuality,
}

func init() {
	analyzeCmd.Flags().StringVarP(&sourceName, "source", "s", "", "water source: tap, well, lake, river, pool, bottled or other")
	analyzeCmd.Flags().StringVar(&annotateDir, "annotate", "", "write <name>.annotated.png with outlined pads into this directory")
	analyzeCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent analyses (default from config)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(qualityCmd)
}

// AnalyzeResult is the outcome for one input image.
type AnalyzeResult struct {
	Path      string           `json:"path"`
	Report    *analysis.Report `json:"report,omitempty"`
	Annotated string           `json:"annotated,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := water.Other
	if sourceName != "" {
		var ok bool
		if source, ok = water.ParseSource(sourceName); !ok {
			return fmt.Errorf("unknown water source %q", sourceName)
		}
	}

	a, err := newAnalyzer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache := imaging.NewImageCache()
	results := make([]AnalyzeResult, len(args))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount())
	for i, path := range args {
		g.Go(func() error {
			results[i] = analyzeOne(ctx, a, cache, path, source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	var out interface{} = results
	if len(results) == 1 {
		out = results[0]
	}
	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(results))
	}
	return nil
}

func analyzeOne(ctx context.Context, a *analysis.Analyzer, cache *imaging.ImageCache, path string, source water.Source) AnalyzeResult {
	res := AnalyzeResult{Path: path}
	img, err := cache.Load(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer cache.Evict(path)
	img = imaging.Downscale(img, cfg.Analysis.MaxDimension)

	report, err := a.Analyze(ctx, img, source)
	if err != nil {
		logger.Warnw("analysis failed", "path", path, "error", err)
		res.Error = err.Error()
		return res
	}
	res.Report = report
	logger.Infow("strip analyzed",
		"path", path,
		"water_source", source,
		"regions", report.RegionsDetected,
		"overall_confidence", report.OverallConfidence,
		"qa_passed", report.QA.Passed,
	)

	if annotateDir != "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out := filepath.Join(annotateDir, base+".annotated.png")
		if err := imaging.SavePNG(imaging.Annotate(img, report.Boxes()), out); err != nil {
			res.Error = fmt.Sprintf("annotate: %v", err)
			return res
		}
		res.Annotated = out
	}
	return res
}

func workerCount() int {
	if workers > 0 {
		return workers
	}
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return 1
}

// QualityReport is the output of the quality command for one image.
type QualityReport struct {
	Path      string           `json:"path"`
	Metrics   *quality.Metrics `json:"metrics,omitempty"`
	Composite float64          `json:"composite"`
	Error     string           `json:"error,omitempty"`
}

func runQuality(cmd *cobra.Command, args []string) error {
	a, err := newAnalyzer()
	if err != nil {
		return err
	}

	cache := imaging.NewImageCache()
	reports := make([]QualityReport, len(args))
	g := new(errgroup.Group)
	g.SetLimit(workerCount())
	for i, path := range args {
		g.Go(func() error {
			reports[i] = QualityReport{Path: path}
			img, err := cache.Load(path)
			if err != nil {
				reports[i].Error = err.Error()
				return nil
			}
			buf, err := imaging.FromImage(imaging.Downscale(img, cfg.Analysis.MaxDimension))
			if err != nil {
				reports[i].Error = err.Error()
				return nil
			}
			m, err := a.AssessQuality(buf)
			if err != nil {
				reports[i].Error = err.Error()
				return nil
			}
			reports[i].Metrics = &m
			reports[i].Composite = m.Composite()
			return nil
		})
	}
	_ = g.Wait()

	return writeJSON(cmd.OutOrStdout(), reports)
}
