// Command stripscan reads water test strips from photographs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/stripscan/internal/analysis"
	"github.com/ironsheep/stripscan/internal/config"
	"github.com/ironsheep/stripscan/internal/log"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath      string
	calibrationPath string
	debug           bool

	cfg    *config.Config
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "stripscan",
	Short: "Water test-strip analyzer",
	Long: "stripscan locates the reagent pads of a six-parameter water test strip in a photograph, " +
		"matches their colors against a calibration table and reports pH, chlorine, nitrates, " +
		"hardness, alkalinity and bacteria with a confidence score.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Skip config loading so version always works.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "stripscan %s\n", Version)
		fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&calibrationPath, "calibration", "", "calibration table YAML (overrides calibration_file)")
	pf.BoolVar(&debug, "debug", false, "development logging at debug level")

	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and initializes logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(configPath); err != nil {
		return err
	}
	if calibrationPath != "" {
		cfg.CalibrationFile = calibrationPath
	}

	level := cfg.LogLevel
	if debug {
		level = ""
	}
	if err := log.Init(debug, level); err != nil {
		return err
	}
	logger = log.GetSugaredLogger()
	return nil
}

// newAnalyzer builds an analyzer from the loaded configuration.
func newAnalyzer() (*analysis.Analyzer, error) {
	cal, err := cfg.Calibration()
	if err != nil {
		return nil, err
	}
	return analysis.New(cal, cfg.Analysis, analysis.WithLogger(logger))
}

func writeJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
