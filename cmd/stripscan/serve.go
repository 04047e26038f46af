package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/stripscan/internal/httpapi"
	"github.com/ironsheep/stripscan/internal/server"
)

var (
	httpAddrHost string
	httpAddrPort string
	calFormat    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: "Serves the strip tools over the Model Context Protocol (JSON-RPC 2.0, one request per line). " +
		"Configure it in your MCP client; logs go to stderr.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Debugw("mcp server starting", "version", Version, "build_time", BuildTime, "commit", GitCommit)
		return server.New(a, cfg.Analysis.MaxDimension, Version, logger).Run(ctx)
	},
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if httpAddrHost != "" {
			cfg.HTTP.Host = httpAddrHost
		}
		if httpAddrPort != "" {
			cfg.HTTP.Port = httpAddrPort
		}
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return httpapi.New(a, cfg.HTTP, cfg.Analysis.MaxDimension, Version, logger).ListenAndServe(ctx)
	},
}

var calibrationCmd = &cobra.Command{
	Use:   "calibration",
	Short: "Print the active calibration table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cal, err := cfg.Calibration()
		if err != nil {
			return err
		}
		table := cal.Table()
		switch calFormat {
		case "json":
			return writeJSON(cmd.OutOrStdout(), table)
		case "yaml":
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(table); err != nil {
				return err
			}
			return enc.Close()
		default:
			return fmt.Errorf("unknown format %q (use yaml or json)", calFormat)
		}
	},
}

func init() {
	httpCmd.Flags().StringVar(&httpAddrHost, "host", "", "listen host (default from config)")
	httpCmd.Flags().StringVarP(&httpAddrPort, "port", "p", "", "listen port (default from config)")
	calibrationCmd.Flags().StringVarP(&calFormat, "format", "f", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(httpCmd)
	rootCmd.AddCommand(calibrationCmd)
}
