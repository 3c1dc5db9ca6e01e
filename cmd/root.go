package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slice-sim/slice-sim/sim/scenario"
	"github.com/slice-sim/slice-sim/sim/trace"
)

var (
	seed       int64  // Seed for every random stream of the run
	logLevel   string // Log verbosity level
	metricsOut string // Prometheus textfile path
	traceLevel string // Decision trace level
)

// rootCmd runs one scenario file.
var rootCmd = &cobra.Command{
	Use:   "slice-sim <config.yaml>",
	Short: "Discrete-event simulator for sliced cellular networks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		path := args[0]
		cfg, err := scenario.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			logrus.Errorf("File Not Found: %s", path)
			return
		}
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		cwd, err := os.Getwd()
		if err != nil {
			logrus.Fatalf("Cannot resolve working directory: %v", err)
		}
		closeLog, err := setupLogging(scenario.OutputPath(cwd, cfg.Settings.LogFile))
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer closeLog()
		logrus.Info("Configuration loaded successfully.")

		opts := runOptions{
			Seed:        cfg.Seed(seed),
			MetricsFile: scenario.OutputPath(cwd, cfg.Settings.MetricsFile),
		}
		if cmd.Flags().Changed("seed") {
			opts.Seed = seed
		}
		if cmd.Flags().Changed("metrics-out") {
			opts.MetricsFile = metricsOut
		}
		if cmd.Flags().Changed("trace") {
			if !trace.IsValidTraceLevel(traceLevel) {
				logrus.Fatalf("Unknown trace level %q; valid: none, decisions", traceLevel)
			}
			cfg.Settings.Trace = traceLevel
		}

		res, err := runScenario(cfg, opts)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		res.Report()
		if opts.MetricsFile != "" {
			if err := res.ExportMetrics(opts.MetricsFile); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Metrics written to %s", opts.MetricsFile)
		}
		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for every random stream (overrides settings.seed)")
	rootCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write final metrics in Prometheus text format to this file (overrides settings.metrics_file)")
	rootCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions; overrides settings.trace)")
}
