package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/proxaccel/internal/config"
)

var (
	logLevel string
	logger   *slog.Logger

	cfgFile  string
	settings = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "proxaccel",
	Short: "Accelerated first-order solvers for composite convex problems",
	Long: `proxaccel runs gradient descent and forward-backward splitting on
synthetic sparse recovery problems, accelerated by backtracking, FISTA
momentum or regularized nonlinear acceleration (RNA).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfgFile, "config", "", "YAML config file (overridden by PROXACCEL_* env and flags)")

	d := config.Default()
	flags.String("problem", d.Problem.Name, "Problem: denoise, lasso")
	flags.Int("size", d.Problem.Size, "Problem dimension")
	flags.Int64("seed", d.Problem.Seed, "Problem random seed")
	flags.String("scheme", d.Scheme.Name, "Acceleration scheme (see 'proxaccel schemes')")
	flags.Float64("eta", d.Scheme.Eta, "Backtracking shrink factor in (0, 1]")
	flags.Int("k", d.Scheme.RNA.K, "RNA buffer length")
	flags.String("solver", d.Solver.Name, "Solver: fb (forward-backward), gd (gradient descent)")
	flags.Float64("step", d.Solver.Step, "Initial step size (0 = 1/L of the problem)")
	flags.Int("maxit", d.Stop.MaxIt, "Maximum number of iterations")
	flags.Float64("atol", d.Stop.ATol, "Stop when the objective drops below atol (0 = off)")
	flags.Float64("rtol", d.Stop.RTol, "Stop when the relative objective change drops below rtol (0 = off)")
	flags.String("trace-dir", d.TraceDir, "Write traces and results under this directory")

	bindings := map[string]string{
		"problem.name": "problem",
		"problem.size": "size",
		"problem.seed": "seed",
		"scheme.name":  "scheme",
		"scheme.eta":   "eta",
		"scheme.rna.k": "k",
		"solver.name":  "solver",
		"solver.step":  "step",
		"stop.maxit":   "maxit",
		"stop.atol":    "atol",
		"stop.rtol":    "rtol",
		"trace_dir":    "trace-dir",
	}
	if err := config.BindFlags(settings, flags, bindings); err != nil {
		panic(err)
	}
}

// loadConfig merges defaults, the config file, environment and flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(settings, cfgFile)
	if err != nil {
		return cfg, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
