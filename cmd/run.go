package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/proxaccel/internal/accel"
	"github.com/cwbudde/proxaccel/internal/config"
	"github.com/cwbudde/proxaccel/internal/problem"
	"github.com/cwbudde/proxaccel/internal/solver"
	"github.com/cwbudde/proxaccel/internal/store"
	"github.com/cwbudde/proxaccel/internal/trace"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve a synthetic problem with an acceleration scheme",
	Long: `Builds the configured problem, runs the solver with the selected
acceleration scheme and prints the final objective. With --trace-dir the
per-iteration trace and the result are written under <dir>/runs/<run>/.`,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := problem.New(cfg.Problem)
	if err != nil {
		return fmt.Errorf("failed to build problem: %w", err)
	}
	scheme, err := accel.New(cfg.Scheme)
	if err != nil {
		return fmt.Errorf("failed to build scheme: %w", err)
	}
	s, err := cfg.NewSolver(scheme, p.Step())
	if err != nil {
		return fmt.Errorf("failed to build solver: %w", err)
	}

	opts := cfg.Stop
	var tw *trace.Writer
	if cfg.TraceDir != "" {
		tw, err = trace.NewWriter(cfg.TraceDir)
		if err != nil {
			return fmt.Errorf("failed to create trace: %w", err)
		}
		defer tw.Close()
		opts.Trace = tw
	}

	step := s.Step()
	slog.Info("Starting run",
		"problem", p.Name,
		"size", len(p.X0),
		"scheme", scheme.Name(),
		"solver", s.Name(),
		"step", step,
	)

	res, err := solver.Solve(p.Funcs, p.X0, s, opts)
	if err != nil {
		return fmt.Errorf("solve failed: %w", err)
	}

	relErr := floats.Distance(res.Sol, p.Truth, 2) / floats.Norm(p.Truth, 2)
	slog.Info("Run complete",
		"iterations", res.Iterations,
		"objective", res.Final(),
		"crit", res.Crit,
		"relative_error", relErr,
		"elapsed", res.Elapsed,
	)

	if tw != nil {
		if err := saveResult(cfg, tw.Run(), step, res); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", tw.Path())
	}

	fmt.Printf("%s/%s: objective %.6g after %d iterations (%s), relative error %.3g\n",
		scheme.Name(), s.Name(), res.Final(), res.Iterations, res.Crit, relErr)
	return nil
}

// saveResult stores res under run. step is the step size the solver started
// from, which differs from cfg.Solver.Step when that falls back to 1/L.
func saveResult(cfg config.Config, run string, step float64, res *solver.Result) error {
	st, err := store.NewFSStore(cfg.TraceDir)
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}

	record := &store.Result{
		Run:        run,
		Sol:        res.Sol,
		Objective:  res.Objective,
		Iterations: res.Iterations,
		Crit:       res.Crit,
		Elapsed:    res.Elapsed,
		Timestamp:  time.Now(),
		Config: store.RunConfig{
			Problem: cfg.Problem.Name,
			Size:    cfg.Problem.Size,
			Seed:    cfg.Problem.Seed,
			Scheme:  cfg.Scheme.Name,
			Solver:  cfg.Solver.Name,
			Step:    step,
			MaxIt:   cfg.Stop.MaxIt,
		},
	}
	if err := st.SaveResult(run, record); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}
