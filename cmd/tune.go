package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/proxaccel/internal/accel"
	"github.com/cwbudde/proxaccel/internal/config"
	"github.com/cwbudde/proxaccel/internal/opt"
	"github.com/cwbudde/proxaccel/internal/problem"
	"github.com/cwbudde/proxaccel/internal/solver"
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search the step size with mayfly optimization",
	Long: `Runs the configured scheme and solver for many step sizes, chosen by
the mayfly optimizer over log10(step), and reports the step that reaches
the lowest final objective.`,
	RunE: runTune,
}

func init() {
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := problem.New(cfg.Problem)
	if err != nil {
		return fmt.Errorf("failed to build problem: %w", err)
	}

	optimizer := opt.NewMayfly(cfg.Tune.MaxIters, cfg.Tune.PopSize, cfg.Tune.Seed)
	res, err := opt.TuneStep(optimizer, stepTrial(cfg, p), cfg.Tune.LowerExp, cfg.Tune.UpperExp)
	if err != nil {
		return err
	}

	fmt.Printf("%s: best step %.6g (1/L = %.6g), objective %.6g, %d trials (%d failed)\n",
		cfg.Scheme.Name, res.Step, p.Step(), res.Objective, res.Evaluations, res.Failures)
	return nil
}

// stepTrial solves p from scratch with a fresh scheme for every step size.
func stepTrial(cfg config.Config, p *problem.Problem) opt.Trial {
	return func(step float64) (float64, error) {
		scheme, err := accel.New(cfg.Scheme)
		if err != nil {
			return 0, err
		}
		trialCfg := cfg
		trialCfg.Solver.Step = step
		s, err := trialCfg.NewSolver(scheme, step)
		if err != nil {
			return 0, err
		}
		res, err := solver.Solve(p.Funcs, p.X0, s, cfg.Stop)
		if err != nil {
			return 0, err
		}
		return res.Final(), nil
	}
}
