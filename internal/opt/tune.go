package opt

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// ErrNoFeasibleStep is returned when every trial run failed.
var ErrNoFeasibleStep = errors.New("no step size produced a finite objective")

// Trial runs a solver with the given step size and returns the final objective.
type Trial func(step float64) (float64, error)

// TuneResult holds the outcome of TuneStep.
type TuneResult struct {
	// Step is the best step size found
	Step float64

	// Objective is the final objective reached with Step
	Objective float64

	// Evaluations counts the trial runs
	Evaluations int

	// Failures counts the trial runs that returned an error or a non-finite objective
	Failures int
}

// TuneStep searches log10(step) in [lowerExp, upperExp] for the step size
// whose trial run reaches the lowest objective.
func TuneStep(o Optimizer, trial Trial, lowerExp, upperExp float64) (*TuneResult, error) {
	if !(lowerExp < upperExp) {
		return nil, fmt.Errorf("invalid step exponent range [%g, %g]", lowerExp, upperExp)
	}

	res := &TuneResult{}
	var firstErr error
	eval := func(x []float64) float64 {
		exp := math.Min(math.Max(x[0], lowerExp), upperExp)
		step := math.Pow(10, exp)
		res.Evaluations++

		value, err := trial(step)
		if err == nil && (math.IsNaN(value) || math.IsInf(value, 0)) {
			err = fmt.Errorf("non-finite objective %g", value)
		}
		if err != nil {
			res.Failures++
			if firstErr == nil {
				firstErr = fmt.Errorf("step %g: %w", step, err)
			}
			slog.Debug("Trial failed", "step", step, "error", err)
			return math.Inf(1)
		}
		return value
	}

	best, cost, err := o.Run(eval, []float64{lowerExp}, []float64{upperExp}, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to tune step: %w", err)
	}
	if math.IsInf(cost, 1) || math.IsNaN(cost) {
		if firstErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoFeasibleStep, firstErr)
		}
		return nil, ErrNoFeasibleStep
	}

	res.Step = math.Pow(10, math.Min(math.Max(best[0], lowerExp), upperExp))
	res.Objective = cost

	slog.Info("Step tuned",
		"step", res.Step,
		"objective", res.Objective,
		"evaluations", res.Evaluations,
		"failures", res.Failures,
	)
	return res, nil
}
