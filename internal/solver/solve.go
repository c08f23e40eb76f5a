package solver

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/proxaccel/internal/functions"
	"github.com/cwbudde/proxaccel/internal/trace"
)

// Recorder receives one trace entry per iteration.
type Recorder interface {
	Write(entry trace.Entry) error
}

// Result holds the output of a solver run.
type Result struct {
	// Sol is the final solution
	Sol []float64

	// Objective holds the objective at x0 followed by one value per iteration
	Objective []float64

	// Iterations is the number of completed iterations
	Iterations int

	// Crit names the stopping criterion that ended the run
	Crit string

	// Elapsed is the wall time spent in Solve
	Elapsed time.Duration
}

// Final returns the last recorded objective value.
func (r *Result) Final() float64 {
	return r.Objective[len(r.Objective)-1]
}

// Solve minimizes the sum of funcs starting from x0.
func Solve(funcs []functions.Function, x0 []float64, s Solver, opts Options) (*Result, error) {
	if len(funcs) == 0 {
		return nil, fmt.Errorf("%w: no objective functions", ErrInvalidOptions)
	}
	if opts.MaxIt < 1 {
		return nil, fmt.Errorf("%w: maxit must be at least 1, got %d", ErrInvalidOptions, opts.MaxIt)
	}
	for _, f := range funcs {
		if !f.Cap().Has(functions.Eval) {
			return nil, fmt.Errorf("%w: every function must support evaluation, got %s", ErrInvalidOptions, f.Cap())
		}
	}

	start := time.Now()
	if err := s.Pre(funcs, x0); err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", s.Name(), err)
	}
	defer s.Post()

	objective := []float64{functions.Sum(funcs, x0)}
	if err := record(opts, 0, objective[0], s); err != nil {
		return nil, err
	}

	slog.Info("Starting solver",
		"solver", s.Name(),
		"dim", len(x0),
		"step", s.Step(),
		"initial_objective", objective[0],
	)

	stop := newStopper(opts, x0)
	var crit string
	niter := 0
	for crit == "" {
		niter++
		if err := s.Algo(objective, niter); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", niter, err)
		}

		objective = append(objective, functions.Sum(funcs, s.Sol()))
		if err := record(opts, niter, objective[niter], s); err != nil {
			return nil, err
		}
		crit = stop.check(objective, s.Sol(), niter)
	}

	result := &Result{
		Sol:        append([]float64(nil), s.Sol()...),
		Objective:  objective,
		Iterations: niter,
		Crit:       crit,
		Elapsed:    time.Since(start),
	}

	slog.Info("Solution found",
		"iterations", niter,
		"objective", result.Final(),
		"crit", crit,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

func record(opts Options, niter int, value float64, s Solver) error {
	if opts.Trace == nil {
		return nil
	}
	entry := trace.Entry{Iteration: niter, Objective: value, Step: s.Step()}
	if opts.TraceSol {
		entry.Sol = append([]float64(nil), s.Sol()...)
	}
	if err := opts.Trace.Write(entry); err != nil {
		return fmt.Errorf("failed to record iteration %d: %w", niter, err)
	}
	return nil
}
