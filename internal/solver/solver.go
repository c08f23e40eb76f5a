// Package solver drives first-order iterations and lets an acceleration
// scheme adjust the step size and the trial point of every iteration.
package solver

import (
	"errors"
	"fmt"

	"github.com/cwbudde/proxaccel/internal/accel"
	"github.com/cwbudde/proxaccel/internal/functions"
)

// ErrInvalidOptions is returned for unusable solver or solve parameters.
var ErrInvalidOptions = errors.New("invalid solver options")

// Solver is an iteration rule run by Solve.
type Solver interface {
	accel.Solver

	// Name identifies the algorithm, e.g. "forward_backward"
	Name() string

	// Pre prepares a run from x0 and initializes the acceleration scheme
	Pre(funcs []functions.Function, x0 []float64) error

	// Algo performs iteration niter given the objective history so far
	Algo(objective []float64, niter int) error

	// Post releases run state, including the scheme's
	Post()
}

// iterator holds the state shared by all solvers and implements accel.Solver.
// update computes sol from base at the current step.
type iterator struct {
	step   float64
	scheme accel.Scheme
	update func()

	sol  []float64
	base []float64
}

func newIterator(step float64, scheme accel.Scheme) (iterator, error) {
	if !(step > 0) {
		return iterator{}, fmt.Errorf("%w: step must be positive, got %g", ErrInvalidOptions, step)
	}
	if scheme == nil {
		scheme = accel.NewDummy()
	}
	return iterator{step: step, scheme: scheme}, nil
}

func (it *iterator) Sol() []float64 { return it.sol }

func (it *iterator) Step() float64 { return it.step }

func (it *iterator) SetStep(step float64) { it.step = step }

// Recompute redoes the current iteration from its starting point.
func (it *iterator) Recompute() { it.update() }

// Scheme returns the acceleration scheme driving this solver.
func (it *iterator) Scheme() accel.Scheme { return it.scheme }

func (it *iterator) pre(funcs []functions.Function, x0 []float64) error {
	if len(x0) == 0 {
		return fmt.Errorf("%w: empty initial point", ErrInvalidOptions)
	}
	it.sol = append([]float64(nil), x0...)
	it.base = append([]float64(nil), x0...)
	return it.scheme.Pre(funcs, x0)
}

// Algo runs one iteration: the trial point is computed from the current
// solution, then the scheme updates the step and the solution.
func (it *iterator) Algo(objective []float64, niter int) error {
	copy(it.base, it.sol)
	it.update()

	step, err := it.scheme.UpdateStep(it, objective, niter)
	if err != nil {
		return fmt.Errorf("failed to update step: %w", err)
	}
	it.step = step

	next, err := it.scheme.UpdateSol(it, objective, niter)
	if err != nil {
		return fmt.Errorf("failed to update solution: %w", err)
	}
	copy(it.sol, next)
	return nil
}

func (it *iterator) Post() {
	it.scheme.Post()
	it.base = nil
}
