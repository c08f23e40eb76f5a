// Package accel implements acceleration schemes for first-order solvers.
//
// A scheme is called by the solver twice per iteration: UpdateStep may shrink
// the step size and UpdateSol may replace the trial point. Every scheme is an
// Accelerator pairing one StepRule with one SolRule, so step-size strategies
// (backtracking) and solution strategies (FISTA momentum, RNA extrapolation)
// compose freely.
package accel

import (
	"errors"
	"fmt"

	"github.com/cwbudde/proxaccel/internal/functions"
)

var (
	// ErrInvalidConfig is returned by constructors for out-of-range parameters.
	ErrInvalidConfig = errors.New("invalid acceleration config")

	// ErrNotInitialized is returned when a scheme is used before Pre or after Post.
	ErrNotInitialized = errors.New("acceleration scheme not initialized: call Pre first")

	// ErrLinearAlgebra wraps failures of the dense linear algebra in RNA.
	ErrLinearAlgebra = errors.New("linear algebra failure")
)

// Solver is the view of the running solver a scheme acts on.
// The solver owns the solution slice and the step size between calls.
type Solver interface {
	// Sol returns the current trial solution
	Sol() []float64

	// Step returns the current step size
	Step() float64

	// SetStep changes the step size used by Recompute and later iterations
	SetStep(step float64)

	// Recompute recomputes the trial solution from the start of the current
	// iteration using the current step size
	Recompute()
}

// Scheme is the lifecycle every acceleration scheme implements.
// Pre and Post bracket one solver run; the same instance can be reused for
// another run after Post.
type Scheme interface {
	Pre(funcs []functions.Function, x0 []float64) error
	UpdateStep(s Solver, objective []float64, niter int) (float64, error)
	UpdateSol(s Solver, objective []float64, niter int) ([]float64, error)
	Post()
}

// StepRule decides the step size of the next iteration.
// snap is the solution tracked at the previous UpdateSol call.
type StepRule interface {
	Pre(funcs []functions.Function, x0 []float64) error
	UpdateStep(s Solver, snap, objective []float64, niter int) (float64, error)
	Post()
}

// SolRule decides the trial point of the next iteration.
// snap is the solution tracked at the previous UpdateSol call; it is refreshed
// by the Accelerator after UpdateSol returns.
type SolRule interface {
	Pre(funcs []functions.Function, x0 []float64) error
	UpdateSol(s Solver, snap, objective []float64, niter int) ([]float64, error)
	Post()
}

// Accelerator dispatches the Scheme lifecycle to a step rule and a solution rule
// and owns the tracked solution snapshot they share.
type Accelerator struct {
	name string
	step StepRule
	sol  SolRule

	snap []float64
}

// Compose builds a scheme from a step rule and a solution rule.
func Compose(name string, step StepRule, sol SolRule) *Accelerator {
	return &Accelerator{name: name, step: step, sol: sol}
}

// Name returns the scheme name, e.g. "fista_backtracking".
func (a *Accelerator) Name() string {
	return a.name
}

// Pre copies x0 into the tracked snapshot and initializes both rules.
func (a *Accelerator) Pre(funcs []functions.Function, x0 []float64) error {
	if len(x0) == 0 {
		return fmt.Errorf("%s: empty initial point", a.name)
	}
	a.snap = append([]float64(nil), x0...)

	if err := a.step.Pre(funcs, a.snap); err != nil {
		a.snap = nil
		return fmt.Errorf("%s: failed to initialize step rule: %w", a.name, err)
	}
	if err := a.sol.Pre(funcs, a.snap); err != nil {
		a.step.Post()
		a.snap = nil
		return fmt.Errorf("%s: failed to initialize solution rule: %w", a.name, err)
	}
	return nil
}

// UpdateStep returns the step size for the next iteration.
func (a *Accelerator) UpdateStep(s Solver, objective []float64, niter int) (float64, error) {
	if a.snap == nil {
		return 0, fmt.Errorf("%s: %w", a.name, ErrNotInitialized)
	}
	return a.step.UpdateStep(s, a.snap, objective, niter)
}

// UpdateSol returns the trial point for the next iteration and tracks the
// solver's current solution.
func (a *Accelerator) UpdateSol(s Solver, objective []float64, niter int) ([]float64, error) {
	if a.snap == nil {
		return nil, fmt.Errorf("%s: %w", a.name, ErrNotInitialized)
	}
	next, err := a.sol.UpdateSol(s, a.snap, objective, niter)
	if err != nil {
		return nil, err
	}
	copy(a.snap, s.Sol())
	return next, nil
}

// Post releases the snapshot and every rule-owned buffer.
func (a *Accelerator) Post() {
	a.step.Post()
	a.sol.Post()
	a.snap = nil
}

var _ Scheme = (*Accelerator)(nil)
