package accel

import (
	"math"

	"github.com/cwbudde/proxaccel/internal/functions"
)

// momentum is the FISTA extrapolation with the closed-form t sequence.
type momentum struct {
	t float64
}

func newMomentum() *momentum {
	return &momentum{t: 1}
}

func (m *momentum) Pre(funcs []functions.Function, x0 []float64) error {
	m.t = 1
	return nil
}

func (m *momentum) UpdateSol(s Solver, snap, objective []float64, niter int) ([]float64, error) {
	if niter == 1 {
		m.t = 1 // restart
	}
	t := nextMomentum(m.t)
	beta := (m.t - 1) / t

	sol := s.Sol()
	y := make([]float64, len(sol))
	for i := range sol {
		y[i] = sol[i] + beta*(sol[i]-snap[i])
	}
	m.t = t
	return y, nil
}

func (m *momentum) Post() {}

func nextMomentum(t float64) float64 {
	return (1 + math.Sqrt(1+4*t*t)) / 2
}

// NewFISTA returns the FISTA momentum scheme.
func NewFISTA() *Accelerator {
	return Compose(NameFISTA, keepStep{}, newMomentum())
}

// NewFISTABacktracking combines backtracking on the step with FISTA momentum
// on the solution.
func NewFISTABacktracking(eta float64) (*Accelerator, error) {
	bt, err := newBacktrack(eta)
	if err != nil {
		return nil, err
	}
	return Compose(NameFISTABacktracking, bt, newMomentum()), nil
}
