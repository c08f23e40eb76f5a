package accel

import "github.com/cwbudde/proxaccel/internal/functions"

// keepStep returns the solver's step unchanged.
type keepStep struct{}

func (keepStep) Pre(funcs []functions.Function, x0 []float64) error { return nil }

func (keepStep) UpdateStep(s Solver, snap, objective []float64, niter int) (float64, error) {
	return s.Step(), nil
}

func (keepStep) Post() {}

// trackSol returns the solver's solution unchanged. The Accelerator still
// refreshes its snapshot, which is all the tracking step-size rules need.
type trackSol struct{}

func (trackSol) Pre(funcs []functions.Function, x0 []float64) error { return nil }

func (trackSol) UpdateSol(s Solver, snap, objective []float64, niter int) ([]float64, error) {
	return s.Sol(), nil
}

func (trackSol) Post() {}

// NewDummy returns the no-op scheme: the solver runs unaccelerated.
func NewDummy() *Accelerator {
	return Compose(NameDummy, keepStep{}, trackSol{})
}
