package accel

import (
	"math"

	"github.com/cwbudde/proxaccel/internal/functions"
)

// sepQuad is 0.5 * sum_i d_i (x_i - y_i)^2.
type sepQuad struct {
	functions.Unsupported
	d, y []float64
}

func (q sepQuad) Cap() functions.Capability { return functions.Eval | functions.Grad }

func (q sepQuad) Eval(x []float64) float64 {
	var sum float64
	for i := range x {
		r := x[i] - q.y[i]
		sum += 0.5 * q.d[i] * r * r
	}
	return sum
}

func (q sepQuad) Grad(x []float64) []float64 {
	g := make([]float64, len(x))
	for i := range x {
		g[i] = q.d[i] * (x[i] - q.y[i])
	}
	return g
}

func testQuad() sepQuad {
	return sepQuad{d: []float64{1, 2, 3, 4}, y: []float64{1, -1, 2, 0.5}}
}

// nanFunc evaluates to NaN everywhere.
type nanFunc struct {
	functions.Unsupported
}

func (nanFunc) Cap() functions.Capability { return functions.Eval }
func (nanFunc) Eval(x []float64) float64  { return math.NaN() }

// fakeSolver takes plain gradient steps from base.
type fakeSolver struct {
	f    functions.Function
	base []float64
	sol  []float64
	step float64

	recomputes int
}

func newFakeSolver(f functions.Function, x0 []float64, step float64) *fakeSolver {
	return &fakeSolver{
		f:    f,
		base: append([]float64(nil), x0...),
		sol:  append([]float64(nil), x0...),
		step: step,
	}
}

func (s *fakeSolver) Sol() []float64       { return s.sol }
func (s *fakeSolver) Step() float64        { return s.step }
func (s *fakeSolver) SetStep(step float64) { s.step = step }

func (s *fakeSolver) Recompute() {
	s.recomputes++
	s.gradStep()
}

func (s *fakeSolver) gradStep() {
	g := s.f.Grad(s.base)
	for i := range s.sol {
		s.sol[i] = s.base[i] - s.step*g[i]
	}
}

// iterate starts a new iteration from the current solution.
func (s *fakeSolver) iterate() {
	copy(s.base, s.sol)
	s.gradStep()
}

// staticSolver exposes a fixed solution and step.
type staticSolver struct {
	sol  []float64
	step float64
}

func (s *staticSolver) Sol() []float64       { return s.sol }
func (s *staticSolver) Step() float64        { return s.step }
func (s *staticSolver) SetStep(step float64) { s.step = step }
func (s *staticSolver) Recompute()           {}
