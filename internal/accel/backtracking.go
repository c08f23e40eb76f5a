package accel

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/proxaccel/internal/functions"
	"gonum.org/v1/gonum/floats"
)

// MaxBacktracks bounds the shrink loop. Halving any finite float64 step this
// many times reaches zero.
const MaxBacktracks = 1100

// DefaultEta is the default shrink ratio of backtracking.
const DefaultEta = 0.5

// backtrack shrinks the step until the local quadratic model around the
// tracked snapshot majorizes the smooth part of the objective:
//
//	f(sol) <= f(snap) + <sol - snap, grad f(snap)> + ||sol - snap||^2 / (2 step)
type backtrack struct {
	eta    float64
	smooth []functions.Function
}

func newBacktrack(eta float64) (*backtrack, error) {
	if !(eta > 0 && eta <= 1) {
		return nil, fmt.Errorf("%w: eta must be in (0, 1], got %g", ErrInvalidConfig, eta)
	}
	return &backtrack{eta: eta}, nil
}

func (b *backtrack) Pre(funcs []functions.Function, x0 []float64) error {
	b.smooth = functions.Smooth(funcs)
	return nil
}

func (b *backtrack) UpdateStep(s Solver, snap, objective []float64, niter int) (float64, error) {
	if len(objective) == 0 {
		return 0, fmt.Errorf("backtracking: empty objective history")
	}
	valn := objective[len(objective)-1]
	valp := functions.Sum(b.smooth, s.Sol())
	grad := functions.SumGrad(b.smooth, snap)

	step := s.Step()
	shrinks := 0
	for violatesMajorant(step, valp, valn, s.Sol(), snap, grad) {
		if shrinks >= MaxBacktracks || step == 0 {
			slog.Warn("Backtracking stopped before the quadratic bound held",
				"niter", niter,
				"step", step,
				"shrinks", shrinks,
			)
			break
		}
		step *= b.eta
		shrinks++
		s.SetStep(step)
		s.Recompute()
		valp = functions.Sum(b.smooth, s.Sol())
	}

	if shrinks > 0 {
		slog.Debug("Backtracking reduced step", "niter", niter, "step", step, "shrinks", shrinks)
	}
	return step, nil
}

func (b *backtrack) Post() {
	b.smooth = nil
}

func violatesMajorant(step, valp, valn float64, sol, snap, grad []float64) bool {
	d := make([]float64, len(sol))
	floats.SubTo(d, sol, snap)
	return 2*step*(valp-valn-floats.Dot(d, grad)) > floats.Dot(d, d)
}

// NewBacktracking returns a scheme that only adapts the step size.
func NewBacktracking(eta float64) (*Accelerator, error) {
	bt, err := newBacktrack(eta)
	if err != nil {
		return nil, err
	}
	return Compose(NameBacktracking, bt, trackSol{}), nil
}
