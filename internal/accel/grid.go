package accel

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// gridState selects how the RNA regularization grid evolves across cycles.
type gridState int

const (
	// gridFixed keeps the configured grid for every cycle (adaptive off).
	gridFixed gridState = iota
	// gridUser uses a configured multi-value grid for one cycle, then rebuilds.
	gridUser
	// gridRebuild derives a fresh grid from the Gram spectrum every cycle.
	gridRebuild
)

func (s gridState) String() string {
	switch s {
	case gridFixed:
		return "fixed"
	case gridUser:
		return "user"
	case gridRebuild:
		return "rebuild"
	default:
		return fmt.Sprintf("gridState(%d)", int(s))
	}
}

// lambdaGrid holds the regularization candidates tried by the RNA grid search.
type lambdaGrid struct {
	configured []float64
	adaptive   bool

	state  gridState
	values []float64
}

func newLambdaGrid(configured []float64, adaptive bool) *lambdaGrid {
	g := &lambdaGrid{
		configured: append([]float64(nil), configured...),
		adaptive:   adaptive,
	}
	g.reset()
	return g
}

// reset restores the configured grid, e.g. at the start of a new run.
func (g *lambdaGrid) reset() {
	g.values = append([]float64(nil), g.configured...)
	switch {
	case !g.adaptive:
		g.state = gridFixed
	case len(g.values) > 1:
		g.state = gridUser
	default:
		g.state = gridRebuild
	}
}

// candidates returns the grid for the current cycle, rebuilding it from the
// normalized Gram matrix when the state asks for it.
func (g *lambdaGrid) candidates(uu *mat.SymDense) ([]float64, error) {
	if g.state == gridRebuild {
		values, err := spectralGrid(uu)
		if err != nil {
			return nil, err
		}
		g.values = values
	}
	return g.values, nil
}

// endCycle drops the grid after an extrapolation unless it is fixed.
func (g *lambdaGrid) endCycle() {
	if g.state == gridFixed {
		return
	}
	g.values = nil
	g.state = gridRebuild
}

// spectralGrid returns 0 followed by the log-scale midpoints of the sorted
// absolute eigenvalues of uu.
func spectralGrid(uu *mat.SymDense) ([]float64, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(uu, false); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition of Gram matrix did not converge", ErrLinearAlgebra)
	}
	vals := eig.Values(nil)
	for i, v := range vals {
		vals[i] = math.Abs(v)
	}
	sort.Float64s(vals)

	grid := make([]float64, 1, len(vals))
	for i := 0; i+1 < len(vals); i++ {
		grid = append(grid, math.Exp(0.5*(math.Log(vals[i])+math.Log(vals[i+1]))))
	}
	return grid, nil
}
