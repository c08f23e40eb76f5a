package accel

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/proxaccel/internal/functions"
	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RNAConfig configures regularized nonlinear acceleration.
type RNAConfig struct {
	// K is the number of differences used per extrapolation; the buffer
	// holds K+1 iterates and extrapolation happens every K+1 iterations
	K int `mapstructure:"k"`

	// Lambda holds the regularization candidates of the grid search
	Lambda []float64 `mapstructure:"lambda"`

	// Adaptive rebuilds the grid from the spectrum of the Gram matrix when at
	// most one Lambda value is configured
	Adaptive bool `mapstructure:"adaptive"`

	// LineSearch refines the extrapolation with an Armijo search along the
	// segment from the oldest buffered iterate
	LineSearch bool `mapstructure:"line_search"`

	// ForceDecrease discards extrapolations worse than the last objective value
	ForceDecrease bool `mapstructure:"force_decrease"`
}

// DefaultRNAConfig returns the usual RNA settings.
func DefaultRNAConfig() RNAConfig {
	return RNAConfig{
		K:             10,
		Lambda:        []float64{1e-6},
		Adaptive:      true,
		LineSearch:    true,
		ForceDecrease: true,
	}
}

// Validate reports every invalid field at once.
func (c RNAConfig) Validate() error {
	var result *multierror.Error

	if c.K < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: k must be a positive integer, got %d", ErrInvalidConfig, c.K))
	}
	if len(c.Lambda) == 0 && !c.Adaptive {
		result = multierror.Append(result, fmt.Errorf("%w: lambda must hold at least one value when adaptive is off", ErrInvalidConfig))
	}
	for i, l := range c.Lambda {
		if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
			result = multierror.Append(result, fmt.Errorf("%w: lambda[%d] must be a finite non-negative number, got %g", ErrInvalidConfig, i, l))
		}
	}

	return result.ErrorOrNil()
}

// rna buffers iterates and every K+1 iterations replaces the solution with a
// regularized affine combination of the first K buffered points.
type rna struct {
	cfg RNAConfig

	grid   *lambdaGrid
	buffer [][]float64
	funcs  []functions.Function
}

// NewRNA returns the regularized nonlinear acceleration scheme.
func NewRNA(cfg RNAConfig) (*Accelerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Lambda = append([]float64(nil), cfg.Lambda...)

	r := &rna{
		cfg:  cfg,
		grid: newLambdaGrid(cfg.Lambda, cfg.Adaptive),
	}
	return Compose(NameRNA, keepStep{}, r), nil
}

func (r *rna) Pre(funcs []functions.Function, x0 []float64) error {
	r.buffer = make([][]float64, 0, r.cfg.K+1)
	r.funcs = funcs
	r.grid.reset()
	return nil
}

func (r *rna) UpdateSol(s Solver, snap, objective []float64, niter int) ([]float64, error) {
	if r.buffer == nil {
		return nil, fmt.Errorf("rna: %w", ErrNotInitialized)
	}
	sol := s.Sol()
	r.buffer = append(r.buffer, append([]float64(nil), sol...))

	if niter%(r.cfg.K+1) != 0 {
		return sol, nil
	}

	defer r.endCycle()
	return r.extrapolate(sol, objective, niter)
}

func (r *rna) endCycle() {
	r.buffer = r.buffer[:0]
	r.grid.endCycle()
}

func (r *rna) extrapolate(sol, objective []float64, niter int) ([]float64, error) {
	if len(objective) == 0 {
		return nil, fmt.Errorf("rna: empty objective history")
	}
	k := len(r.buffer) - 1
	if k < 1 {
		return sol, nil
	}

	uu := normalizedGram(r.buffer)
	if uu == nil {
		slog.Debug("RNA buffer holds identical points, skipping extrapolation", "niter", niter)
		return sol, nil
	}

	lambdas, err := r.grid.candidates(uu)
	if err != nil {
		return nil, err
	}
	if len(lambdas) == 0 {
		return sol, nil
	}

	var (
		best       = math.Inf(1)
		bestLambda float64
		extrap     []float64
	)
	for _, lambda := range lambdas {
		c, err := extrapolationCoefficients(uu, lambda)
		if err != nil {
			return nil, err
		}
		x := combine(r.buffer[:k], c)
		v := functions.Sum(r.funcs, x)
		if extrap == nil || v < best || math.IsNaN(best) {
			best, bestLambda, extrap = v, lambda, x
		}
	}

	last := objective[len(objective)-1]
	if r.cfg.ForceDecrease && worseThan(best, last) {
		slog.Debug("RNA extrapolation rejected",
			"niter", niter,
			"value", best,
			"last_objective", last,
		)
		return append([]float64(nil), sol...), nil
	}

	slog.Debug("RNA extrapolation",
		"niter", niter,
		"lambda", bestLambda,
		"value", best,
		"grid_size", len(lambdas),
		"grid_state", r.grid.state.String(),
	)

	if r.cfg.LineSearch {
		extrap = r.refine(extrap, objective, niter)
	}
	return extrap, nil
}

// refine runs the Armijo search from the oldest buffered iterate towards the
// extrapolation, using the objective recorded K iterations back as reference.
func (r *rna) refine(extrap, objective []float64, niter int) []float64 {
	xk := r.buffer[0]
	pk := make([]float64, len(xk))
	floats.SubTo(pk, extrap, xk)

	ref := len(objective) - r.cfg.K
	if ref < 0 {
		ref = 0
	}
	phi0 := objective[ref]

	x := make([]float64, len(xk))
	phi := func(alpha float64) float64 {
		floats.AddScaledTo(x, xk, alpha, pk)
		return functions.Sum(r.funcs, x)
	}

	alpha, ok := armijoSearch(phi, phi0, floats.Dot(pk, pk), 1)
	if !ok {
		slog.Warn("Line search failed to find good step size", "niter", niter)
		return extrap
	}
	floats.AddScaledTo(x, xk, alpha, pk)
	return x
}

func (r *rna) Post() {
	r.buffer = nil
	r.funcs = nil
}

// worseThan reports whether value fails to improve on ref. Non-finite values
// never improve.
func worseThan(value, ref float64) bool {
	return math.IsNaN(value) || math.IsInf(value, 0) || value > ref
}

// normalizedGram returns U Uᵀ / ||U Uᵀ||_F where the rows of U are the
// consecutive differences of points. It returns nil when all points coincide.
func normalizedGram(points [][]float64) *mat.SymDense {
	k := len(points) - 1
	n := len(points[0])

	u := mat.NewDense(k, n, nil)
	for i := 0; i < k; i++ {
		floats.SubTo(u.RawRowView(i), points[i+1], points[i])
	}

	uu := mat.NewSymDense(k, nil)
	uu.SymOuterK(1, u)

	norm := mat.Norm(uu, 2)
	if norm == 0 {
		return nil
	}
	uu.ScaleSym(1/norm, uu)
	return uu
}

// extrapolationCoefficients solves (uu + lambda I) c = 1 and scales c to sum to one.
func extrapolationCoefficients(uu *mat.SymDense, lambda float64) ([]float64, error) {
	k := uu.SymmetricDim()

	reg := mat.NewSymDense(k, nil)
	reg.CopySym(uu)
	for i := 0; i < k; i++ {
		reg.SetSym(i, i, reg.At(i, i)+lambda)
	}

	ones := make([]float64, k)
	floats.AddConst(1, ones)

	var c mat.VecDense
	if err := c.SolveVec(reg, mat.NewVecDense(k, ones)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: solving regularized system with lambda=%g: %v", ErrLinearAlgebra, lambda, err)
		}
		// Ill-conditioned but solved; the grid search decides whether it is usable.
		slog.Debug("Ill-conditioned regularized Gram matrix", "lambda", lambda, "condition", float64(cond))
	}

	coef := make([]float64, k)
	for i := range coef {
		coef[i] = c.AtVec(i)
	}
	floats.Scale(1/floats.Sum(coef), coef)
	return coef, nil
}

// combine returns sum_i c[i] * points[i].
func combine(points [][]float64, c []float64) []float64 {
	x := make([]float64, len(points[0]))
	for i, p := range points {
		floats.AddScaled(x, c[i], p)
	}
	return x
}
