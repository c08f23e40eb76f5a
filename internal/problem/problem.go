// Package problem builds synthetic sparse recovery problems for the CLI.
package problem

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/proxaccel/internal/functions"
)

// Problem names.
const (
	NameDenoise = "denoise"
	NameLasso   = "lasso"
)

// ErrInvalidProblem is returned for unknown names and unusable parameters.
var ErrInvalidProblem = errors.New("invalid problem")

// Names lists the available problems.
func Names() []string {
	return []string{NameDenoise, NameLasso}
}

// Config holds the parameters of a synthetic problem.
type Config struct {
	Name string `mapstructure:"name"`

	// Size is the dimension of the unknown
	Size int `mapstructure:"size"`

	// Rows is the number of measurements (lasso only)
	Rows int `mapstructure:"rows"`

	// Sparsity is the number of nonzero entries of the ground truth
	Sparsity int `mapstructure:"sparsity"`

	// Lambda weights the l1 penalty
	Lambda float64 `mapstructure:"lambda"`

	// Noise is the standard deviation of the measurement noise
	Noise float64 `mapstructure:"noise"`

	Seed int64 `mapstructure:"seed"`
}

// DefaultConfig returns a small denoising problem.
func DefaultConfig() Config {
	return Config{
		Name:     NameDenoise,
		Size:     100,
		Rows:     50,
		Sparsity: 10,
		Lambda:   0.1,
		Noise:    0.05,
		Seed:     1,
	}
}

// Validate checks the parameters used by the named problem.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Size < 1 {
		result = multierror.Append(result, fmt.Errorf("size must be positive, got %d", c.Size))
	}
	if c.Sparsity < 0 || c.Sparsity > c.Size {
		result = multierror.Append(result, fmt.Errorf("sparsity must be in [0, size], got %d", c.Sparsity))
	}
	if c.Lambda < 0 {
		result = multierror.Append(result, fmt.Errorf("lambda must be non-negative, got %g", c.Lambda))
	}
	if c.Noise < 0 {
		result = multierror.Append(result, fmt.Errorf("noise must be non-negative, got %g", c.Noise))
	}
	switch c.Name {
	case NameDenoise:
	case NameLasso:
		if c.Rows < 1 {
			result = multierror.Append(result, fmt.Errorf("rows must be positive, got %d", c.Rows))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown problem %q", c.Name))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProblem, err)
	}
	return nil
}

// Problem is a composite objective with a known ground truth.
type Problem struct {
	Name  string
	Funcs []functions.Function
	X0    []float64
	Truth []float64

	// Lipschitz is the Lipschitz constant of the smooth term's gradient
	Lipschitz float64
}

// Step returns 1/L, the largest step that needs no backtracking.
func (p *Problem) Step() float64 {
	return 1 / p.Lipschitz
}

// New builds the named problem.
func New(cfg Config) (*Problem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	truth := sparseSignal(rng, cfg.Size, cfg.Sparsity)

	switch cfg.Name {
	case NameLasso:
		return lasso(rng, cfg, truth)
	default:
		return denoise(rng, cfg, truth), nil
	}
}

// denoise is 0.5 ||x - y||^2 + lambda ||x||_1 with y a noisy copy of the truth.
func denoise(rng *rand.Rand, cfg Config, truth []float64) *Problem {
	y := append([]float64(nil), truth...)
	addNoise(rng, y, cfg.Noise)

	return &Problem{
		Name: NameDenoise,
		Funcs: []functions.Function{
			functions.NewNormL2(0.5, y),
			functions.NewNormL1(cfg.Lambda, nil),
		},
		X0:        make([]float64, cfg.Size),
		Truth:     truth,
		Lipschitz: 1,
	}
}

// lasso is 0.5 ||A x - y||^2 + lambda ||x||_1 with a Gaussian A.
func lasso(rng *rand.Rand, cfg Config, truth []float64) (*Problem, error) {
	a := mat.NewDense(cfg.Rows, cfg.Size, nil)
	scale := 1 / math.Sqrt(float64(cfg.Rows))
	for i := 0; i < cfg.Rows; i++ {
		row := a.RawRowView(i)
		for j := range row {
			row[j] = rng.NormFloat64() * scale
		}
	}

	y := make([]float64, cfg.Rows)
	mat.NewVecDense(cfg.Rows, y).MulVec(a, mat.NewVecDense(cfg.Size, truth))
	addNoise(rng, y, cfg.Noise)

	sigma, err := spectralNorm(a)
	if err != nil {
		return nil, err
	}

	return &Problem{
		Name: NameLasso,
		Funcs: []functions.Function{
			&functions.NormL2{Lambda: 0.5, A: a, Y: y},
			functions.NewNormL1(cfg.Lambda, nil),
		},
		X0:        make([]float64, cfg.Size),
		Truth:     truth,
		Lipschitz: sigma * sigma,
	}, nil
}

func spectralNorm(a *mat.Dense) (float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDNone); !ok {
		return 0, fmt.Errorf("%w: singular value decomposition did not converge", ErrInvalidProblem)
	}
	return svd.Values(nil)[0], nil
}

// sparseSignal returns a vector with k entries of magnitude in [1, 2) and
// random signs at random positions.
func sparseSignal(rng *rand.Rand, n, k int) []float64 {
	x := make([]float64, n)
	for _, i := range rng.Perm(n)[:k] {
		v := 1 + rng.Float64()
		if rng.Intn(2) == 0 {
			v = -v
		}
		x[i] = v
	}
	return x
}

func addNoise(rng *rand.Rand, x []float64, sigma float64) {
	if sigma == 0 {
		return
	}
	noise := make([]float64, len(x))
	for i := range noise {
		noise[i] = rng.NormFloat64()
	}
	floats.AddScaled(x, sigma, noise)
}
