package solver

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stopping criteria reported in Result.Crit.
const (
	CritATol  = "ATOL"
	CritDTol  = "DTOL"
	CritRTol  = "RTOL"
	CritXTol  = "XTOL"
	CritMaxIt = "MAXIT"
)

// Options controls when Solve stops. A zero tolerance disables its criterion.
type Options struct {
	// ATol stops when the objective drops below it
	ATol float64 `mapstructure:"atol"`

	// DTol stops when the objective changes by less than it
	DTol float64 `mapstructure:"dtol"`

	// RTol stops when the relative objective change is below it
	RTol float64 `mapstructure:"rtol"`

	// XTol stops when ||x_n - x_{n-1}|| / sqrt(len(x)) is below it
	XTol float64 `mapstructure:"xtol"`

	// MaxIt is the iteration budget
	MaxIt int `mapstructure:"maxit"`

	// Trace receives one entry per iteration when set
	Trace Recorder `mapstructure:"-"`

	// TraceSol adds the solution to every trace entry
	TraceSol bool `mapstructure:"trace_sol"`
}

// DefaultOptions returns the usual stopping criteria.
func DefaultOptions() Options {
	return Options{
		RTol:  1e-3,
		MaxIt: 200,
	}
}

// stopper checks the stopping criteria after every iteration, in the order
// ATOL, DTOL, RTOL, XTOL, MAXIT.
type stopper struct {
	opts    Options
	lastSol []float64
}

func newStopper(opts Options, x0 []float64) *stopper {
	return &stopper{
		opts:    opts,
		lastSol: append([]float64(nil), x0...),
	}
}

// check returns the name of the satisfied criterion or "".
func (s *stopper) check(objective []float64, sol []float64, niter int) string {
	current := objective[len(objective)-1]
	last := objective[len(objective)-2]

	dist := floats.Distance(sol, s.lastSol, 2) / math.Sqrt(float64(len(sol)))
	copy(s.lastSol, sol)

	absolute := math.Abs(current - last)
	var relative float64
	switch {
	case current != 0:
		relative = absolute / math.Abs(current)
	case last != 0:
		relative = math.Inf(1)
	}

	slog.Debug("Iteration",
		"niter", niter,
		"objective", current,
		"relative", relative,
		"dx", dist,
	)

	switch {
	case s.opts.ATol > 0 && current < s.opts.ATol:
		return CritATol
	case s.opts.DTol > 0 && absolute < s.opts.DTol:
		return CritDTol
	case s.opts.RTol > 0 && relative < s.opts.RTol:
		return CritRTol
	case s.opts.XTol > 0 && dist < s.opts.XTol:
		return CritXTol
	case niter >= s.opts.MaxIt:
		return CritMaxIt
	}
	return ""
}
