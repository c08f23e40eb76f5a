package store

import (
	"fmt"
	"time"
)

// RunConfig records the settings a result was produced with.
type RunConfig struct {
	Problem string  `json:"problem"`
	Size    int     `json:"size"`
	Seed    int64   `json:"seed"`
	Scheme  string  `json:"scheme"`
	Solver  string  `json:"solver"`
	Step    float64 `json:"step"`
	MaxIt   int     `json:"maxit"`
}

// Result is the persisted outcome of one solver run.
type Result struct {
	// Run is the run ID shared with the trace
	Run string `json:"run"`

	// Sol is the final solution
	Sol []float64 `json:"sol"`

	// Objective holds the objective history, starting at x0
	Objective []float64 `json:"objective"`

	// Iterations is the number of completed iterations
	Iterations int `json:"iterations"`

	// Crit names the stopping criterion
	Crit string `json:"crit"`

	// Elapsed is the solver wall time
	Elapsed time.Duration `json:"elapsed"`

	// Timestamp records when the result was saved
	Timestamp time.Time `json:"timestamp"`

	Config RunConfig `json:"config"`
}

// ResultInfo is the metadata of a result without the vectors.
type ResultInfo struct {
	Run        string    `json:"run"`
	Scheme     string    `json:"scheme"`
	Problem    string    `json:"problem"`
	Iterations int       `json:"iterations"`
	Objective  float64   `json:"objective"`
	Crit       string    `json:"crit"`
	Timestamp  time.Time `json:"timestamp"`
}

// Final returns the last objective value, or 0 for an empty history.
func (r *Result) Final() float64 {
	if len(r.Objective) == 0 {
		return 0
	}
	return r.Objective[len(r.Objective)-1]
}

// ToInfo converts a Result to its metadata.
func (r *Result) ToInfo() ResultInfo {
	return ResultInfo{
		Run:        r.Run,
		Scheme:     r.Config.Scheme,
		Problem:    r.Config.Problem,
		Iterations: r.Iterations,
		Objective:  r.Final(),
		Crit:       r.Crit,
		Timestamp:  r.Timestamp,
	}
}

// Validate checks that the result is complete and consistent.
func (r *Result) Validate() error {
	if r.Run == "" {
		return &ValidationError{Field: "Run", Reason: "cannot be empty"}
	}
	if len(r.Sol) == 0 {
		return &ValidationError{Field: "Sol", Reason: "cannot be empty"}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if len(r.Objective) != r.Iterations+1 {
		return &ValidationError{
			Field:  "Objective",
			Reason: fmt.Sprintf("length mismatch: expected %d values for %d iterations", r.Iterations+1, r.Iterations),
		}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Scheme == "" {
		return &ValidationError{Field: "Config.Scheme", Reason: "cannot be empty"}
	}
	if r.Config.Size > 0 && r.Config.Size != len(r.Sol) {
		return &ValidationError{
			Field:  "Sol",
			Reason: fmt.Sprintf("length mismatch: expected %d entries", r.Config.Size),
		}
	}
	return nil
}

// ValidationError represents an invalid result.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
