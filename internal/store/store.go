// Package store persists solver run results next to their traces.
package store

// Store defines the persistence operations for run results.
// Implementations must be safe for concurrent use.
type Store interface {
	// SaveResult atomically saves the result of a run, overwriting any
	// previous result of the same run.
	SaveResult(run string, result *Result) error

	// LoadResult retrieves the result of a run.
	// Returns ErrNotFound if no result exists.
	LoadResult(run string) (*Result, error)

	// ListResults returns metadata for all stored results.
	ListResults() ([]ResultInfo, error)

	// DeleteRun removes the result and the trace of a run.
	// Returns ErrNotFound if the run does not exist.
	DeleteRun(run string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	Run string
}

func (e *NotFoundError) Error() string {
	if e.Run != "" {
		return "run not found: " + e.Run
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
