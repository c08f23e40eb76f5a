package solver

import "testing"

func TestStopperCriteria(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		objective []float64
		sol       []float64
		niter     int
		want      string
	}{
		{
			name:      "absolute",
			opts:      Options{ATol: 1e-3, MaxIt: 10},
			objective: []float64{1, 1e-4},
			sol:       []float64{1, 1},
			niter:     1,
			want:      CritATol,
		},
		{
			name:      "absolute takes precedence",
			opts:      Options{ATol: 1e-3, DTol: 10, MaxIt: 1},
			objective: []float64{1, 1e-4},
			sol:       []float64{1, 1},
			niter:     1,
			want:      CritATol,
		},
		{
			name:      "difference",
			opts:      Options{DTol: 0.1, MaxIt: 10},
			objective: []float64{5, 4.95},
			sol:       []float64{1, 1},
			niter:     1,
			want:      CritDTol,
		},
		{
			name:      "relative",
			opts:      Options{RTol: 1e-2, MaxIt: 10},
			objective: []float64{100, 99.5},
			sol:       []float64{1, 1},
			niter:     1,
			want:      CritRTol,
		},
		{
			name:      "relative with zero objective",
			opts:      Options{RTol: 1e-2, MaxIt: 10},
			objective: []float64{0, 0},
			sol:       []float64{1, 1},
			niter:     1,
			want:      CritRTol,
		},
		{
			name:      "relative drop to zero",
			opts:      Options{RTol: 1e-2, MaxIt: 10},
			objective: []float64{1, 0},
			sol:       []float64{1, 1},
			niter:     1,
			want:      "",
		},
		{
			name:      "solution change",
			opts:      Options{XTol: 1e-2, MaxIt: 10},
			objective: []float64{10, 5},
			sol:       []float64{1e-3, 1e-3},
			niter:     1,
			want:      CritXTol,
		},
		{
			name:      "iteration budget",
			opts:      Options{MaxIt: 3},
			objective: []float64{10, 5},
			sol:       []float64{1, 1},
			niter:     3,
			want:      CritMaxIt,
		},
		{
			name:      "keep going",
			opts:      Options{ATol: 1e-3, DTol: 1e-3, RTol: 1e-3, XTol: 1e-3, MaxIt: 10},
			objective: []float64{10, 5},
			sol:       []float64{1, 1},
			niter:     1,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStopper(tt.opts, []float64{0, 0})
			if got := s.check(tt.objective, tt.sol, tt.niter); got != tt.want {
				t.Errorf("check() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStopperTracksLastSolution(t *testing.T) {
	s := newStopper(Options{XTol: 0.5, MaxIt: 10}, []float64{0})

	if got := s.check([]float64{3, 2}, []float64{1}, 1); got != "" {
		t.Errorf("first check = %q, want none", got)
	}
	// distance is measured from the previous solution, not x0
	if got := s.check([]float64{3, 2, 1}, []float64{1.1}, 2); got != CritXTol {
		t.Errorf("second check = %q, want %q", got, CritXTol)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.RTol != 1e-3 || opts.MaxIt != 200 {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
	if opts.ATol != 0 || opts.DTol != 0 || opts.XTol != 0 {
		t.Errorf("DefaultOptions() enables unexpected criteria: %+v", opts)
	}
}
