package accel

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/proxaccel/internal/functions"
)

func TestNewBacktrackingRejectsEta(t *testing.T) {
	for _, eta := range []float64{0, -0.5, 1.0001, 2, math.NaN()} {
		if _, err := NewBacktracking(eta); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("eta=%v: got %v, want ErrInvalidConfig", eta, err)
		}
	}
	for _, eta := range []float64{1e-3, 0.5, 1} {
		if _, err := NewBacktracking(eta); err != nil {
			t.Errorf("eta=%v: unexpected error %v", eta, err)
		}
	}
}

func TestBacktrackingShrinksGeometrically(t *testing.T) {
	// 5*||x - y||^2 has curvature 10: the bound holds iff step <= 0.1.
	f := functions.NewNormL2(5, []float64{1, 2})
	x0 := []float64{0, 0}

	tests := []struct {
		name      string
		eta       float64
		step      float64
		wantSteps int
	}{
		{"halving from 1", 0.5, 1, 4},
		{"eta 0.3 from 1", 0.3, 1, 2},
		{"already small", 0.5, 0.05, 0},
		{"exactly on the bound", 0.5, 0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, err := NewBacktracking(tt.eta)
			if err != nil {
				t.Fatalf("NewBacktracking failed: %v", err)
			}
			// The l1 term is not smooth and must not be asked for a gradient.
			funcs := []functions.Function{functions.NewNormL1(1, nil), f}
			if err := scheme.Pre(funcs, x0); err != nil {
				t.Fatalf("Pre failed: %v", err)
			}
			defer scheme.Post()

			s := newFakeSolver(f, x0, tt.step)
			s.iterate()
			objective := []float64{f.Eval(x0)}

			step, err := scheme.UpdateStep(s, objective, 1)
			if err != nil {
				t.Fatalf("UpdateStep failed: %v", err)
			}

			if s.recomputes != tt.wantSteps {
				t.Errorf("Expected %d shrinks, got %d", tt.wantSteps, s.recomputes)
			}
			want := tt.step * math.Pow(tt.eta, float64(s.recomputes))
			if math.Abs(step-want) > 1e-15*want {
				t.Errorf("Step mismatch: got %g, want %g", step, want)
			}
			if step > 0.1+1e-15 {
				t.Errorf("Step %g violates the curvature bound", step)
			}
			if s.Step() != step {
				t.Errorf("Solver step not updated: got %g, want %g", s.Step(), step)
			}
		})
	}
}

func TestBacktrackingTerminatesWithoutShrinking(t *testing.T) {
	f := functions.NewNormL2(5, []float64{1, 2})
	x0 := []float64{0, 0}

	// eta = 1 never shrinks, so only the iteration cap stops the loop.
	scheme, err := NewBacktracking(1)
	if err != nil {
		t.Fatalf("NewBacktracking failed: %v", err)
	}
	if err := scheme.Pre([]functions.Function{f}, x0); err != nil {
		t.Fatalf("Pre failed: %v", err)
	}

	s := newFakeSolver(f, x0, 1)
	s.iterate()

	step, err := scheme.UpdateStep(s, []float64{f.Eval(x0)}, 1)
	if err != nil {
		t.Fatalf("UpdateStep failed: %v", err)
	}
	if step != 1 {
		t.Errorf("Step mismatch: got %g, want 1", step)
	}
	if s.recomputes != MaxBacktracks {
		t.Errorf("Expected %d recomputes, got %d", MaxBacktracks, s.recomputes)
	}
}

func TestBacktrackingNeedsHistory(t *testing.T) {
	scheme, _ := NewBacktracking(0.5)
	if err := scheme.Pre(nil, []float64{0}); err != nil {
		t.Fatalf("Pre failed: %v", err)
	}
	s := &staticSolver{sol: []float64{1}, step: 1}
	if _, err := scheme.UpdateStep(s, nil, 1); err == nil {
		t.Error("Expected error for empty objective history")
	}
}

func TestBacktrackingSmoothSubsetReleased(t *testing.T) {
	scheme, _ := NewBacktracking(0.5)
	funcs := []functions.Function{functions.NewNormL1(1, nil), functions.Dummy{}}
	if err := scheme.Pre(funcs, []float64{0}); err != nil {
		t.Fatalf("Pre failed: %v", err)
	}

	bt := scheme.step.(*backtrack)
	if len(bt.smooth) != 1 {
		t.Fatalf("Expected 1 smooth function, got %d", len(bt.smooth))
	}

	scheme.Post()
	if bt.smooth != nil {
		t.Error("Smooth subset not released by Post")
	}
}
