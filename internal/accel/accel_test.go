package accel

import (
	"errors"
	"testing"

	"github.com/cwbudde/proxaccel/internal/functions"
	"github.com/google/go-cmp/cmp"
)

func TestDummyIsNoOp(t *testing.T) {
	tests := []struct {
		name  string
		x     []float64
		step  float64
		niter int
	}{
		{"first iteration", []float64{1, 2, 3}, 0.5, 1},
		{"later iteration", []float64{-4, 0, 7.5}, 1e-3, 17},
		{"single coordinate", []float64{42}, 10, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme := NewDummy()
			if err := scheme.Pre([]functions.Function{functions.Dummy{}}, []float64{0, 0, 0}[:len(tt.x)]); err != nil {
				t.Fatalf("Pre failed: %v", err)
			}
			defer scheme.Post()

			s := &staticSolver{sol: append([]float64(nil), tt.x...), step: tt.step}
			objective := []float64{1}

			step, err := scheme.UpdateStep(s, objective, tt.niter)
			if err != nil {
				t.Fatalf("UpdateStep failed: %v", err)
			}
			if step != tt.step {
				t.Errorf("Step mismatch: got %f, want %f", step, tt.step)
			}

			sol, err := scheme.UpdateSol(s, objective, tt.niter)
			if err != nil {
				t.Fatalf("UpdateSol failed: %v", err)
			}
			if diff := cmp.Diff(tt.x, sol); diff != "" {
				t.Errorf("Solution changed (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.x, scheme.snap); diff != "" {
				t.Errorf("Snapshot not tracking solution (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	scheme := NewDummy()
	x0 := []float64{1, 2}
	if err := scheme.Pre(nil, x0); err != nil {
		t.Fatalf("Pre failed: %v", err)
	}
	x0[0] = 99

	if scheme.snap[0] != 1 {
		t.Errorf("Snapshot aliases x0: got %f, want 1", scheme.snap[0])
	}
}

func TestLifecycleOrder(t *testing.T) {
	s := &staticSolver{sol: []float64{1}, step: 1}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Name = name
			scheme, err := New(cfg)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", name, err)
			}

			if _, err := scheme.UpdateStep(s, []float64{1}, 1); !errors.Is(err, ErrNotInitialized) {
				t.Errorf("UpdateStep before Pre: got %v, want ErrNotInitialized", err)
			}
			if _, err := scheme.UpdateSol(s, []float64{1}, 1); !errors.Is(err, ErrNotInitialized) {
				t.Errorf("UpdateSol before Pre: got %v, want ErrNotInitialized", err)
			}

			if err := scheme.Pre([]functions.Function{functions.Dummy{}}, []float64{0}); err != nil {
				t.Fatalf("Pre failed: %v", err)
			}
			if _, err := scheme.UpdateSol(s, []float64{1}, 1); err != nil {
				t.Errorf("UpdateSol after Pre failed: %v", err)
			}
			scheme.Post()

			if _, err := scheme.UpdateSol(s, []float64{1}, 2); !errors.Is(err, ErrNotInitialized) {
				t.Errorf("UpdateSol after Post: got %v, want ErrNotInitialized", err)
			}
		})
	}
}

func TestPreRejectsEmptyPoint(t *testing.T) {
	if err := NewFISTA().Pre(nil, nil); err == nil {
		t.Error("Expected error for empty initial point")
	}
}
