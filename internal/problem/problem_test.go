package problem

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/cwbudde/proxaccel/internal/functions"
)

func TestNewDenoise(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Noise = 0

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(p.Funcs) != 2 || len(p.X0) != cfg.Size || len(p.Truth) != cfg.Size {
		t.Fatalf("unexpected shape: %d funcs, len(X0)=%d, len(Truth)=%d", len(p.Funcs), len(p.X0), len(p.Truth))
	}
	if p.Step() != 1 {
		t.Errorf("Step() = %g, want 1", p.Step())
	}

	nonzero := 0
	for _, v := range p.Truth {
		if v != 0 {
			nonzero++
			if a := math.Abs(v); a < 1 || a >= 2 {
				t.Errorf("truth entry %g outside [1, 2) in magnitude", v)
			}
		}
	}
	if nonzero != cfg.Sparsity {
		t.Errorf("truth has %d nonzeros, want %d", nonzero, cfg.Sparsity)
	}

	// without noise the data term vanishes at the truth
	if v := p.Funcs[0].Eval(p.Truth); v != 0 {
		t.Errorf("data term at truth = %g, want 0", v)
	}
}

func TestNewLasso(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = NameLasso
	cfg.Noise = 0

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.Funcs[0].Cap().Has(functions.Grad) || p.Funcs[0].Cap().Has(functions.Prox) {
		t.Errorf("data term caps = %s, want EVAL|GRAD", p.Funcs[0].Cap())
	}
	if p.Lipschitz <= 0 {
		t.Errorf("Lipschitz = %g, want positive", p.Lipschitz)
	}
	if v := p.Funcs[0].Eval(p.Truth); v > 1e-20 {
		t.Errorf("data term at truth = %g, want 0", v)
	}
}

func TestNewIsSeeded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = NameLasso

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff(a.Truth, b.Truth); diff != "" {
		t.Errorf("same seed produced different truths:\n%s", diff)
	}
	if diff := cmp.Diff(a.Lipschitz, b.Lipschitz, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("same seed produced different operators:\n%s", diff)
	}

	cfg.Seed++
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cmp.Equal(a.Truth, c.Truth) {
		t.Error("different seeds produced the same truth")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errors int
	}{
		{"default", func(c *Config) {}, 0},
		{"unknown name", func(c *Config) { c.Name = "sudoku" }, 1},
		{"bad lasso rows", func(c *Config) { c.Name = NameLasso; c.Rows = 0 }, 1},
		{"denoise ignores rows", func(c *Config) { c.Rows = 0 }, 0},
		{"everything wrong", func(c *Config) {
			c.Size = 0
			c.Lambda = -1
			c.Noise = -1
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errors == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidProblem) {
				t.Fatalf("Validate() = %v, want ErrInvalidProblem", err)
			}
			if _, err := New(cfg); err == nil {
				t.Error("New() accepted an invalid config")
			}
		})
	}
}
