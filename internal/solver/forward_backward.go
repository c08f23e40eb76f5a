package solver

import (
	"fmt"

	"github.com/cwbudde/proxaccel/internal/accel"
	"github.com/cwbudde/proxaccel/internal/functions"
	"gonum.org/v1/gonum/floats"
)

// ForwardBackward minimizes f + g for a smooth f and a proximable g:
//
//	sol = prox_{step g}(base - step * grad f(base))
type ForwardBackward struct {
	iterator
	f, g functions.Function
}

// NewForwardBackward returns a forward-backward splitting solver. A nil scheme
// runs unaccelerated; pass accel.NewFISTA() for FISTA.
func NewForwardBackward(step float64, scheme accel.Scheme) (*ForwardBackward, error) {
	it, err := newIterator(step, scheme)
	if err != nil {
		return nil, err
	}
	fb := &ForwardBackward{iterator: it}
	fb.update = fb.splitStep
	return fb, nil
}

func (fb *ForwardBackward) Name() string { return "forward_backward" }

// Pre accepts one smooth and one proximable function in either order. A single
// function is paired with functions.Dummy.
func (fb *ForwardBackward) Pre(funcs []functions.Function, x0 []float64) error {
	if len(funcs) == 1 {
		funcs = append(funcs[:1:1], functions.Dummy{})
	}
	if len(funcs) != 2 {
		return fmt.Errorf("%w: forward-backward needs exactly two functions, got %d", ErrInvalidOptions, len(funcs))
	}

	a, b := funcs[0], funcs[1]
	switch {
	case a.Cap().Has(functions.Grad) && b.Cap().Has(functions.Prox):
		fb.f, fb.g = a, b
	case b.Cap().Has(functions.Grad) && a.Cap().Has(functions.Prox):
		fb.f, fb.g = b, a
	default:
		return fmt.Errorf("%w: forward-backward needs a smooth and a proximable function, got %s and %s",
			ErrInvalidOptions, a.Cap(), b.Cap())
	}
	return fb.pre(funcs, x0)
}

func (fb *ForwardBackward) splitStep() {
	x := make([]float64, len(fb.base))
	floats.AddScaledTo(x, fb.base, -fb.step, fb.f.Grad(fb.base))
	copy(fb.sol, fb.g.Prox(x, fb.step))
}

func (fb *ForwardBackward) Post() {
	fb.iterator.Post()
	fb.f, fb.g = nil, nil
}
