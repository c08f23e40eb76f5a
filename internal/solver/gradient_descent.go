package solver

import (
	"fmt"

	"github.com/cwbudde/proxaccel/internal/accel"
	"github.com/cwbudde/proxaccel/internal/functions"
	"gonum.org/v1/gonum/floats"
)

// GradientDescent minimizes a sum of smooth functions:
//
//	sol = base - step * sum_i grad f_i(base)
type GradientDescent struct {
	iterator
	smooth []functions.Function
}

// NewGradientDescent returns a gradient descent solver. A nil scheme runs
// unaccelerated.
func NewGradientDescent(step float64, scheme accel.Scheme) (*GradientDescent, error) {
	it, err := newIterator(step, scheme)
	if err != nil {
		return nil, err
	}
	gd := &GradientDescent{iterator: it}
	gd.update = gd.gradStep
	return gd, nil
}

func (gd *GradientDescent) Name() string { return "gradient_descent" }

func (gd *GradientDescent) Pre(funcs []functions.Function, x0 []float64) error {
	gd.smooth = functions.Smooth(funcs)
	if len(gd.smooth) == 0 {
		return fmt.Errorf("%w: gradient descent needs at least one smooth function", ErrInvalidOptions)
	}
	return gd.pre(funcs, x0)
}

func (gd *GradientDescent) gradStep() {
	grad := functions.SumGrad(gd.smooth, gd.base)
	floats.AddScaledTo(gd.sol, gd.base, -gd.step, grad)
}

func (gd *GradientDescent) Post() {
	gd.iterator.Post()
	gd.smooth = nil
}
