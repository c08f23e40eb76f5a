package functions

import "gonum.org/v1/gonum/floats"

// Function is a term of the objective being minimized.
// Callers must check Cap before calling Grad or Prox.
type Function interface {
	// Cap returns the operations this function supports
	Cap() Capability

	// Eval returns the function value at x
	Eval(x []float64) float64

	// Grad returns the gradient at x in a freshly allocated slice
	Grad(x []float64) []float64

	// Prox returns argmin_z 0.5*||z - x||^2 + step*f(z) in a freshly allocated slice
	Prox(x []float64, step float64) []float64
}

// Unsupported provides panicking Grad and Prox methods for functions that do not
// advertise those capabilities. Embed it and override what the function supports.
type Unsupported struct{}

// Grad panics; smooth functions must override it.
func (Unsupported) Grad(x []float64) []float64 {
	panic("functions: Grad must be overridden by functions advertising GRAD")
}

// Prox panics; proximable functions must override it.
func (Unsupported) Prox(x []float64, step float64) []float64 {
	panic("functions: Prox must be overridden by functions advertising PROX")
}

// Filter returns the functions advertising every capability in want, in order.
func Filter(funcs []Function, want Capability) []Function {
	var out []Function
	for _, f := range funcs {
		if f.Cap().Has(want) {
			out = append(out, f)
		}
	}
	return out
}

// Smooth returns the gradient-capable subset of funcs.
func Smooth(funcs []Function) []Function {
	return Filter(funcs, Grad)
}

// Sum evaluates every function at x and returns the total.
func Sum(funcs []Function, x []float64) float64 {
	var total float64
	for _, f := range funcs {
		total += f.Eval(x)
	}
	return total
}

// SumGrad returns the sum of the gradients of funcs at x.
// All functions must advertise GRAD.
func SumGrad(funcs []Function, x []float64) []float64 {
	grad := make([]float64, len(x))
	for _, f := range funcs {
		floats.Add(grad, f.Grad(x))
	}
	return grad
}
