package functions

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dummy is the zero function. It lets solvers that expect two terms run on one.
type Dummy struct{}

func (Dummy) Cap() Capability { return Eval | Grad | Prox }

func (Dummy) Eval(x []float64) float64 { return 0 }

func (Dummy) Grad(x []float64) []float64 { return make([]float64, len(x)) }

func (Dummy) Prox(x []float64, step float64) []float64 {
	return append([]float64(nil), x...)
}

// NormL2 is the squared Euclidean fidelity term lambda * ||A x - y||^2.
// A nil A means the identity.
type NormL2 struct {
	Lambda float64
	A      *mat.Dense
	Y      []float64
}

// NewNormL2 returns lambda * ||x - y||^2.
func NewNormL2(lambda float64, y []float64) *NormL2 {
	return &NormL2{Lambda: lambda, Y: append([]float64(nil), y...)}
}

func (f *NormL2) Cap() Capability {
	// The prox is only available in closed form without an operator.
	if f.A == nil {
		return Eval | Grad | Prox
	}
	return Eval | Grad
}

func (f *NormL2) residual(x []float64) []float64 {
	var r []float64
	if f.A == nil {
		r = append([]float64(nil), x...)
	} else {
		rows, _ := f.A.Dims()
		r = make([]float64, rows)
		mat.NewVecDense(rows, r).MulVec(f.A, mat.NewVecDense(len(x), x))
	}
	if f.Y != nil {
		floats.Sub(r, f.Y)
	}
	return r
}

func (f *NormL2) Eval(x []float64) float64 {
	r := f.residual(x)
	return f.Lambda * floats.Dot(r, r)
}

func (f *NormL2) Grad(x []float64) []float64 {
	r := f.residual(x)
	if f.A == nil {
		floats.Scale(2*f.Lambda, r)
		return r
	}
	g := make([]float64, len(x))
	mat.NewVecDense(len(x), g).MulVec(f.A.T(), mat.NewVecDense(len(r), r))
	floats.Scale(2*f.Lambda, g)
	return g
}

func (f *NormL2) Prox(x []float64, step float64) []float64 {
	if f.A != nil {
		return Unsupported{}.Prox(x, step)
	}
	// (x + 2*step*lambda*y) / (1 + 2*step*lambda)
	w := 2 * step * f.Lambda
	z := append([]float64(nil), x...)
	if f.Y != nil {
		floats.AddScaled(z, w, f.Y)
	}
	floats.Scale(1/(1+w), z)
	return z
}

// NormL1 is lambda * ||x - y||_1. It is not differentiable.
type NormL1 struct {
	Unsupported
	Lambda float64
	Y      []float64
}

// NewNormL1 returns lambda * ||x - y||_1; a nil y means the origin.
func NewNormL1(lambda float64, y []float64) *NormL1 {
	return &NormL1{Lambda: lambda, Y: append([]float64(nil), y...)}
}

func (f *NormL1) Cap() Capability { return Eval | Prox }

func (f *NormL1) Eval(x []float64) float64 {
	var sum float64
	for i, v := range x {
		if f.Y != nil {
			v -= f.Y[i]
		}
		sum += math.Abs(v)
	}
	return f.Lambda * sum
}

// Prox applies soft thresholding around y with threshold step*lambda.
func (f *NormL1) Prox(x []float64, step float64) []float64 {
	gamma := step * f.Lambda
	z := make([]float64, len(x))
	for i, v := range x {
		var c float64
		if f.Y != nil {
			c = f.Y[i]
		}
		d := v - c
		z[i] = c + math.Copysign(math.Max(math.Abs(d)-gamma, 0), d)
	}
	return z
}
