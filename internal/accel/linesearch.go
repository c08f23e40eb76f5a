package accel

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

const (
	// armijoDecrease is the sufficient decrease constant c1.
	armijoDecrease = 1e-4

	// MaxLineSearchIter bounds the interpolation loop of the Armijo search.
	MaxLineSearchIter = 50
)

// armijoSearch looks for a step alpha > 0 with
//
//	phi(alpha) <= phi0 + c1 * alpha * derphi0
//
// starting from alpha0, then trying the minimizer of a quadratic and
// afterwards of successive cubic interpolants of phi. It reports false when no
// acceptable step was found. A quadratic minimizer that is not positive ends
// the search as a failure instead of being evaluated.
func armijoSearch(phi func(alpha float64) float64, phi0, derphi0, alpha0 float64) (float64, bool) {
	accept := func(value, alpha float64) bool {
		return alpha > 0 && !math.IsInf(alpha, 0) && !math.IsNaN(value) &&
			optimize.ArmijoConditionMet(value, phi0, derphi0, alpha, armijoDecrease)
	}

	phiA0 := phi(alpha0)
	if accept(phiA0, alpha0) {
		return alpha0, true
	}

	// Minimizer of the quadratic through phi0, derphi0 and phi(alpha0).
	alpha1 := -derphi0 * alpha0 * alpha0 / 2 / (phiA0 - phi0 - derphi0*alpha0)
	if !(alpha1 > 0) || math.IsInf(alpha1, 0) {
		return 0, false
	}
	phiA1 := phi(alpha1)
	if accept(phiA1, alpha1) {
		return alpha1, true
	}

	for i := 0; alpha1 > 0 && i < MaxLineSearchIter; i++ {
		// Minimizer of the cubic through phi0, derphi0, phi(alpha0), phi(alpha1).
		factor := alpha0 * alpha0 * alpha1 * alpha1 * (alpha1 - alpha0)
		r0 := phiA0 - phi0 - derphi0*alpha0
		r1 := phiA1 - phi0 - derphi0*alpha1
		a := (alpha0*alpha0*r1 - alpha1*alpha1*r0) / factor
		b := (-alpha0*alpha0*alpha0*r1 + alpha1*alpha1*alpha1*r0) / factor

		alpha2 := (-b + math.Sqrt(math.Abs(b*b-3*a*derphi0))) / (3 * a)
		phiA2 := phi(alpha2)
		if accept(phiA2, alpha2) {
			return alpha2, true
		}

		// Fall back to bisection when the cubic step is too close to or too far from alpha1.
		if alpha1-alpha2 > alpha1/2 || 1-alpha2/alpha1 < 0.96 {
			alpha2 = alpha1 / 2
			phiA2 = phi(alpha2)
			if accept(phiA2, alpha2) {
				return alpha2, true
			}
		}

		alpha0, alpha1 = alpha1, alpha2
		phiA0, phiA1 = phiA1, phiA2
	}
	return 0, false
}
