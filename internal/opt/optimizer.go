// Package opt searches solver parameters with derivative-free optimizers.
package opt

// Optimizer defines a derivative-free minimization algorithm.
type Optimizer interface {
	// Run minimizes eval over the box [lower, upper] of dimension dim and
	// returns the best parameters and their cost.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error)
}
