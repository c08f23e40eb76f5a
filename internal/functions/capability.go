package functions

import "strings"

// Capability is the set of operations an objective function supports.
type Capability uint8

const (
	// Eval marks functions that can be evaluated at a point.
	Eval Capability = 1 << iota
	// Grad marks smooth functions with a gradient.
	Grad
	// Prox marks functions with a proximal operator.
	Prox
)

// Has reports whether every capability in want is present in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

func (c Capability) String() string {
	var parts []string
	if c.Has(Eval) {
		parts = append(parts, "EVAL")
	}
	if c.Has(Grad) {
		parts = append(parts, "GRAD")
	}
	if c.Has(Prox) {
		parts = append(parts, "PROX")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}
