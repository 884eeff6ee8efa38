// Package dice is the engine's randomness: a pluggable Source, the Roller
// that logs every draw, and the small NdS+M expressions used for mishap
// damage and by scripted strategies.
package dice

// Source is the randomness provider for every roll.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Result is one evaluated expression.
type Result struct {
	Expr     string
	Dice     []int
	Modifier int
}

// Total is the sum of the dice plus the modifier.
func (r Result) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}
