package sim

import (
	"fmt"
	"math"
)

// Rounding controls how p*n is turned into an integer split point.
type Rounding string

const (
	RoundFloor   Rounding = "floor"
	RoundCeil    Rounding = "ceil"
	RoundNearest Rounding = "nearest" // ties to even
)

// DefaultRounding is used when a Config leaves Rounding empty.
const DefaultRounding = RoundFloor

var validRoundings = map[Rounding]bool{"": true, RoundFloor: true, RoundCeil: true, RoundNearest: true}

// IsValidRounding reports whether name is a recognized rounding mode (empty means default).
func IsValidRounding(name string) bool {
	return validRoundings[Rounding(name)]
}

// splitPoint returns the size of the left child when a block of n keys is
// split at ratio p. The result is clamped to [1, n-1] so neither child is empty.
func splitPoint(p float64, n int, mode Rounding) int {
	raw := p * float64(n)
	var k int
	switch mode {
	case "", RoundFloor:
		k = int(math.Floor(raw))
	case RoundCeil:
		k = int(math.Ceil(raw))
	case RoundNearest:
		k = int(math.RoundToEven(raw))
	default:
		panic(fmt.Sprintf("unhandled rounding mode %q", string(mode)))
	}
	return max(1, min(n-1, k))
}
