package sim

import (
	"fmt"
	"math"
)

// Config holds the parameters of one simulation run.
type Config struct {
	B               int      `json:"B" yaml:"B"`                               // block capacity (must be >= 2)
	R               int      `json:"r" yaml:"r"`                               // keys per batch (must be > 0)
	TotalInsertions int64    `json:"total_insertions" yaml:"total_insertions"` // keys to insert; rounded down to a multiple of R
	Method          Method   `json:"method" yaml:"method"`
	P               float64  `json:"p" yaml:"p"` // split ratio in (0, 1)
	Seed            int64    `json:"seed" yaml:"seed"`
	Rounding        Rounding `json:"rounding,omitempty" yaml:"rounding,omitempty"` // "" = floor
}

// Validate checks every parameter before any simulation work begins.
func (c Config) Validate() error {
	if !c.Method.IsValid() {
		return fmt.Errorf("unknown split method %q; valid: %s", string(c.Method), MethodNames())
	}
	if c.B < 2 {
		return fmt.Errorf("B must be at least 2, got %d", c.B)
	}
	if c.R <= 0 {
		return fmt.Errorf("r must be positive, got %d", c.R)
	}
	if c.Method.Incremental() && c.R > c.B {
		return fmt.Errorf("r must not exceed B for method %q, got r=%d B=%d", string(c.Method), c.R, c.B)
	}
	if c.TotalInsertions <= 0 {
		return fmt.Errorf("total_insertions must be positive, got %d", c.TotalInsertions)
	}
	if math.IsNaN(c.P) || c.P <= 0 || c.P >= 1 {
		return fmt.Errorf("p must be in (0, 1), got %v", c.P)
	}
	if !IsValidRounding(string(c.Rounding)) {
		return fmt.Errorf("unknown rounding %q; valid: floor, ceil, nearest", string(c.Rounding))
	}
	return nil
}

// NumBatches returns TotalInsertions / R.
func (c Config) NumBatches() int64 {
	return c.TotalInsertions / int64(c.R)
}

// Alpha returns r / B.
func (c Config) Alpha() float64 {
	return float64(c.R) / float64(c.B)
}
