package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPoint(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		n    int
		mode Rounding
		want int
	}{
		{"floor", 0.5, 5, RoundFloor, 2},
		{"empty means floor", 0.5, 5, "", 2},
		{"ceil", 0.5, 5, RoundCeil, 3},
		{"nearest tie to even low", 0.5, 5, RoundNearest, 2},
		{"nearest tie to even high", 0.25, 6, RoundNearest, 2},
		{"nearest up", 0.4, 9, RoundNearest, 4},
		{"clamped to one", 0.01, 10, RoundFloor, 1},
		{"clamped below n", 0.99, 10, RoundCeil, 9},
		{"two keys", 0.9, 2, RoundNearest, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, splitPoint(tc.p, tc.n, tc.mode))
		})
	}
}

func TestSplitPoint_UnknownModePanics(t *testing.T) {
	assert.Panics(t, func() { splitPoint(0.5, 10, "banker") })
}

func TestIsValidRounding(t *testing.T) {
	for _, name := range []string{"", "floor", "ceil", "nearest"} {
		assert.True(t, IsValidRounding(name), name)
	}
	assert.False(t, IsValidRounding("round"))
}
