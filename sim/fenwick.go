package sim

import "math/bits"

// fenwick is a binary indexed tree over non-negative int64 weights.
// Index i (0-based) maps to tree slot i+1.
type fenwick struct {
	tree  []int64
	total int64
	step  int // highest power of two <= n
}

func newFenwick(n int) *fenwick {
	step := 0
	if n > 0 {
		step = 1 << (bits.Len(uint(n)) - 1)
	}
	return &fenwick{tree: make([]int64, n+1), step: step}
}

// add adjusts the weight of index i by delta.
func (f *fenwick) add(i int, delta int64) {
	f.total += delta
	for j := i + 1; j < len(f.tree); j += j & -j {
		f.tree[j] += delta
	}
}

// prefix returns the sum of weights at indices [0, i).
func (f *fenwick) prefix(i int) int64 {
	var sum int64
	for j := i; j > 0; j -= j & -j {
		sum += f.tree[j]
	}
	return sum
}

// find locates the index whose cumulative range contains u, for 0 <= u < total.
// It returns the index and u's offset into that index's weight.
func (f *fenwick) find(u int64) (idx int, offset int64) {
	pos := 0
	for step := f.step; step > 0; step >>= 1 {
		next := pos + step
		if next < len(f.tree) && f.tree[next] <= u {
			pos = next
			u -= f.tree[next]
		}
	}
	return pos, u
}
