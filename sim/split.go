package sim

import "fmt"

// SplitPolicy applies one batch of r keys to a block of oldSize keys and
// reports the resulting block sizes. Every returned size is < capacity.
//
// Implementations may reuse internal scratch space and are therefore not
// safe for concurrent use.
type SplitPolicy interface {
	// Mode is the sampling mode used to pick the target block.
	Mode() SamplingMode
	// Apply appends the resulting sizes to dst and returns it with the
	// number of splits performed. landing is ignored by non-incremental policies.
	Apply(dst []int, oldSize, landing, r int) (sizes []int, splits int)
}

// NewSplitPolicy creates the split policy for method.
// Panics on unrecognized methods; callers validate with ParseMethod first.
func NewSplitPolicy(method Method, capacity int, p float64, rounding Rounding) SplitPolicy {
	if !method.IsValid() {
		panic(fmt.Sprintf("unknown split method %q", string(method)))
	}
	switch method {
	case MethodDeferred:
		return &DeferredSplit{capacity: capacity, p: p, rounding: rounding}
	case MethodImmediately:
		k := splitPoint(p, capacity, rounding)
		return &IncrementalSplit{capacity: capacity, leftSize: func(int) int { return k }}
	case MethodAdaptive:
		k := splitPoint(p, capacity, RoundFloor)
		return &IncrementalSplit{capacity: capacity, leftSize: func(end int) int {
			if end < k {
				return k
			}
			return capacity - k
		}}
	case MethodAdaptive2:
		k := splitPoint(p, capacity, RoundFloor)
		return &IncrementalSplit{capacity: capacity, leftSize: func(end int) int {
			if end > capacity-k {
				return capacity - k
			}
			return k
		}}
	default:
		panic(fmt.Sprintf("unhandled split method %q", string(method)))
	}
}

// DeferredSplit inserts the whole batch first. If the block overflows it is
// split at p, and any child still at or above capacity is split again, until
// every piece fits.
type DeferredSplit struct {
	capacity int
	p        float64
	rounding Rounding
	pending  []int
}

// Mode implements SplitPolicy.
func (d *DeferredSplit) Mode() SamplingMode { return SampleGaps }

// Apply implements SplitPolicy.
func (d *DeferredSplit) Apply(dst []int, oldSize, _ int, r int) ([]int, int) {
	newSize := oldSize + r
	if newSize < d.capacity {
		return append(dst, newSize), 0
	}

	splits := 0
	queue := append(d.pending[:0], newSize)
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		k := splitPoint(d.p, n, d.rounding)
		splits++
		for _, child := range [2]int{k, n - k} {
			if child >= d.capacity {
				queue = append(queue, child)
			} else {
				dst = append(dst, child)
			}
		}
	}
	d.pending = queue[:0]
	return dst, splits
}

// IncrementalSplit places batch keys one at a time starting at the landing
// position. Whenever the current block reaches capacity it is split; the child
// that will receive the next key keeps filling and the other child is final.
//
// leftSize chooses the left child's size for a full block given the
// insertion end position, the index just past the last key placed so far.
type IncrementalSplit struct {
	capacity int
	leftSize func(end int) int
}

// Mode implements SplitPolicy.
func (s *IncrementalSplit) Mode() SamplingMode { return SampleKeys }

// Apply implements SplitPolicy.
func (s *IncrementalSplit) Apply(dst []int, oldSize, landing, r int) ([]int, int) {
	size, pos, remaining := oldSize, landing, r
	splits := 0
	for {
		space := s.capacity - size
		if remaining < space {
			return append(dst, size+remaining), splits
		}

		// fill to capacity and split
		end := pos + space
		remaining -= space
		left := s.leftSize(end)
		right := s.capacity - left
		splits++

		if end <= left {
			dst = append(dst, right)
			size, pos = left, end
		} else {
			dst = append(dst, left)
			size, pos = right, end-left
		}
	}
}
