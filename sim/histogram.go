package sim

import "fmt"

// SizeHistogram counts blocks by occupancy. Index s holds the number of
// blocks currently storing exactly s keys, for s in [0, capacity).
//
// Two cumulative weight trees are kept in step with the counts so the
// sampler can draw in O(log B):
//   - keyWeights: s * count(s), one slot per stored key
//   - gapWeights: (s+1) * count(s), one slot per insertion gap
type SizeHistogram struct {
	counts     []int64
	blocks     int64
	keys       int64
	keyWeights *fenwick
	gapWeights *fenwick
}

// NewSizeHistogram creates an empty histogram for blocks of the given capacity.
func NewSizeHistogram(capacity int) *SizeHistogram {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewSizeHistogram: capacity must be positive, got %d", capacity))
	}
	return &SizeHistogram{
		counts:     make([]int64, capacity),
		keyWeights: newFenwick(capacity),
		gapWeights: newFenwick(capacity),
	}
}

// Capacity returns B, the exclusive upper bound on stored sizes.
func (h *SizeHistogram) Capacity() int { return len(h.counts) }

// Increment records delta additional blocks of the given size.
// Panics if size is outside [0, capacity) or delta is negative.
func (h *SizeHistogram) Increment(size int, delta int64) {
	h.checkSize("Increment", size)
	if delta < 0 {
		panic(fmt.Sprintf("SizeHistogram.Increment: negative delta %d", delta))
	}
	h.apply(size, delta)
}

// Decrement removes delta blocks of the given size.
// Panics on underflow: removing a block that is not there is a defect.
func (h *SizeHistogram) Decrement(size int, delta int64) {
	h.checkSize("Decrement", size)
	if delta < 0 {
		panic(fmt.Sprintf("SizeHistogram.Decrement: negative delta %d", delta))
	}
	if h.counts[size] < delta {
		panic(fmt.Sprintf("SizeHistogram.Decrement: underflow at size %d (count=%d, delta=%d)",
			size, h.counts[size], delta))
	}
	h.apply(size, -delta)
}

func (h *SizeHistogram) apply(size int, delta int64) {
	if delta == 0 {
		return
	}
	h.counts[size] += delta
	h.blocks += delta
	h.keys += int64(size) * delta
	h.keyWeights.add(size, int64(size)*delta)
	h.gapWeights.add(size, int64(size+1)*delta)
}

func (h *SizeHistogram) checkSize(op string, size int) {
	if size < 0 || size >= len(h.counts) {
		panic(fmt.Sprintf("SizeHistogram.%s: size %d outside [0, %d)", op, size, len(h.counts)))
	}
}

// Count returns the number of blocks holding exactly size keys.
func (h *SizeHistogram) Count(size int) int64 {
	if size < 0 || size >= len(h.counts) {
		return 0
	}
	return h.counts[size]
}

// TotalBlocks returns the number of blocks across all sizes.
func (h *SizeHistogram) TotalBlocks() int64 { return h.blocks }

// TotalKeys returns the number of keys stored across all blocks.
func (h *SizeHistogram) TotalKeys() int64 { return h.keys }

// Snapshot returns the populated buckets as a size -> count map.
func (h *SizeHistogram) Snapshot() map[int]int64 {
	out := make(map[int]int64)
	for size, c := range h.counts {
		if c > 0 {
			out[size] = c
		}
	}
	return out
}

// CountAbove returns the number of blocks whose size is strictly greater than threshold.
func (h *SizeHistogram) CountAbove(threshold int) int64 {
	var n int64
	for size := max(threshold+1, 0); size < len(h.counts); size++ {
		n += h.counts[size]
	}
	return n
}
