package sim

import (
	"fmt"
	"math/rand"
)

// SamplingMode selects how a block is drawn for the next batch.
type SamplingMode int

const (
	// SampleGaps weights each block by size+1, the number of insertion gaps it
	// owns. Empty blocks stay selectable.
	SampleGaps SamplingMode = iota
	// SampleKeys weights each block by size, i.e. a key lands uniformly among all
	// stored keys. The landing position is one of the block's size key slots.
	SampleKeys
)

// String returns the mode name used in log lines.
func (m SamplingMode) String() string {
	switch m {
	case SampleGaps:
		return "gaps"
	case SampleKeys:
		return "keys"
	default:
		return fmt.Sprintf("SamplingMode(%d)", int(m))
	}
}

// WeightedSampler draws blocks from a SizeHistogram by inverse CDF over the
// histogram's cumulative weight trees.
//
// Thread-safety: NOT thread-safe; owned by a single Simulator.
type WeightedSampler struct {
	hist *SizeHistogram
	rng  *rand.Rand
}

// NewWeightedSampler binds a sampler to a histogram and an explicit RNG stream.
func NewWeightedSampler(hist *SizeHistogram, rng *rand.Rand) *WeightedSampler {
	return &WeightedSampler{hist: hist, rng: rng}
}

// Sample draws a block size and a landing position inside it.
// For SampleGaps the position lies in [0, size]; for SampleKeys in [0, size).
// When every block is empty, SampleKeys returns (0, 0) without consuming the RNG.
// Panics if the histogram holds no blocks.
func (s *WeightedSampler) Sample(mode SamplingMode) (size, pos int) {
	if s.hist.TotalBlocks() == 0 {
		panic("WeightedSampler.Sample: histogram has no blocks")
	}
	switch mode {
	case SampleGaps:
		return s.draw(s.hist.gapWeights, 1)
	case SampleKeys:
		if s.hist.keyWeights.total == 0 {
			return 0, 0
		}
		return s.draw(s.hist.keyWeights, 0)
	default:
		panic(fmt.Sprintf("WeightedSampler.Sample: unhandled sampling mode %v", mode))
	}
}

// draw picks a bucket proportionally to its weight in tree; extra is the number
// of slots a block owns beyond its size (1 for gaps, 0 for keys).
func (s *WeightedSampler) draw(tree *fenwick, extra int) (size, pos int) {
	u := s.rng.Int63n(tree.total)
	size, offset := tree.find(u)
	slots := int64(size + extra)
	return size, int(offset % slots)
}
