package sim

import "github.com/sirupsen/logrus"

// BatchProcessor applies one batch of insertions per call to Process:
// sample a block, remove it, run the split policy, add the results back,
// then feed the new totals to the metrics accumulator.
type BatchProcessor struct {
	hist      *SizeHistogram
	sampler   *WeightedSampler
	policy    SplitPolicy
	metrics   *Metrics
	batchSize int
	batches   int64
	scratch   []int
}

// NewBatchProcessor wires a processor over the given run state.
func NewBatchProcessor(hist *SizeHistogram, sampler *WeightedSampler, policy SplitPolicy, metrics *Metrics, batchSize int) *BatchProcessor {
	return &BatchProcessor{
		hist:      hist,
		sampler:   sampler,
		policy:    policy,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Process applies a single batch and returns the number of splits it caused.
func (bp *BatchProcessor) Process() int {
	size, pos := bp.sampler.Sample(bp.policy.Mode())
	bp.hist.Decrement(size, 1)

	sizes, splits := bp.policy.Apply(bp.scratch[:0], size, pos, bp.batchSize)
	for _, s := range sizes {
		bp.hist.Increment(s, 1)
	}
	bp.scratch = sizes

	bp.metrics.Observe(bp.hist.TotalKeys(), bp.hist.TotalBlocks(), bp.batchSize, splits)
	bp.batches++

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Tracef("[batch %07d] size=%d pos=%d -> %v (splits=%d)", bp.batches, size, pos, sizes, splits)
	}
	return splits
}

// Batches returns the number of batches processed so far.
func (bp *BatchProcessor) Batches() int64 { return bp.batches }
