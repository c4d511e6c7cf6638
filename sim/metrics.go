// Tracks run-wide fullness statistics for a single simulation.

package sim

// Metrics accumulates batch-weighted occupancy statistics across a run.
// Each post-batch snapshot is weighted by the batch size, so the time
// averages stay correct when batch size varies within a run.
type Metrics struct {
	Capacity int   // B
	Batches  int64 // batches observed
	Inserts  int64 // keys inserted
	Splits   int64 // splits performed

	KeyTally      float64 // Σ total_keys * r
	CapacityTally float64 // Σ B * total_blocks * r
	BlockTally    float64 // Σ total_blocks * r
}

// NewMetrics creates an empty accumulator for blocks of the given capacity.
func NewMetrics(capacity int) *Metrics {
	return &Metrics{Capacity: capacity}
}

// Observe records the global totals after a batch of r keys that caused splits splits.
func (m *Metrics) Observe(totalKeys, totalBlocks int64, r, splits int) {
	w := float64(r)
	m.Batches++
	m.Inserts += int64(r)
	m.Splits += int64(splits)
	m.KeyTally += float64(totalKeys) * w
	m.CapacityTally += float64(int64(m.Capacity)*totalBlocks) * w
	m.BlockTally += float64(totalBlocks) * w
}

// TimeAvgFullness returns Σ(keys·r) / Σ(capacity·r), or 0 before any batch.
func (m *Metrics) TimeAvgFullness() float64 {
	if m.CapacityTally == 0 {
		return 0
	}
	return m.KeyTally / m.CapacityTally
}

// TimeAvgBlocks returns the insert-weighted mean block count, or 0 before any batch.
func (m *Metrics) TimeAvgBlocks() float64 {
	if m.Inserts == 0 {
		return 0
	}
	return m.BlockTally / float64(m.Inserts)
}

// Fullness returns keys / (capacity · blocks) for a histogram snapshot.
func (m *Metrics) Fullness(h *SizeHistogram) float64 {
	blocks := h.TotalBlocks()
	if blocks == 0 {
		return 0
	}
	return float64(h.TotalKeys()) / float64(int64(m.Capacity)*blocks)
}
