// sim/simulator.go
package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Result is the outcome of one simulation run.
type Result struct {
	Method          Method  `json:"method"`
	B               int     `json:"B"`
	R               int     `json:"r"`
	P               float64 `json:"p"`
	Seed            int64   `json:"seed"`
	FinalFullness   float64 `json:"final_fullness"`
	TimeAvgFullness float64 `json:"time_avg_fullness"`
	FinalBlocks     int64   `json:"final_blocks"`
	TotalSplits     int64   `json:"total_splits"`

	TotalInsertions int64   `json:"total_insertions"` // batches * r actually inserted
	Batches         int64   `json:"batches"`
	TimeAvgBlocks   float64 `json:"time_avg_blocks"`
	MeanBlockSize   float64 `json:"mu"`  // keys per block at the end
	HighFraction    float64 `json:"k_H"` // fraction of final blocks with size > B-r

	SizeCounts map[int]int64 `json:"size_counts,omitempty"`
}

// Simulator owns the state of a single run: the histogram, the RNG stream,
// the metrics accumulator and the batch counter. It is discarded once the
// Result has been read.
//
// Thread-safety: NOT thread-safe. Independent runs use independent Simulators.
type Simulator struct {
	Config     Config
	Histogram  *SizeHistogram
	Metrics    *Metrics
	NumBatches int64

	processor *BatchProcessor
}

// NewSimulator validates cfg and prepares a run seeded from cfg.Seed.
// The histogram starts with a single empty block.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed)).ForSubsystem(SubsystemSampler)
	return newSimulator(cfg, rng), nil
}

func newSimulator(cfg Config, rng *rand.Rand) *Simulator {
	hist := NewSizeHistogram(cfg.B)
	hist.Increment(0, 1)
	metrics := NewMetrics(cfg.B)
	policy := NewSplitPolicy(cfg.Method, cfg.B, cfg.P, cfg.Rounding)

	return &Simulator{
		Config:     cfg,
		Histogram:  hist,
		Metrics:    metrics,
		NumBatches: cfg.NumBatches(),
		processor:  NewBatchProcessor(hist, NewWeightedSampler(hist, rng), policy, metrics, cfg.R),
	}
}

// Step applies the next batch. It returns false once all batches have run.
func (s *Simulator) Step() bool {
	if s.processor.Batches() >= s.NumBatches {
		return false
	}
	s.processor.Process()
	return true
}

// Run applies all remaining batches.
func (s *Simulator) Run() {
	logrus.Debugf("Starting %s run: B=%d r=%d p=%v seed=%d batches=%d",
		s.Config.Method, s.Config.B, s.Config.R, s.Config.P, s.Config.Seed, s.NumBatches)
	for s.Step() {
	}
	logrus.Debugf("Finished %s run after %d batches: blocks=%d splits=%d",
		s.Config.Method, s.processor.Batches(), s.Histogram.TotalBlocks(), s.Metrics.Splits)
}

// Result summarizes the run so far.
func (s *Simulator) Result() *Result {
	h := s.Histogram
	blocks := h.TotalBlocks()
	res := &Result{
		Method:          s.Config.Method,
		B:               s.Config.B,
		R:               s.Config.R,
		P:               s.Config.P,
		Seed:            s.Config.Seed,
		FinalFullness:   s.Metrics.Fullness(h),
		TimeAvgFullness: s.Metrics.TimeAvgFullness(),
		FinalBlocks:     blocks,
		TotalSplits:     s.Metrics.Splits,
		TotalInsertions: s.Metrics.Inserts,
		Batches:         s.Metrics.Batches,
		TimeAvgBlocks:   s.Metrics.TimeAvgBlocks(),
		SizeCounts:      h.Snapshot(),
	}
	if blocks > 0 {
		res.MeanBlockSize = float64(h.TotalKeys()) / float64(blocks)
		res.HighFraction = float64(h.CountAbove(s.Config.B-s.Config.R)) / float64(blocks)
	}
	return res
}

// Simulate runs one complete simulation and returns its Result.
func Simulate(cfg Config) (*Result, error) {
	s, err := NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	s.Run()
	return s.Result(), nil
}
