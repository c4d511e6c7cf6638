// Package sim provides the leaf-split simulation engine.
//
// # Reading Guide
//
// Start with these files to understand a run:
//   - histogram.go: SizeHistogram, the block population keyed by occupancy
//   - split.go: the four split policies and how one batch reshapes a block
//   - simulator.go: the run loop, Simulate and Result
//
// # Model
//
// The engine never materializes individual blocks. It keeps a count of blocks
// per occupancy level in [0, B) and, per batch:
//  1. draws a block, weighted by its keys or insertion gaps (sampler.go)
//  2. removes it from the histogram
//  3. applies the batch under the active SplitPolicy, which may split the
//     block one or more times
//  4. adds the resulting blocks back and updates Metrics (metrics.go)
//
// Memory is O(B) regardless of how many blocks or batches are simulated.
//
// # Determinism
//
// Each run draws from one *rand.Rand seeded once from Config.Seed (rng.go).
// Identical Configs produce identical Results. There is no shared state
// between runs; parallel sweeps live in sim/sweep.
package sim
