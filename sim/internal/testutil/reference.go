// Package testutil provides shared test infrastructure for the leaf-split
// simulator: the reference-run dataset and assertion helpers used across
// sim/ and sim/sweep/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ReferenceDataset represents the structure of testdata/reference_runs.json.
type ReferenceDataset struct {
	Runs []ReferenceRun `json:"runs"`
}

// ReferenceRun is one regression scenario with its expected outcome.
type ReferenceRun struct {
	Name            string  `json:"name"`
	B               int     `json:"B"`
	R               int     `json:"r"`
	TotalInsertions int64   `json:"total_insertions"`
	Method          string  `json:"method"`
	P               float64 `json:"p"`
	Seed            int64   `json:"seed"`

	// Expected final fullness and the absolute tolerance around it.
	FinalFullness       float64 `json:"final_fullness"`
	FinalFullnessAbsTol float64 `json:"final_fullness_abs_tol"`
}

// LoadReferenceDataset loads the reference runs from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadReferenceDataset(t *testing.T) *ReferenceDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "reference_runs.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read reference dataset: %v", err)
	}

	var dataset ReferenceDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse reference dataset: %v", err)
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertSizeHistogram checks that a size → count map describes a valid
// population for capacity b: every size in [0, b) with a positive count.
// It returns the total keys and blocks it holds.
func AssertSizeHistogram(t *testing.T, counts map[int]int64, b int) (keys, blocks int64) {
	t.Helper()
	for size, c := range counts {
		if size < 0 || size >= b {
			t.Errorf("block size %d outside [0, %d)", size, b)
		}
		if c <= 0 {
			t.Errorf("size %d has non-positive count %d", size, c)
		}
		keys += int64(size) * c
		blocks += c
	}
	return keys, blocks
}
