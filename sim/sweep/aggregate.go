package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds per-(B, r, alpha, p) statistics across seeds.
type Summary struct {
	B     int
	R     int
	Alpha float64
	P     float64

	FullnessMean, FullnessStd, FullnessMin, FullnessMax float64

	TimeAvgFullnessMean, TimeAvgFullnessStd, TimeAvgFullnessMin, TimeAvgFullnessMax float64

	NSeeds int
}

var summaryColumns = []string{
	"B", "r", "alpha", "p",
	"fullness_mean", "fullness_std", "fullness_min", "fullness_max",
	"time_avg_fullness_mean", "time_avg_fullness_std", "time_avg_fullness_min", "time_avg_fullness_max",
	"n_seeds",
}

type groupKey struct {
	b, r     int
	alpha, p float64
}

// Aggregate groups rows by (B, r, alpha, p) and summarizes each group.
// Standard deviations are sample (n-1) values, and 0 for single-seed groups.
// Output is sorted by B, r, alpha, p.
func Aggregate(rows []Row) []Summary {
	groups := make(map[groupKey][]Row)
	for _, row := range rows {
		key := groupKey{b: row.B, r: row.R, alpha: row.Alpha, p: row.P}
		groups[key] = append(groups[key], row)
	}

	summaries := make([]Summary, 0, len(groups))
	for key, members := range groups {
		fullness := make([]float64, len(members))
		timeAvg := make([]float64, len(members))
		for i, m := range members {
			fullness[i] = m.Fullness
			timeAvg[i] = m.TimeAvgFullness
		}
		s := Summary{B: key.b, R: key.r, Alpha: key.alpha, P: key.p, NSeeds: len(members)}
		s.FullnessMean, s.FullnessStd = meanStd(fullness)
		s.FullnessMin, s.FullnessMax = floats.Min(fullness), floats.Max(fullness)
		s.TimeAvgFullnessMean, s.TimeAvgFullnessStd = meanStd(timeAvg)
		s.TimeAvgFullnessMin, s.TimeAvgFullnessMax = floats.Min(timeAvg), floats.Max(timeAvg)
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.B != b.B {
			return a.B < b.B
		}
		if a.R != b.R {
			return a.R < b.R
		}
		if a.Alpha != b.Alpha {
			return a.Alpha < b.Alpha
		}
		return a.P < b.P
	})
	return summaries
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// WriteSummaries writes summaries as CSV with a header line.
func WriteSummaries(w io.Writer, summaries []Summary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(summaryColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, s := range summaries {
		record := []string{
			strconv.Itoa(s.B),
			strconv.Itoa(s.R),
			formatFloat(s.Alpha),
			formatFloat(s.P),
			formatFloat(s.FullnessMean),
			formatFloat(s.FullnessStd),
			formatFloat(s.FullnessMin),
			formatFloat(s.FullnessMax),
			formatFloat(s.TimeAvgFullnessMean),
			formatFloat(s.TimeAvgFullnessStd),
			formatFloat(s.TimeAvgFullnessMin),
			formatFloat(s.TimeAvgFullnessMax),
			strconv.Itoa(s.NSeeds),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummariesFile writes summaries to path.
func WriteSummariesFile(path string, summaries []Summary) error {
	return writeFile(path, func(w io.Writer) error { return WriteSummaries(w, summaries) })
}

// WriteRowsFile writes rows to path.
func WriteRowsFile(path string, rows []Row) error {
	return writeFile(path, func(w io.Writer) error { return WriteRows(w, rows) })
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// CollectFile gathers every per-task result in dir into one CSV at output.
// With aggregate set, the output holds per-group summaries instead of raw rows.
// It returns the number of records written.
func CollectFile(dir, output string, aggregate bool) (int, error) {
	rows, err := Collect(dir)
	if err != nil {
		return 0, err
	}
	if !aggregate {
		return len(rows), WriteRowsFile(output, rows)
	}
	summaries := Aggregate(rows)
	return len(summaries), WriteSummariesFile(output, summaries)
}

// AggregateFile summarizes an already-collected raw CSV.
func AggregateFile(input, output string) ([]Summary, error) {
	rows, err := ReadRowsFile(input)
	if err != nil {
		return nil, err
	}
	summaries := Aggregate(rows)
	if err := WriteSummariesFile(output, summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}
