package sweep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/leafsim/leafsim/sim"
)

// Row is one per-run output record.
type Row struct {
	TaskID          int
	B               int
	R               int
	Alpha           float64 // r / B
	P               float64
	Seed            int64
	Fullness        float64
	TimeAvgFullness float64
}

// CSV column headers for per-run result files.
var rowColumns = []string{"task_id", "B", "r", "alpha", "p", "seed", "fullness", "time_avg_fullness"}

// NewRow builds the output record for one finished run.
func NewRow(taskID int, res *sim.Result) Row {
	return Row{
		TaskID:          taskID,
		B:               res.B,
		R:               res.R,
		Alpha:           float64(res.R) / float64(res.B),
		P:               res.P,
		Seed:            res.Seed,
		Fullness:        res.FinalFullness,
		TimeAvgFullness: res.TimeAvgFullness,
	}
}

// ResultFileName returns the per-task result file name, e.g. result_000042.csv.
func ResultFileName(taskID int) string {
	return fmt.Sprintf("result_%06d.csv", taskID)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteRows writes rows as CSV with a header line.
// Floats use the shortest representation that round-trips exactly.
func WriteRows(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(rowColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.TaskID),
			strconv.Itoa(r.B),
			strconv.Itoa(r.R),
			formatFloat(r.Alpha),
			formatFloat(r.P),
			strconv.FormatInt(r.Seed, 10),
			formatFloat(r.Fullness),
			formatFloat(r.TimeAvgFullness),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRows parses a per-run CSV. Columns are located by header name.
// task_id and seed default to 0 when absent; a missing time_avg_fullness
// column (deferred-only minimal output) falls back to fullness.
func ReadRows(rd io.Reader) ([]Row, error) {
	reader := csv.NewReader(rd)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"B", "r", "alpha", "p", "fullness"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV missing required column %q", required)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}
		p := fieldParser{record: record, col: col, line: line}
		row := Row{
			TaskID:   p.int("task_id"),
			B:        p.int("B"),
			R:        p.int("r"),
			Alpha:    p.float("alpha"),
			P:        p.float("p"),
			Seed:     int64(p.int("seed")),
			Fullness: p.float("fullness"),
		}
		if _, ok := col["time_avg_fullness"]; ok {
			row.TimeAvgFullness = p.float("time_avg_fullness")
		} else {
			row.TimeAvgFullness = row.Fullness
		}
		if p.err != nil {
			return nil, p.err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// fieldParser converts named CSV fields, keeping the first error.
type fieldParser struct {
	record []string
	col    map[string]int
	line   int
	err    error
}

func (p *fieldParser) field(name string) (string, bool) {
	i, ok := p.col[name]
	if !ok || i >= len(p.record) || p.record[i] == "" {
		return "", false
	}
	return p.record[i], true
}

func (p *fieldParser) int(name string) int {
	s, ok := p.field(name)
	if !ok || p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("line %d: column %s: %w", p.line, name, err)
	}
	return v
}

func (p *fieldParser) float(name string) float64 {
	s, ok := p.field(name)
	if !ok || p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: column %s: %w", p.line, name, err)
	}
	return v
}

// WriteResultFile writes rows to dir/result_<task>.csv, creating dir if needed.
func WriteResultFile(dir string, taskID int, rows []Row) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, ResultFileName(taskID))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating result file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// ReadRowsFile reads a per-run CSV from disk.
func ReadRowsFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	rows, err := ReadRows(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// Collect reads every result_*.csv in dir, in file name order.
func Collect(dir string) ([]Row, error) {
	files, err := filepath.Glob(filepath.Join(dir, "result_*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing result files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no result files found in %s", dir)
	}
	sort.Strings(files)

	var rows []Row
	for _, f := range files {
		fileRows, err := ReadRowsFile(f)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}
