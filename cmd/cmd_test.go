package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafsim/leafsim/sim"
	"github.com/leafsim/leafsim/sim/sweep"
)

func TestResolveTaskID(t *testing.T) {
	tests := []struct {
		name    string
		flagSet bool
		flag    int
		env     string
		want    int
		wantErr bool
	}{
		{name: "flag wins over env", flagSet: true, flag: 3, env: "7", want: 3},
		{name: "explicit zero flag", flagSet: true, flag: 0, env: "7", want: 0},
		{name: "env fallback", env: "12", want: 12},
		{name: "missing", wantErr: true},
		{name: "malformed env", env: "twelve", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveTaskID(tc.flagSet, tc.flag, tc.env)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), taskIDEnv)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPlanTree(t *testing.T) {
	cfg, err := sweep.GenerateConfig(sweep.Plan{
		B: 20, Method: "adaptive", RMin: 2, RMax: 6, RStep: 2,
		PMin: 0.1, PMax: 0.3, PCount: 3,
		InsertionScale: sweep.ScaleLinear, BaseInsertions: 50,
		SeedCount: 4, SeedMethod: sweep.SeedSequence, MasterSeed: 1, BatchByR: true,
	})
	require.NoError(t, err)

	out := planTree(cfg).String()
	assert.Contains(t, out, "sweep: method=adaptive B=20")
	assert.Contains(t, out, "r: 3 values [2 4 6]")
	assert.Contains(t, out, "seeds: 4")
	assert.Contains(t, out, "tasks: 12 (by-r, 3 runs each)")
	assert.Contains(t, out, "array: 0-11")
	assert.Contains(t, out, "total runs: 36")
}

func TestPrintHistogram(t *testing.T) {
	var buf bytes.Buffer
	printHistogram(&buf, map[int]int64{60: 3, 7: 1})
	out := buf.String()

	assert.Contains(t, strings.ToUpper(out), "SIZE")
	// sizes ascend
	assert.Less(t, strings.Index(out, " 7 "), strings.Index(out, " 60 "))
	assert.Contains(t, out, "0.7500")
	assert.Contains(t, out, "0.2500")
}

func TestWriteResultJSON_OmitsHistogram(t *testing.T) {
	res, err := sim.Simulate(sim.Config{B: 8, R: 2, TotalInsertions: 100, Method: sim.MethodImmediately, P: 0.5, Seed: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeResultJSON(&buf, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "immediately", decoded["method"])
	assert.Equal(t, 8.0, decoded["B"])
	assert.Contains(t, decoded, "final_fullness")
	assert.Contains(t, decoded, "time_avg_fullness")
	assert.NotContains(t, decoded, "size_counts")
	assert.NotNil(t, res.SizeCounts, "caller's result must be left intact")
}

func TestPrintSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	printSummaryTable(&buf, []sweep.Summary{{B: 120, R: 10, Alpha: 10.0 / 120, P: 0.5, FullnessMean: 0.7, NSeeds: 3}})
	out := buf.String()

	assert.Contains(t, out, "0.0833")
	assert.Contains(t, out, "0.700000")
	assert.Contains(t, out, " 3 ")
}

func TestSweepCommands_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sweep.yaml")
	results := filepath.Join(dir, "results")
	metrics := filepath.Join(dir, "leafsim.prom")
	summary := filepath.Join(dir, "summary.csv")

	// GIVEN a generated sweep config
	rootCmd.SetArgs([]string{"sweep", "config", "--B", "8", "--r-min", "1", "--r-max", "3", "--r-step", "2",
		"--p-min", "0.25", "--p-max", "0.5", "--p-count", "2", "--insertion-scale", "fixed",
		"--total-insertions", "200", "--n-seeds", "2", "-o", cfgPath})
	require.NoError(t, rootCmd.Execute())
	cfg, err := sweep.LoadConfig(cfgPath)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.NumTasks())

	// WHEN every task runs and results are collected
	rootCmd.SetArgs([]string{"sweep", "run-all", "--config", cfgPath, "--output-dir", results,
		"--parallel", "2", "--metrics-file", metrics})
	require.NoError(t, rootCmd.Execute())
	rootCmd.SetArgs([]string{"sweep", "collect", "--results-dir", results, "-o", summary})
	require.NoError(t, rootCmd.Execute())

	// THEN one summary row exists per (r, p) with both seeds folded in
	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines[1:] {
		assert.True(t, strings.HasSuffix(line, ",2"), line)
	}
	assert.FileExists(t, metrics)
}
