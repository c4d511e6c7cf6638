package sweep

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallSweep() *Config {
	return &Config{
		B:               8,
		Method:          "deferred",
		RList:           []int{1, 3},
		PList:           []float64{0.25, 0.5},
		Seeds:           []int64{1, 2},
		InsertionScale:  ScaleFixed,
		BaseInsertions:  DefaultBaseInsertions,
		TotalInsertions: 300,
		Rounding:        "floor",
	}
}

func TestRunner_RunTask(t *testing.T) {
	r := &Runner{Config: smallSweep()}

	rows, err := r.RunTask(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for i, row := range rows {
		assert.Equal(t, 3, row.TaskID)
		assert.Equal(t, 3, row.R)
		assert.Equal(t, int64(2), row.Seed)
		assert.Equal(t, r.Config.PList[i], row.P)
		assert.InDelta(t, 3.0/8, row.Alpha, 1e-12)
		assert.Greater(t, row.Fullness, 0.0)
		assert.LessOrEqual(t, row.Fullness, 1.0)
	}

	again, err := r.RunTask(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestRunner_RunTaskCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Runner{Config: smallSweep()}).RunTask(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_RunTaskOutOfRange(t *testing.T) {
	_, err := (&Runner{Config: smallSweep()}).RunTask(context.Background(), 4)
	assert.Error(t, err)
}

func TestRunner_RunAll(t *testing.T) {
	cfg := smallSweep()
	progress := NewProgress()
	r := &Runner{Config: cfg, OutputDir: t.TempDir(), Parallel: 2, Progress: progress}

	require.NoError(t, r.RunAll(context.Background()))

	rows, err := Collect(r.OutputDir)
	require.NoError(t, err)
	assert.Len(t, rows, cfg.NumTasks()*cfg.RunsPerTask())
	for i, row := range rows {
		assert.Equal(t, i/2, row.TaskID)
	}

	// Parallel execution matches a sequential task run.
	seq, err := (&Runner{Config: cfg}).RunTask(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, seq, rows[4:6])

	assert.Equal(t, 4.0, testutil.ToFloat64(progress.tasksCompleted))
	assert.Equal(t, 8.0, testutil.ToFloat64(progress.simulations.WithLabelValues("deferred")))
	assert.Equal(t, float64(2*100+2*100+2*300+2*300), testutil.ToFloat64(progress.batches))
}

func TestRunner_RunAllStopsOnFailure(t *testing.T) {
	cfg := smallSweep()
	cfg.PList = []float64{0.5, 1.5}
	r := &Runner{Config: cfg, OutputDir: t.TempDir(), Parallel: 1}

	err := r.RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p=1.5")
}
