package sweep

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafsim/leafsim/sim"
)

func TestProgress_ObserveRun(t *testing.T) {
	p := NewProgress()
	p.ObserveRun(&sim.Result{Method: sim.MethodAdaptive, Batches: 40, TotalSplits: 9, FinalFullness: 0.7})
	p.ObserveRun(&sim.Result{Method: sim.MethodAdaptive, Batches: 10, TotalSplits: 1, FinalFullness: 0.8})
	p.ObserveRun(&sim.Result{Method: sim.MethodDeferred, Batches: 5, TotalSplits: 2, FinalFullness: 0.6})

	assert.Equal(t, 2.0, testutil.ToFloat64(p.simulations.WithLabelValues("adaptive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.simulations.WithLabelValues("deferred")))
	assert.Equal(t, 55.0, testutil.ToFloat64(p.batches))
	assert.Equal(t, 12.0, testutil.ToFloat64(p.splits))
	assert.Equal(t, 1, testutil.CollectAndCount(p.finalFullness))
}

func TestProgress_WriteTextfile(t *testing.T) {
	p := NewProgress()
	p.TaskDone()
	path := filepath.Join(t.TempDir(), "leafsim.prom")

	require.NoError(t, p.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "leafsim_sweep_tasks_completed_total 1"), string(data))
	assert.Greater(t, testutil.ToFloat64(p.lastTask), 0.0)
}

func TestProgress_NilIsNoop(t *testing.T) {
	var p *Progress
	p.ObserveRun(&sim.Result{})
	p.TaskDone()
	assert.NoError(t, p.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, p.Registry())
}
