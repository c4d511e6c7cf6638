package sweep

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leafsim/leafsim/sim"
)

// Progress tracks sweep throughput as Prometheus metrics on a private
// registry. A nil *Progress is valid and records nothing.
type Progress struct {
	registry *prometheus.Registry

	tasksCompleted prometheus.Counter
	simulations    *prometheus.CounterVec
	batches        prometheus.Counter
	splits         prometheus.Counter
	finalFullness  prometheus.Histogram
	lastTask       prometheus.Gauge
}

// NewProgress creates and registers the sweep metrics.
func NewProgress() *Progress {
	p := &Progress{
		registry: prometheus.NewRegistry(),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafsim_sweep_tasks_completed_total",
			Help: "Sweep tasks whose results were written",
		}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leafsim_simulations_total",
			Help: "Simulation runs completed",
		}, []string{"method"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafsim_batches_total",
			Help: "Batches processed across all runs",
		}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leafsim_splits_total",
			Help: "Block splits performed across all runs",
		}),
		finalFullness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leafsim_final_fullness",
			Help:    "Final fullness of completed runs",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 10),
		}),
		lastTask: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leafsim_last_task_completion_timestamp_seconds",
			Help: "Unix time the most recent task finished",
		}),
	}
	p.registry.MustRegister(
		p.tasksCompleted,
		p.simulations,
		p.batches,
		p.splits,
		p.finalFullness,
		p.lastTask,
	)
	return p
}

// Registry exposes the underlying registry (for HTTP exposition or tests).
func (p *Progress) Registry() *prometheus.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

// ObserveRun records one finished simulation.
func (p *Progress) ObserveRun(res *sim.Result) {
	if p == nil {
		return
	}
	p.simulations.WithLabelValues(string(res.Method)).Inc()
	p.batches.Add(float64(res.Batches))
	p.splits.Add(float64(res.TotalSplits))
	p.finalFullness.Observe(res.FinalFullness)
}

// TaskDone records a completed task.
func (p *Progress) TaskDone() {
	if p == nil {
		return
	}
	p.tasksCompleted.Inc()
	p.lastTask.Set(float64(time.Now().Unix()))
}

// WriteTextfile dumps the current metrics in text exposition format,
// suitable for the node_exporter textfile collector.
func (p *Progress) WriteTextfile(path string) error {
	if p == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
