package sweep

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/leafsim/leafsim/sim"
)

// Runner executes sweep tasks and writes their result files.
type Runner struct {
	Config    *Config
	OutputDir string
	// Parallel bounds concurrent tasks in RunAll; <= 0 means GOMAXPROCS.
	Parallel int
	// Progress is optional.
	Progress *Progress
}

// RunTask executes every simulation of one task and returns its rows.
// The context is checked between simulations.
func (r *Runner) RunTask(ctx context.Context, taskID int) ([]Row, error) {
	runs, err := r.Config.Runs(taskID)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(runs))
	for _, cfg := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := sim.Simulate(cfg)
		if err != nil {
			return nil, fmt.Errorf("task %d (r=%d p=%v seed=%d): %w", taskID, cfg.R, cfg.P, cfg.Seed, err)
		}
		r.Progress.ObserveRun(res)
		logrus.Debugf("task %d: r=%d p=%.4f seed=%d fullness=%.6f time_avg=%.6f",
			taskID, cfg.R, cfg.P, cfg.Seed, res.FinalFullness, res.TimeAvgFullness)
		rows = append(rows, NewRow(taskID, res))
	}
	return rows, nil
}

// WriteTask runs one task and writes its result file, returning the path.
func (r *Runner) WriteTask(ctx context.Context, taskID int) (string, error) {
	rows, err := r.RunTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	path, err := WriteResultFile(r.OutputDir, taskID, rows)
	if err != nil {
		return "", err
	}
	r.Progress.TaskDone()
	logrus.Infof("task %d: wrote %d rows to %s", taskID, len(rows), path)
	return path, nil
}

// RunAll executes every task of the sweep with bounded parallelism.
// The first failure cancels the remaining tasks.
func (r *Runner) RunAll(ctx context.Context) error {
	limit := r.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	numTasks := r.Config.NumTasks()
	logrus.Infof("running %d tasks (%d runs each, %s) with parallelism %d",
		numTasks, r.Config.RunsPerTask(), r.Config.Batching(), limit)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for id := 0; id < numTasks; id++ {
		id := id // per-iteration copy (go.mod targets go 1.21 loop semantics)
		g.Go(func() error {
			_, err := r.WriteTask(ctx, id)
			return err
		})
	}
	return g.Wait()
}
