package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/leafsim/leafsim/sim/sweep"
)

// taskIDEnv is read by `sweep run` when --task-id is not given.
const taskIDEnv = "SLURM_ARRAY_TASK_ID"

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Plan and execute parameter sweeps",
	Long: "Parameter sweeps cross one split method and capacity with lists of batch sizes, " +
		"split ratios and seeds. Each task writes result_<task>.csv; collect and aggregate merge them.",
}

// --- leafsim sweep config ---

var (
	plan       sweep.Plan
	configPath string
)

var sweepConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate a sweep config file from parameter ranges",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := sweep.GenerateConfig(plan)
		if err != nil {
			logrus.Fatalf("Config generation failed: %v", err)
		}
		if err := cfg.Save(configPath); err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Println(planTree(cfg).String())
		logrus.Infof("Wrote %s", configPath)
	},
}

// planTree summarizes a sweep config: its parameters and how tasks are laid out.
func planTree(cfg *sweep.Config) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("sweep: method=%s B=%d", cfg.Method, cfg.B))

	params := tree.AddBranch("parameters")
	params.AddNode(fmt.Sprintf("r: %d values %v", len(cfg.RList), cfg.RList))
	params.AddNode(fmt.Sprintf("p: %d values %v", len(cfg.PList), cfg.PList))
	params.AddNode(fmt.Sprintf("seeds: %d", len(cfg.Seeds)))
	params.AddNode(fmt.Sprintf("insertions: %s (base %d)", cfg.InsertionScale, cfg.BaseInsertions))
	params.AddNode(fmt.Sprintf("rounding: %s", cfg.Rounding))

	tasks := tree.AddBranch(fmt.Sprintf("tasks: %d (%s, %d runs each)",
		cfg.NumTasks(), cfg.Batching(), cfg.RunsPerTask()))
	tasks.AddNode(fmt.Sprintf("array: 0-%d", cfg.NumTasks()-1))
	tasks.AddNode(fmt.Sprintf("total runs: %d", cfg.NumTasks()*cfg.RunsPerTask()))
	return tree
}

// --- leafsim sweep run ---

var (
	sweepConfigPath string
	taskID          int
	outputDir       string
	metricsFile     string
)

var sweepRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one task of a sweep (array job entry point)",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := resolveTaskID(cmd.Flags().Changed("task-id"), taskID, os.Getenv(taskIDEnv))
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		runner := newRunner()
		ctx, stop := signalContext()
		defer stop()

		if _, err := runner.WriteTask(ctx, id); err != nil {
			logrus.Fatalf("Task %d failed: %v", id, err)
		}
		writeMetrics(runner.Progress)
	},
}

// resolveTaskID prefers an explicit --task-id, then the scheduler's array index.
func resolveTaskID(flagSet bool, flagValue int, env string) (int, error) {
	if flagSet {
		return flagValue, nil
	}
	if env == "" {
		return 0, fmt.Errorf("no task ID: pass --task-id or set %s", taskIDEnv)
	}
	id, err := strconv.Atoi(env)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q: %w", taskIDEnv, env, err)
	}
	return id, nil
}

// --- leafsim sweep run-all ---

var parallel int

var sweepRunAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Run every task of a sweep locally in parallel",
	Run: func(cmd *cobra.Command, args []string) {
		runner := newRunner()
		runner.Parallel = parallel
		ctx, stop := signalContext()
		defer stop()

		if err := runner.RunAll(ctx); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		writeMetrics(runner.Progress)
		logrus.Info("Sweep complete.")
	},
}

func newRunner() *sweep.Runner {
	cfg, err := sweep.LoadConfig(sweepConfigPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid sweep config %s: %v", sweepConfigPath, err)
	}
	runner := &sweep.Runner{Config: cfg, OutputDir: outputDir}
	if metricsFile != "" {
		runner.Progress = sweep.NewProgress()
	}
	return runner
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func writeMetrics(p *sweep.Progress) {
	if metricsFile == "" {
		return
	}
	if err := p.WriteTextfile(metricsFile); err != nil {
		logrus.Warnf("%v", err)
	}
}

// --- leafsim sweep collect ---

var (
	resultsDir  string
	collectOut  string
	noAggregate bool
)

var sweepCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Merge per-task result files into one CSV",
	Run: func(cmd *cobra.Command, args []string) {
		n, err := sweep.CollectFile(resultsDir, collectOut, !noAggregate)
		if err != nil {
			logrus.Fatalf("Collect failed: %v", err)
		}
		kind := "summary rows"
		if noAggregate {
			kind = "rows"
		}
		fmt.Printf("Wrote %d %s to %s\n", n, kind, collectOut)
	},
}

// --- leafsim sweep aggregate ---

var (
	aggregateIn    string
	aggregateOut   string
	printSummaries bool
)

var sweepAggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Summarize a collected CSV across seeds",
	Run: func(cmd *cobra.Command, args []string) {
		summaries, err := sweep.AggregateFile(aggregateIn, aggregateOut)
		if err != nil {
			logrus.Fatalf("Aggregate failed: %v", err)
		}
		if printSummaries {
			printSummaryTable(os.Stdout, summaries)
		}
		fmt.Printf("Wrote %d summary rows to %s\n", len(summaries), aggregateOut)
	},
}

func printSummaryTable(w io.Writer, summaries []sweep.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"B", "r", "alpha", "p", "fullness", "std", "time avg", "seeds"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range summaries {
		table.Append([]string{
			strconv.Itoa(s.B),
			strconv.Itoa(s.R),
			fmt.Sprintf("%.4f", s.Alpha),
			fmt.Sprintf("%.4f", s.P),
			fmt.Sprintf("%.6f", s.FullnessMean),
			fmt.Sprintf("%.6f", s.FullnessStd),
			fmt.Sprintf("%.6f", s.TimeAvgFullnessMean),
			strconv.Itoa(s.NSeeds),
		})
	}
	table.Render()
}

func init() {
	f := sweepConfigCmd.Flags()
	f.IntVar(&plan.B, "B", 120, "Block capacity")
	f.StringVar(&plan.Method, "method", "deferred", "Split method")
	f.IntVar(&plan.RMin, "r-min", 1, "Smallest batch size")
	f.IntVar(&plan.RMax, "r-max", 0, "Largest batch size (0 = B-1)")
	f.IntVar(&plan.RStep, "r-step", 1, "Batch size step")
	f.Float64Var(&plan.PMin, "p-min", 0.05, "Smallest split ratio")
	f.Float64Var(&plan.PMax, "p-max", 0.5, "Largest split ratio")
	f.IntVar(&plan.PCount, "p-count", 10, "Number of evenly spaced split ratios")
	f.StringVar((*string)(&plan.InsertionScale), "insertion-scale", string(sweep.ScaleSqrt), "Insertions per run: sqrt, linear or fixed")
	f.Int64Var(&plan.BaseInsertions, "base-insertions", sweep.DefaultBaseInsertions, "Base insertion count")
	f.Int64Var(&plan.TotalInsertions, "total-insertions", 0, "Insertions per run for the fixed scale (0 = base)")
	f.StringVar(&plan.Rounding, "rounding", "floor", "Split point rounding (floor, ceil, nearest)")
	f.IntVar(&plan.SeedCount, "n-seeds", 10, "Number of seeds")
	f.StringVar(&plan.SeedMethod, "seed-method", sweep.SeedSequence, "Seed derivation: seedsequence, rng or urandom")
	f.Int64Var(&plan.MasterSeed, "master-seed", 42, "Master seed for seed derivation")
	f.BoolVar(&plan.BatchByR, "batch-by-r", true, "One task per (seed, r), running every p")
	f.BoolVar(&plan.BatchByP, "batch-by-p", false, "One task per (seed, p), running every r (requires --batch-by-r=false)")
	f.StringVarP(&configPath, "output", "o", "sweep.yaml", "Config file to write")

	for _, c := range []*cobra.Command{sweepRunCmd, sweepRunAllCmd} {
		c.Flags().StringVar(&sweepConfigPath, "config", "sweep.yaml", "Sweep config file (YAML or JSON)")
		c.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for result_<task>.csv files")
		c.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here when set")
	}
	sweepRunCmd.Flags().IntVar(&taskID, "task-id", 0, "Task index (defaults to $"+taskIDEnv+")")
	sweepRunAllCmd.Flags().IntVar(&parallel, "parallel", 0, "Concurrent tasks (0 = GOMAXPROCS)")

	sweepCollectCmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory holding result_*.csv files")
	sweepCollectCmd.Flags().StringVarP(&collectOut, "output", "o", "summary.csv", "Output CSV")
	sweepCollectCmd.Flags().BoolVar(&noAggregate, "no-aggregate", false, "Write raw rows instead of per-group summaries")

	sweepAggregateCmd.Flags().StringVar(&aggregateIn, "input", "", "Collected raw CSV")
	sweepAggregateCmd.Flags().StringVarP(&aggregateOut, "output", "o", "summary.csv", "Output CSV")
	sweepAggregateCmd.Flags().BoolVar(&printSummaries, "print", false, "Also print the summary as a table")
	_ = sweepAggregateCmd.MarkFlagRequired("input")

	sweepCmd.AddCommand(sweepConfigCmd)
	sweepCmd.AddCommand(sweepRunCmd)
	sweepCmd.AddCommand(sweepRunAllCmd)
	sweepCmd.AddCommand(sweepCollectCmd)
	sweepCmd.AddCommand(sweepAggregateCmd)

	rootCmd.AddCommand(sweepCmd)
}
