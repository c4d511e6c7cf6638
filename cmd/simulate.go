package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leafsim/leafsim/sim"
)

var (
	capacity        int     // Block capacity B
	batchSize       int     // Keys per batch r
	totalInsertions int64   // Keys to insert
	splitMethod     string  // Split method name
	splitRatio      float64 // Split ratio p
	seed            int64   // RNG seed
	rounding        string  // Split point rounding
	showHistogram   bool    // Print the final size histogram
)

// simulateCmd runs a single simulation using parameters from CLI flags
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one leaf-split simulation and print its result as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		method, err := sim.ParseMethod(splitMethod)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg := sim.Config{
			B:               capacity,
			R:               batchSize,
			TotalInsertions: totalInsertions,
			Method:          method,
			P:               splitRatio,
			Seed:            seed,
			Rounding:        sim.Rounding(rounding),
		}
		logrus.Infof("Starting simulation: B=%d r=%d p=%v method=%s insertions=%d seed=%d",
			cfg.B, cfg.R, cfg.P, cfg.Method, cfg.TotalInsertions, cfg.Seed)

		res, err := sim.Simulate(cfg)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if showHistogram {
			printHistogram(os.Stdout, res.SizeCounts)
		}
		if err := writeResultJSON(os.Stdout, res); err != nil {
			logrus.Fatalf("Writing result failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// writeResultJSON prints the result without the (potentially large) size histogram.
func writeResultJSON(w io.Writer, res *sim.Result) error {
	out := *res
	out.SizeCounts = nil
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printHistogram renders the block size distribution as a table, smallest size first.
func printHistogram(w io.Writer, counts map[int]int64) {
	sizes := make([]int, 0, len(counts))
	var blocks int64
	for size, c := range counts {
		sizes = append(sizes, size)
		blocks += c
	}
	sort.Ints(sizes)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Size", "Blocks", "Share"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, size := range sizes {
		c := counts[size]
		table.Append([]string{
			strconv.Itoa(size),
			strconv.FormatInt(c, 10),
			fmt.Sprintf("%.4f", float64(c)/float64(blocks)),
		})
	}
	table.Render()
}

func init() {
	simulateCmd.Flags().IntVar(&capacity, "capacity", 120, "Block capacity B (keys per leaf)")
	simulateCmd.Flags().IntVar(&batchSize, "batch-size", 1, "Keys inserted per batch r")
	simulateCmd.Flags().Int64Var(&totalInsertions, "total-insertions", 100000, "Total keys to insert (rounded down to a multiple of the batch size)")
	simulateCmd.Flags().StringVar(&splitMethod, "method", string(sim.MethodDeferred), "Split method ("+sim.MethodNames()+")")
	simulateCmd.Flags().Float64Var(&splitRatio, "p", 0.5, "Split ratio in (0, 1)")
	simulateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random key placement")
	simulateCmd.Flags().StringVar(&rounding, "rounding", string(sim.DefaultRounding), "Split point rounding (floor, ceil, nearest)")
	simulateCmd.Flags().BoolVar(&showHistogram, "histogram", false, "Print the final block size histogram")

	rootCmd.AddCommand(simulateCmd)
}
