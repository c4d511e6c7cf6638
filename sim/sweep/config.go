package sweep

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/leafsim/leafsim/sim"
)

// InsertionScale selects how many keys each run inserts as a function of r.
type InsertionScale string

const (
	ScaleSqrt   InsertionScale = "sqrt"   // (√r + 1) · base
	ScaleLinear InsertionScale = "linear" // r · base
	ScaleFixed  InsertionScale = "fixed"  // total_insertions, or base when unset
)

// DefaultBaseInsertions is used when base_insertions is absent.
const DefaultBaseInsertions int64 = 100_000

var validScales = map[InsertionScale]bool{ScaleSqrt: true, ScaleLinear: true, ScaleFixed: true}

// Config describes a parameter sweep: one method and capacity, crossed with
// lists of batch sizes, split ratios and seeds. Loaded from YAML (or JSON)
// via LoadConfig.
type Config struct {
	B               int            `yaml:"B"`
	Method          string         `yaml:"method"`
	RList           []int          `yaml:"r_list"`
	PList           []float64      `yaml:"p_list"`
	Seeds           []int64        `yaml:"seeds"`
	InsertionScale  InsertionScale `yaml:"insertion_scale"`
	BaseInsertions  int64          `yaml:"base_insertions"`
	TotalInsertions int64          `yaml:"total_insertions,omitempty"` // fixed scale only
	Rounding        string         `yaml:"rounding"`
	// BatchByR defaults to true when absent: each task fixes (seed, r) and runs every p.
	BatchByR *bool `yaml:"batch_by_r,omitempty"`
	// BatchByP makes each task fix (seed, p) and run every r. Ignored when BatchByR is true.
	BatchByP bool `yaml:"batch_by_p"`
}

// Batching is how task IDs map onto (seed, r, p) combinations.
type Batching int

const (
	GroupByR  Batching = iota // task = seed × r, all p inside
	GroupByP                  // task = seed × p, all r inside
	GroupNone                 // task = seed × r × p
)

// String returns the batching name used in logs and plan output.
func (b Batching) String() string {
	switch b {
	case GroupByR:
		return "by-r"
	case GroupByP:
		return "by-p"
	case GroupNone:
		return "single"
	default:
		return fmt.Sprintf("Batching(%d)", int(b))
	}
}

// LoadConfig reads and parses a sweep configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// JSON files are accepted since YAML is a superset of JSON.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep config: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing sweep config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling sweep config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing sweep config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.InsertionScale == "" {
		c.InsertionScale = ScaleFixed
	}
	if c.BaseInsertions == 0 {
		c.BaseInsertions = DefaultBaseInsertions
	}
	if c.Rounding == "" {
		c.Rounding = string(sim.DefaultRounding)
	}
}

// Validate checks the sweep structure and every (r, p) combination it implies.
func (c *Config) Validate() error {
	method, err := sim.ParseMethod(c.Method)
	if err != nil {
		return err
	}
	if len(c.RList) == 0 {
		return fmt.Errorf("r_list must not be empty")
	}
	if len(c.PList) == 0 {
		return fmt.Errorf("p_list must not be empty")
	}
	if len(c.Seeds) == 0 {
		return fmt.Errorf("seeds must not be empty")
	}
	if !validScales[c.InsertionScale] {
		return fmt.Errorf("unknown insertion_scale %q; valid: sqrt, linear, fixed", c.InsertionScale)
	}
	if c.BaseInsertions <= 0 {
		return fmt.Errorf("base_insertions must be positive, got %d", c.BaseInsertions)
	}
	if c.TotalInsertions < 0 {
		return fmt.Errorf("total_insertions must be non-negative, got %d", c.TotalInsertions)
	}
	for _, r := range c.RList {
		for _, p := range c.PList {
			run := sim.Config{B: c.B, R: r, TotalInsertions: c.Insertions(r), Method: method, P: p,
				Rounding: sim.Rounding(c.Rounding)}
			if err := run.Validate(); err != nil {
				return fmt.Errorf("r=%d p=%v: %w", r, p, err)
			}
		}
	}
	return nil
}

// Batching reports how task IDs are decoded.
func (c *Config) Batching() Batching {
	if c.BatchByR == nil || *c.BatchByR {
		return GroupByR
	}
	if c.BatchByP {
		return GroupByP
	}
	return GroupNone
}

// NumTasks returns the number of array tasks the sweep needs.
func (c *Config) NumTasks() int {
	switch c.Batching() {
	case GroupByR:
		return len(c.Seeds) * len(c.RList)
	case GroupByP:
		return len(c.Seeds) * len(c.PList)
	default:
		return len(c.Seeds) * len(c.RList) * len(c.PList)
	}
}

// RunsPerTask returns how many simulations each task executes.
func (c *Config) RunsPerTask() int {
	switch c.Batching() {
	case GroupByR:
		return len(c.PList)
	case GroupByP:
		return len(c.RList)
	default:
		return 1
	}
}

// Insertions returns the total keys inserted by a run with batch size r.
func (c *Config) Insertions(r int) int64 {
	switch c.InsertionScale {
	case ScaleSqrt:
		return int64((math.Sqrt(float64(r)) + 1) * float64(c.BaseInsertions))
	case ScaleLinear:
		return int64(r) * c.BaseInsertions
	default:
		if c.TotalInsertions > 0 {
			return c.TotalInsertions
		}
		return c.BaseInsertions
	}
}

// Runs decodes a task ID into the simulation configs it executes.
func (c *Config) Runs(taskID int) ([]sim.Config, error) {
	if taskID < 0 || taskID >= c.NumTasks() {
		return nil, fmt.Errorf("task ID %d out of range [0, %d)", taskID, c.NumTasks())
	}
	method, err := sim.ParseMethod(c.Method)
	if err != nil {
		return nil, err
	}
	run := func(seed int64, r int, p float64) sim.Config {
		return sim.Config{B: c.B, R: r, TotalInsertions: c.Insertions(r), Method: method, P: p,
			Seed: seed, Rounding: sim.Rounding(c.Rounding)}
	}

	var runs []sim.Config
	switch c.Batching() {
	case GroupByR:
		seed, r := c.Seeds[taskID/len(c.RList)], c.RList[taskID%len(c.RList)]
		for _, p := range c.PList {
			runs = append(runs, run(seed, r, p))
		}
	case GroupByP:
		seed, p := c.Seeds[taskID/len(c.PList)], c.PList[taskID%len(c.PList)]
		for _, r := range c.RList {
			runs = append(runs, run(seed, r, p))
		}
	default:
		perSeed := len(c.RList) * len(c.PList)
		rem := taskID % perSeed
		runs = append(runs, run(c.Seeds[taskID/perSeed], c.RList[rem/len(c.PList)], c.PList[rem%len(c.PList)]))
	}
	return runs, nil
}

// Plan holds the range-style parameters a sweep config is generated from.
type Plan struct {
	B               int
	Method          string
	RMin, RMax      int // RMax 0 means B-1
	RStep           int
	PMin, PMax      float64
	PCount          int
	InsertionScale  InsertionScale
	BaseInsertions  int64
	TotalInsertions int64
	Rounding        string
	SeedCount       int
	SeedMethod      string
	MasterSeed      int64
	BatchByR        bool
	BatchByP        bool
}

// GenerateConfig expands a Plan into an explicit, validated sweep Config.
func GenerateConfig(plan Plan) (*Config, error) {
	if plan.RStep <= 0 {
		return nil, fmt.Errorf("r_step must be positive, got %d", plan.RStep)
	}
	rMax := plan.RMax
	if rMax == 0 {
		rMax = plan.B - 1
	}
	var rList []int
	for r := plan.RMin; r <= rMax; r += plan.RStep {
		rList = append(rList, r)
	}

	pList, err := linspace(plan.PMin, plan.PMax, plan.PCount)
	if err != nil {
		return nil, err
	}

	seeds, err := GenerateSeeds(plan.SeedCount, plan.SeedMethod, plan.MasterSeed)
	if err != nil {
		return nil, err
	}

	byR := plan.BatchByR || !plan.BatchByP
	cfg := &Config{
		B:              plan.B,
		Method:         plan.Method,
		RList:          rList,
		PList:          pList,
		Seeds:          seeds,
		InsertionScale: plan.InsertionScale,
		BaseInsertions: plan.BaseInsertions,
		Rounding:       plan.Rounding,
		BatchByR:       &byR,
		BatchByP:       plan.BatchByP,
	}
	if plan.InsertionScale == ScaleFixed {
		cfg.TotalInsertions = plan.TotalInsertions
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// linspace returns n evenly spaced values over [lo, hi].
func linspace(lo, hi float64, n int) ([]float64, error) {
	switch {
	case n <= 0:
		return nil, fmt.Errorf("p_count must be positive, got %d", n)
	case n == 1:
		return []float64{lo}, nil
	default:
		return floats.Span(make([]float64, n), lo, hi), nil
	}
}
