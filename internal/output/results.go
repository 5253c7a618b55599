// Package output provides result formatting and export.
package output

import (
	"fmt"
	"sort"

	"github.com/tstromberg/cachebench/internal/benchmark"
)

// Results holds everything written to the report files.
type Results struct {
	Timestamp   string            `json:"timestamp"`
	MachineInfo MachineInfo       `json:"machineInfo"`
	Options     benchmark.Options `json:"options"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
	Rankings    []Ranking         `json:"rankings,omitempty"`
	MedalTable  *MedalTable       `json:"medalTable,omitempty"`
}

// MachineInfo holds information about the benchmark environment.
type MachineInfo struct {
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	NumCPU      int    `json:"numCPU"`
	GoVersion   string `json:"goVersion"`
	CommandLine string `json:"commandLine"`
}

// BenchmarkResult is one operation, workload and mode summarized over all forks.
type BenchmarkResult struct {
	Op       string           `json:"op"`
	Config   benchmark.Config `json:"config"`
	Threads  int              `json:"threads"`
	Mode     benchmark.Mode   `json:"mode"`
	Unit     string           `json:"unit"`
	Score    benchmark.Score  `json:"score"`
	Warnings []string         `json:"warnings,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// UnitLabel renders the unit the way JMH does: ops/us or us/op.
func (r BenchmarkResult) UnitLabel() string {
	if r.Mode == benchmark.Throughput {
		return "ops/" + r.Unit
	}
	return r.Unit + "/op"
}

// Better reports whether a beats b in r's mode.
func Better(mode benchmark.Mode, a, b float64) bool {
	if mode == benchmark.Throughput {
		return a > b
	}
	return a < b
}

// Summarize turns a benchmark's trials into one result per requested mode.
func Summarize(op benchmark.Operation, cfg benchmark.Config, trials []benchmark.Trial, opts benchmark.Options, runErr error) []BenchmarkResult {
	var warnings []string
	threads := op.ThreadCount(opts.Threads)
	for _, t := range trials {
		warnings = append(warnings, t.Warnings...)
		threads = t.Threads
	}

	out := make([]BenchmarkResult, 0, len(opts.Modes))
	for _, mode := range opts.Modes {
		r := BenchmarkResult{
			Op:       op.Name,
			Config:   cfg,
			Threads:  threads,
			Mode:     mode,
			Unit:     benchmark.UnitName(opts.TimeUnit),
			Score:    benchmark.Summarize(benchmark.Samples(trials, mode, opts.TimeUnit)),
			Warnings: warnings,
		}
		if runErr != nil {
			r.Error = runErr.Error()
		}
		out = append(out, r)
	}
	return out
}

// groupKey identifies results that are comparable across cache variants.
func groupKey(r BenchmarkResult) string {
	c := r.Config
	return fmt.Sprintf("%s|%s|v%d|c%d|s%d|h%d|k%d", r.Op, r.Mode, c.ValueSize, c.Capacity, c.SegmentCount, c.HashTableSize, c.Keys)
}

// Group returns results bucketed by operation, mode and workload, each bucket
// sorted best first. Failed results are left out. Buckets keep first-seen order.
func Group(results []BenchmarkResult) [][]BenchmarkResult {
	idx := make(map[string]int)
	var groups [][]BenchmarkResult
	for _, r := range results {
		if r.Error != "" || r.Score.N == 0 {
			continue
		}
		k := groupKey(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			return Better(g[i].Mode, g[i].Score.Mean, g[j].Score.Mean)
		})
	}
	return groups
}
