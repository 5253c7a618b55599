package output

import "github.com/tstromberg/cachebench/internal/benchmark"

// Delta is one result measured against the same benchmark in an earlier run.
type Delta struct {
	Result   BenchmarkResult
	Baseline float64
	Change   float64 // percent; positive is an improvement in either mode
}

// Compare pairs each current result with the baseline result of the same
// operation, mode, workload, variant and unit. Failed or unmatched results
// are skipped.
func Compare(current, baseline []BenchmarkResult) []Delta {
	prev := make(map[string]BenchmarkResult, len(baseline))
	for _, r := range baseline {
		if r.Error == "" && r.Score.N > 0 && r.Score.Mean != 0 {
			prev[groupKey(r)+"|"+r.Config.Impl+"|"+r.Unit] = r
		}
	}

	var out []Delta
	for _, r := range current {
		if r.Error != "" || r.Score.N == 0 {
			continue
		}
		b, ok := prev[groupKey(r)+"|"+r.Config.Impl+"|"+r.Unit]
		if !ok {
			continue
		}
		change := (r.Score.Mean - b.Score.Mean) / b.Score.Mean * 100
		if r.Mode == benchmark.AverageTime {
			change = -change
		}
		out = append(out, Delta{Result: r, Baseline: b.Score.Mean, Change: change})
	}
	return out
}
