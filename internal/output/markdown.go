package output

import (
	"fmt"
	"os"
)

// WriteMarkdown writes benchmark results to a Markdown file.
func WriteMarkdown(filename string, results Results, commandLine string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := func(format string, args ...any) {
		fmt.Fprintf(f, format, args...)
	}

	o := results.Options
	w("# cachebench Results\n\n")
	w("```\n")
	w("Command: %s\n", commandLine)
	w("Environment: %s/%s, %d CPUs, %s\n", results.MachineInfo.OS, results.MachineInfo.Arch, results.MachineInfo.NumCPU, results.MachineInfo.GoVersion)
	w("Runner: %d warmup + %d measured iterations of %s, %d forks\n", o.Warmup, o.Measurement, o.Iteration, o.Forks)
	w("```\n\n")

	groups := Group(results.Benchmarks)
	if len(groups) > 0 {
		w("## Benchmarks\n\n")
	}
	for _, g := range groups {
		writeGroupMarkdown(w, g)
	}

	writeProblemsMarkdown(w, results.Benchmarks)

	if len(results.Rankings) > 0 {
		w("## Overall Rankings\n\n")
		w("| Rank | Cache         | Score | Gold | Silver | Bronze |\n")
		w("|------|---------------|-------|------|--------|--------|\n")
		for _, r := range results.Rankings {
			w("| %4d | %-13s | %5.0f | %4d | %6d | %6d |\n", r.Rank, r.Name, r.Score, r.Gold, r.Silver, r.Bronze)
		}
		w("\n")
	}

	return nil
}

func writeGroupMarkdown(w func(string, ...any), group []BenchmarkResult) {
	first := group[0]
	w("### %s (%s, %s)\n\n", benchmarkName(first), first.Mode, first.UnitLabel())

	w("| Cache         | Threads |          Score |      Error | Samples |\n")
	w("|---------------|---------|----------------|------------|---------|\n")

	entries := make([]WinnerEntry, len(group))
	for i, r := range group {
		w("| %-13s | %7d | %14.3f | ± %8.3f | %7d |\n", r.Config.Impl, r.Threads, r.Score.Mean, r.Score.Error, r.Score.N)
		entries[i] = WinnerEntry{Name: r.Config.Impl, Score: r.Score.Mean}
	}

	winners, runnerUp := FormatWinners(entries)
	if runnerUp != nil && len(winners) > 0 && entries[0].Score != 0 {
		best := entries[0].Score
		pct := (runnerUp.Score - best) / best * 100
		if pct < 0 {
			pct = -pct
		}
		w("\n  winner: %v (%.1f%% ahead of %s)\n", winners, pct, runnerUp.Name)
	}
	w("\n")
}

func writeProblemsMarkdown(w func(string, ...any), results []BenchmarkResult) {
	var problems []BenchmarkResult
	for _, r := range results {
		if r.Error != "" || len(r.Warnings) > 0 {
			problems = append(problems, r)
		}
	}
	if len(problems) == 0 {
		return
	}

	w("## Errors and Warnings\n\n")
	for _, r := range problems {
		if r.Error != "" {
			w("- **%s** `%s` (%s): error: %s\n", r.Op, r.Config, r.Mode, r.Error)
		}
		for _, warn := range r.Warnings {
			w("- **%s** `%s` (%s): warning: %s\n", r.Op, r.Config, r.Mode, warn)
		}
	}
	w("\n")
}
