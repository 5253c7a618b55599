// cachebench measures throughput and average time of cache point lookups,
// existence checks and insertions across a matrix of workload parameters.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/tstromberg/cachebench/internal/benchmark"
	"github.com/tstromberg/cachebench/internal/cache"
	"github.com/tstromberg/cachebench/internal/output"
)

const lineWidth = 80

// parseList parses a comma-separated list of integers.
func parseList[T int | int64](input string) ([]T, error) {
	var result []T
	for s := range strings.SplitSeq(input, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		result = append(result, T(v))
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("empty list %q", input)
	}
	return result, nil
}

// parseNames splits a comma-separated list, dropping blanks.
func parseNames(input string) []string {
	var names []string
	for s := range strings.SplitSeq(input, ",") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	return names
}

// params holds the raw workload flag values before expansion.
type params struct {
	impls          string
	valueSizes     string
	capacities     string
	segmentCounts  string
	hashTableSizes string
	keys           string
}

// configs expands every parameter list into their cross product.
func (p params) configs() ([]benchmark.Config, error) {
	impls := parseNames(p.impls)
	if len(impls) == 1 && impls[0] == "all" {
		impls = cache.Names()
	}
	if len(impls) == 0 {
		return nil, errors.New("no cache implementation given")
	}
	valueSizes, err := parseList[int](p.valueSizes)
	if err != nil {
		return nil, fmt.Errorf("-valueSize: %w", err)
	}
	capacities, err := parseList[int64](p.capacities)
	if err != nil {
		return nil, fmt.Errorf("-capacity: %w", err)
	}
	segments, err := parseList[int](p.segmentCounts)
	if err != nil {
		return nil, fmt.Errorf("-segmentCount: %w", err)
	}
	tables, err := parseList[int](p.hashTableSizes)
	if err != nil {
		return nil, fmt.Errorf("-hashTableSize: %w", err)
	}
	keys, err := parseList[int](p.keys)
	if err != nil {
		return nil, fmt.Errorf("-keys: %w", err)
	}

	var out []benchmark.Config
	for _, k := range keys {
		for _, v := range valueSizes {
			for _, c := range capacities {
				for _, s := range segments {
					for _, h := range tables {
						for _, impl := range impls {
							out = append(out, benchmark.Config{
								ValueSize:     v,
								Capacity:      c,
								SegmentCount:  s,
								HashTableSize: h,
								Keys:          k,
								Impl:          impl,
							})
						}
					}
				}
			}
		}
	}
	return out, nil
}

// selectOperations returns the suite filtered by a comma-separated list of names.
func selectOperations(filter string) ([]benchmark.Operation, error) {
	names := parseNames(filter)
	if len(names) == 0 || (len(names) == 1 && names[0] == "all") {
		return benchmark.Operations(), nil
	}
	ops := make([]benchmark.Operation, 0, len(names))
	for _, n := range names {
		op, err := benchmark.Lookup(n)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// parseModes parses a comma-separated list of measurement modes.
func parseModes(input string) ([]benchmark.Mode, error) {
	var modes []benchmark.Mode
	for _, s := range parseNames(input) {
		m, err := benchmark.ParseMode(s)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	d := benchmark.DefaultConfig()
	defOpts := benchmark.DefaultOptions()

	showHelp := flag.Bool("help", false, "Show help message")
	worker := flag.Bool(benchmark.WorkerFlag, false, "Run a single trial and print it as JSON (used by forks)")
	bench := flag.String("bench", "all", "Comma-separated operations to run (default: all)")

	var p params
	flag.StringVar(&p.impls, "impl", d.Impl, "Comma-separated cache implementations, or \"all\"")
	flag.StringVar(&p.valueSizes, "valueSize", strconv.Itoa(d.ValueSize), "Comma-separated value sizes in bytes")
	flag.StringVar(&p.capacities, "capacity", strconv.FormatInt(d.Capacity, 10), "Comma-separated cache capacities in bytes")
	flag.StringVar(&p.segmentCounts, "segmentCount", strconv.Itoa(d.SegmentCount), "Comma-separated segment counts (-1 = auto)")
	flag.StringVar(&p.hashTableSizes, "hashTableSize", strconv.Itoa(d.HashTableSize), "Comma-separated hash table sizes (-1 = auto)")
	flag.StringVar(&p.keys, "keys", strconv.Itoa(d.Keys), "Comma-separated key space sizes")

	warmup := flag.Int("wi", defOpts.Warmup, "Warmup iterations per fork")
	measure := flag.Int("i", defOpts.Measurement, "Measured iterations per fork")
	forks := flag.Int("f", defOpts.Forks, "Forked processes per benchmark (0 = run in-process)")
	iteration := flag.Duration("r", defOpts.Iteration, "Duration of each iteration")
	threads := flag.Int("t", defOpts.Threads, "Workers for multi-threaded operations (0 = GOMAXPROCS)")
	modes := flag.String("mode", "avgt,thrpt", "Comma-separated modes: avgt,thrpt")
	unit := flag.String("tu", "us", "Output time unit: ns, us, ms, s")

	outDir := flag.String("outdir", "", "Output directory for results (writes cachebench_results.{json,md})")
	jsonOut := flag.String("json", "", "Output results to JSON file (a .zst suffix compresses it)")
	mdOut := flag.String("md", "", "Output results to Markdown file")
	compare := flag.String("compare", "", "Compare against an earlier JSON results file")
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	opts := benchmark.Options{
		Warmup:      *warmup,
		Measurement: *measure,
		Forks:       *forks,
		Iteration:   *iteration,
		Threads:     *threads,
	}
	var err error
	if opts.Modes, err = parseModes(*modes); err != nil {
		fatalf("%v", err)
	}
	if opts.TimeUnit, err = benchmark.ParseTimeUnit(*unit); err != nil {
		fatalf("%v", err)
	}
	if err := opts.Validate(); err != nil {
		fatalf("%v", err)
	}

	configs, err := p.configs()
	if err != nil {
		fatalf("%v", err)
	}
	ops, err := selectOperations(*bench)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *worker {
		cfg, op, wopts, err := benchmark.ParseWorkerArgs(os.Args[1:])
		if err != nil {
			fatalf("%v", err)
		}
		if err := benchmark.RunWorker(ctx, os.Stdout, cfg, op, wopts); err != nil {
			stop()
			os.Exit(1)
		}
		return
	}

	for _, c := range configs {
		if !cache.Known(c.Impl) {
			fmt.Fprintf(os.Stderr, "Warning: unknown cache implementation %q\n", c.Impl)
		}
	}

	var baseline *output.Results
	if *compare != "" {
		b, err := output.ReadJSON(*compare)
		if err != nil {
			fatalf("reading baseline: %v", err)
		}
		baseline = &b
	}

	exe, err := os.Executable()
	if err != nil && opts.Forks > 0 {
		fatalf("locate executable for forks: %v", err)
	}

	printHeader(configs, ops, opts)

	results := output.Results{Options: opts}
	for _, op := range ops {
		if ctx.Err() != nil {
			break
		}
		printSuite(op.Name, op.Threads.String()+" threads")
		var opResults []output.BenchmarkResult
		for _, cfg := range configs {
			if ctx.Err() != nil {
				break
			}
			fmt.Printf("  %s ", cfg)
			start := time.Now()
			trials, err := benchmark.RunForks(ctx, exe, cfg, op, opts)
			if err != nil {
				fmt.Println("failed")
				fmt.Fprintf(os.Stderr, "Error: %s %s: %v\n", op.Name, cfg, err)
			} else {
				fmt.Printf("(%s)\n", time.Since(start).Round(time.Millisecond))
			}
			rs := output.Summarize(op, cfg, trials, opts, err)
			for _, w := range rs[0].Warnings {
				fmt.Fprintf(os.Stderr, "Warning: %s %s: %s\n", op.Name, cfg, w)
			}
			opResults = append(opResults, rs...)
		}
		fmt.Println()
		for _, g := range output.Group(opResults) {
			printGroupTable(g)
		}
		results.Benchmarks = append(results.Benchmarks, opResults...)
	}
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "Warning: interrupted, writing partial results\n")
	}

	results.Rankings, results.MedalTable = output.ComputeRankings(results)
	printOverallRanking(results.Rankings)
	if baseline != nil {
		printComparison(*compare, output.Compare(results.Benchmarks, baseline.Benchmarks))
	}

	commandLine := "cachebench " + strings.Join(os.Args[1:], " ")
	results.MachineInfo = output.MachineInfo{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		NumCPU:      runtime.NumCPU(),
		GoVersion:   runtime.Version(),
		CommandLine: commandLine,
	}

	jsonPath, mdPath := *jsonOut, *mdOut
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil { //nolint:gosec // G301: 0755 is standard dir permission
			fatalf("creating output directory: %v", err)
		}
		if jsonPath == "" {
			jsonPath = filepath.Join(*outDir, "cachebench_results.json")
		}
		if mdPath == "" {
			mdPath = filepath.Join(*outDir, "cachebench_results.md")
		}
	}

	label := "Results:"
	if jsonPath != "" {
		if err := output.WriteJSON(jsonPath, results, commandLine); err != nil {
			fatalf("writing JSON: %v", err)
		}
		fmt.Printf("%s %s\n", label, jsonPath)
		label = "        "
	}
	if mdPath != "" {
		if err := output.WriteMarkdown(mdPath, results, commandLine); err != nil {
			fatalf("writing Markdown: %v", err)
		}
		fmt.Printf("%s %s\n", label, mdPath)
	}
}

func printUsage() {
	fmt.Println("cachebench - Measure cache throughput and average operation time")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cachebench                                   Run every operation against the default cache")
	fmt.Println("  cachebench -impl all -bench getMultiThreaded Compare every cache on one operation")
	fmt.Println()
	fmt.Println("Workload (comma-separated lists run as a cross product):")
	fmt.Println("  -impl <list>           Cache implementations, or \"all\" (default: linked)")
	fmt.Println("  -valueSize <list>      Value sizes in bytes (default: 2048)")
	fmt.Println("  -capacity <list>       Capacities in bytes (default: 1073741824)")
	fmt.Println("  -segmentCount <list>   Segment counts, -1 = auto (default: -1)")
	fmt.Println("  -hashTableSize <list>  Hash table size hints, -1 = auto (default: -1)")
	fmt.Println("  -keys <list>           Key space sizes (default: 1000000)")
	fmt.Println()
	fmt.Println("Runner:")
	fmt.Println("  -bench <list>  Operations to run (default: all)")
	fmt.Println("  -wi <n>        Warmup iterations per fork (default: 5)")
	fmt.Println("  -i <n>         Measured iterations per fork (default: 5)")
	fmt.Println("  -f <n>         Forks per benchmark, 0 = in-process (default: 3)")
	fmt.Println("  -r <duration>  Iteration duration (default: 1s)")
	fmt.Println("  -t <n>         Workers for multi-threaded operations, 0 = GOMAXPROCS (default: 0)")
	fmt.Println("  -mode <list>   Modes: avgt,thrpt (default: both)")
	fmt.Println("  -tu <unit>     Time unit: ns, us, ms, s (default: us)")
	fmt.Println()
	fmt.Println("Output:")
	fmt.Println("  -outdir <dir>  Write cachebench_results.{json,md} to dir")
	fmt.Println("  -json <file>   Write JSON results (.zst compresses)")
	fmt.Println("  -md <file>     Write Markdown results")
	fmt.Println("  -compare <file> Show changes against an earlier JSON (or .zst) results file")
	fmt.Println()
	fmt.Println("Operations:")
	for _, op := range benchmark.Operations() {
		fmt.Printf("  %-20s %s threads\n", op.Name, op.Threads)
	}
	fmt.Println()
	fmt.Println("Available caches:")
	for _, name := range cache.Names() {
		fmt.Printf("  - %s\n", name)
	}
}

func printHeader(configs []benchmark.Config, ops []benchmark.Operation, opts benchmark.Options) {
	fmt.Println("cachebench")
	fmt.Println()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	fmt.Printf("  benchmarks: %s\n", strings.Join(names, ", "))
	fmt.Printf("  configs:    %d\n", len(configs))
	fmt.Printf("  runner:     %d warmup + %d measured x %s, %d forks\n", opts.Warmup, opts.Measurement, opts.Iteration, opts.Forks)
	fmt.Println()
}

func printSuite(name, description string) {
	header := fmt.Sprintf("%s: %s ", name, description)
	padding := max(lineWidth-len(header), 4)
	fmt.Printf("%s%s\n\n", header, strings.Repeat("─", padding))
}

// printGroupTable prints one comparable group, best first, with the winner.
func printGroupTable(group []output.BenchmarkResult) {
	first := group[0]
	fmt.Printf("  [%s] %s\n\n", first.Mode, first.UnitLabel())
	fmt.Println("  | Cache         | Threads |          Score |      Error |")
	fmt.Println("  |---------------|---------|----------------|------------|")

	entries := make([]output.WinnerEntry, len(group))
	for i, r := range group {
		fmt.Printf("  | %-13s | %7d | %14.3f | ± %8.3f |\n", r.Config.Impl, r.Threads, r.Score.Mean, r.Score.Error)
		entries[i] = output.WinnerEntry{Name: r.Config.Impl, Score: r.Score.Mean}
	}

	winners, runnerUp := output.FormatWinners(entries)
	if runnerUp != nil && entries[0].Score != 0 {
		best := entries[0].Score
		pct := (runnerUp.Score - best) / best * 100
		if pct < 0 {
			pct = -pct
		}
		fmt.Printf("\n  winner: %s (%.3f %s, %s is %.1f%% behind)\n",
			strings.Join(winners, ", "), best, first.UnitLabel(), runnerUp.Name, pct)
	}
	fmt.Println()
}

func printOverallRanking(rankings []output.Ranking) {
	if len(rankings) == 0 {
		return
	}
	printSuite("overall", "placement points")
	fmt.Println("  | Rank | Cache         | Score | Gold | Silver | Bronze |")
	fmt.Println("  |------|---------------|-------|------|--------|--------|")
	for _, r := range rankings {
		fmt.Printf("  | %4d | %-13s | %5.0f | %4d | %6d | %6d |\n", r.Rank, r.Name, r.Score, r.Gold, r.Silver, r.Bronze)
	}
	fmt.Println()
}

// printComparison prints each result's change against the baseline run.
func printComparison(path string, deltas []output.Delta) {
	printSuite("compare", path)
	if len(deltas) == 0 {
		fmt.Println("  (no matching benchmarks in baseline)")
		fmt.Println()
		return
	}
	fmt.Println("  | Benchmark                 | Mode  | Cache         |       Before |          Now |  Change |")
	fmt.Println("  |---------------------------|-------|---------------|--------------|--------------|---------|")
	for _, d := range deltas {
		r := d.Result
		fmt.Printf("  | %-25s | %-5s | %-13s | %12.3f | %12.3f | %+6.1f%% |\n",
			r.Op, r.Mode, r.Config.Impl, d.Baseline, r.Score.Mean, d.Change)
	}
	fmt.Println()
}
