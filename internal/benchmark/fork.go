package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// WorkerFlag switches the binary into single-trial worker mode.
const WorkerFlag = "fork-worker"

// forkGracePeriod is how long an interrupted fork may spend tearing down
// before it is killed.
const forkGracePeriod = 10 * time.Second

type forkOutput struct {
	Trial Trial  `json:"trial"`
	Error string `json:"error,omitempty"`
}

// WorkerArgs returns the command line a forked worker needs to reproduce one trial.
func WorkerArgs(cfg Config, op Operation, opts Options) []string {
	return []string{
		"-" + WorkerFlag,
		"-bench", op.Name,
		"-impl", cfg.Impl,
		"-valueSize", strconv.Itoa(cfg.ValueSize),
		"-capacity", strconv.FormatInt(cfg.Capacity, 10),
		"-segmentCount", strconv.Itoa(cfg.SegmentCount),
		"-hashTableSize", strconv.Itoa(cfg.HashTableSize),
		"-keys", strconv.Itoa(cfg.Keys),
		"-wi", strconv.Itoa(opts.Warmup),
		"-i", strconv.Itoa(opts.Measurement),
		"-r", opts.Iteration.String(),
		"-t", strconv.Itoa(opts.Threads),
	}
}

// ParseWorkerArgs reverses WorkerArgs. Flags it does not know are rejected.
func ParseWorkerArgs(args []string) (Config, Operation, Options, error) {
	cfg := DefaultConfig()
	opts := DefaultOptions()
	opts.Forks = 0

	fs := flag.NewFlagSet(WorkerFlag, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Bool(WorkerFlag, false, "")
	bench := fs.String("bench", "", "")
	fs.StringVar(&cfg.Impl, "impl", cfg.Impl, "")
	fs.IntVar(&cfg.ValueSize, "valueSize", cfg.ValueSize, "")
	fs.Int64Var(&cfg.Capacity, "capacity", cfg.Capacity, "")
	fs.IntVar(&cfg.SegmentCount, "segmentCount", cfg.SegmentCount, "")
	fs.IntVar(&cfg.HashTableSize, "hashTableSize", cfg.HashTableSize, "")
	fs.IntVar(&cfg.Keys, "keys", cfg.Keys, "")
	fs.IntVar(&opts.Warmup, "wi", opts.Warmup, "")
	fs.IntVar(&opts.Measurement, "i", opts.Measurement, "")
	fs.DurationVar(&opts.Iteration, "r", opts.Iteration, "")
	fs.IntVar(&opts.Threads, "t", opts.Threads, "")
	if err := fs.Parse(args); err != nil {
		return Config{}, Operation{}, Options{}, fmt.Errorf("worker args: %w", err)
	}

	op, err := Lookup(*bench)
	if err != nil {
		return Config{}, Operation{}, Options{}, err
	}
	if err := opts.Validate(); err != nil {
		return Config{}, Operation{}, Options{}, err
	}
	return cfg, op, opts, nil
}

// RunWorker runs one trial and writes it to w as JSON. A failed trial is
// still written, with the error attached, before the error is returned.
func RunWorker(ctx context.Context, w io.Writer, cfg Config, op Operation, opts Options) error {
	trial, err := RunTrial(ctx, cfg, op, opts)
	out := forkOutput{Trial: trial}
	if err != nil {
		out.Error = err.Error()
	}
	if encErr := json.NewEncoder(w).Encode(out); encErr != nil {
		return errors.Join(err, fmt.Errorf("encode trial: %w", encErr))
	}
	return err
}

// RunForks runs opts.Forks isolated processes of exe, each one trial of op.
// With zero forks the trial runs in this process. The first failing fork
// stops the remaining ones; completed trials, and the failed fork's measured
// iterations if it reported any, are returned with the error. Cancelling ctx
// interrupts a running fork rather than killing it, so it can tear down.
func RunForks(ctx context.Context, exe string, cfg Config, op Operation, opts Options) ([]Trial, error) {
	if opts.Forks == 0 {
		t, err := RunTrial(ctx, cfg, op, opts)
		return []Trial{t}, err
	}

	args := WorkerArgs(cfg, op, opts)
	trials := make([]Trial, 0, opts.Forks)
	for i := range opts.Forks {
		t, err := runFork(ctx, exe, args)
		if err != nil {
			if len(t.Iterations) > 0 {
				trials = append(trials, t)
			}
			return trials, fmt.Errorf("fork %d/%d: %w", i+1, opts.Forks, err)
		}
		trials = append(trials, t)
	}
	return trials, nil
}

func runFork(ctx context.Context, exe string, args []string) (Trial, error) {
	cmd := exec.CommandContext(ctx, exe, args...) //nolint:gosec // re-executes our own binary
	// An interrupted fork tears its cache down and still reports its partial trial.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = forkGracePeriod
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	runErr := cmd.Run()

	var out forkOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		if runErr != nil {
			return Trial{}, fmt.Errorf("run %s: %w", exe, runErr)
		}
		return Trial{}, fmt.Errorf("parse fork output: %w\n%s", err, stdout.Bytes())
	}
	if out.Error != "" {
		return out.Trial, errors.New(out.Error)
	}
	if runErr != nil {
		return out.Trial, fmt.Errorf("run %s: %w", exe, runErr)
	}
	return out.Trial, nil
}
