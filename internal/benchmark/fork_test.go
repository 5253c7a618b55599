package benchmark

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/tstromberg/cachebench/internal/cache"
)

const (
	// forkChildEnv makes the test binary act as a fork worker.
	forkChildEnv = "CACHEBENCH_TEST_FORK"
	// markerDirEnv enables the marker variant in a child and names where it writes.
	markerDirEnv  = "CACHEBENCH_TEST_MARKER_DIR"
	markerVariant = "test-marker"
)

func TestMain(m *testing.M) {
	if os.Getenv(forkChildEnv) == "1" {
		os.Exit(runForkChild())
	}
	os.Exit(m.Run())
}

// runForkChild mirrors what main does with -fork-worker.
func runForkChild() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if dir := os.Getenv(markerDirEnv); dir != "" {
		cache.Register(markerVariant, func(opts cache.Options) (cache.Cache, error) {
			c, err := cache.New(cache.DefaultVariant, opts)
			if err != nil {
				return nil, err
			}
			if err := os.WriteFile(filepath.Join(dir, "ready"), nil, 0o600); err != nil {
				return nil, err
			}
			return &markerCache{Cache: c, dir: dir}, nil
		})
	}

	cfg, op, opts, err := ParseWorkerArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := RunWorker(ctx, os.Stdout, cfg, op, opts); err != nil {
		return 1
	}
	return 0
}

// markerCache leaves a file behind when it is closed.
type markerCache struct {
	cache.Cache
	dir string
}

func (c *markerCache) Close() error {
	if err := os.WriteFile(filepath.Join(c.dir, "closed"), nil, 0o600); err != nil {
		return err
	}
	return c.Cache.Close()
}

// forkBinary returns the test binary, set up to run as a fork worker.
func forkBinary(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}
	t.Setenv(forkChildEnv, "1")
	return exe
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Keys = 100
	cfg.ValueSize = 4
	cfg.Capacity = 1 << 20
	cfg.SegmentCount = 1
	return cfg
}

func TestParseWorkerArgsRoundTrip(t *testing.T) {
	op, err := Lookup(ContainsNonExisting)
	if err != nil {
		t.Fatal(err)
	}
	cfg := smallConfig()
	cfg.HashTableSize = 512
	opts := quickOptions()
	opts.Threads = 3

	gotCfg, gotOp, gotOpts, err := ParseWorkerArgs(WorkerArgs(cfg, op, opts))
	if err != nil {
		t.Fatal(err)
	}
	if gotCfg != cfg {
		t.Errorf("config = %+v, want %+v", gotCfg, cfg)
	}
	if gotOp.Name != op.Name || gotOp.Threads != op.Threads {
		t.Errorf("operation = %s/%s, want %s/%s", gotOp.Name, gotOp.Threads, op.Name, op.Threads)
	}
	if gotOpts.Warmup != opts.Warmup || gotOpts.Measurement != opts.Measurement ||
		gotOpts.Iteration != opts.Iteration || gotOpts.Threads != opts.Threads {
		t.Errorf("options = %+v, want %+v", gotOpts, opts)
	}
}

func TestParseWorkerArgsRejects(t *testing.T) {
	tests := [][]string{
		{"-bench", "noSuchOp"},
		{"-bench", GetNonExisting, "-i", "0"},
		{"-bench", GetNonExisting, "-unknown", "1"},
	}
	for _, args := range tests {
		if _, _, _, err := ParseWorkerArgs(args); err == nil {
			t.Errorf("ParseWorkerArgs(%v) succeeded", args)
		}
	}
}

func TestRunForksChildProcesses(t *testing.T) {
	exe := forkBinary(t)
	op, err := Lookup(GetSingleThreaded)
	if err != nil {
		t.Fatal(err)
	}
	cfg := smallConfig()
	opts := quickOptions()
	opts.Forks = 2
	opts.Warmup = 0

	trials, err := RunForks(context.Background(), exe, cfg, op, opts)
	if err != nil {
		t.Fatalf("RunForks: %v", err)
	}
	if len(trials) != 2 {
		t.Fatalf("got %d trials, want 2", len(trials))
	}
	for i, tr := range trials {
		if tr.Op != op.Name || tr.Config != cfg || tr.Threads != 1 {
			t.Errorf("trial %d = %s %+v threads=%d", i, tr.Op, tr.Config, tr.Threads)
		}
		if len(tr.Iterations) != opts.Measurement {
			t.Errorf("trial %d has %d iterations, want %d", i, len(tr.Iterations), opts.Measurement)
		}
		for _, it := range tr.Iterations {
			if it.Ops() == 0 {
				t.Errorf("trial %d recorded an iteration with no operations", i)
			}
		}
	}
}

func TestRunForksReportsChildFailure(t *testing.T) {
	exe := forkBinary(t)
	op, err := Lookup(GetNonExisting)
	if err != nil {
		t.Fatal(err)
	}
	cfg := smallConfig()
	cfg.Impl = "no-such-cache"
	opts := quickOptions()
	opts.Forks = 3

	trials, err := RunForks(context.Background(), exe, cfg, op, opts)
	if err == nil {
		t.Fatal("RunForks succeeded with an unknown variant")
	}
	if !strings.Contains(err.Error(), "fork 1/3") || !strings.Contains(err.Error(), cache.ErrUnknownVariant.Error()) {
		t.Errorf("error = %v, want the first fork's setup failure", err)
	}
	if len(trials) != 0 {
		t.Errorf("got %d trials, want none", len(trials))
	}
}

func TestRunForksInterruptsChildOnCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("os.Interrupt cannot be sent to a process on windows")
	}
	exe := forkBinary(t)
	dir := t.TempDir()
	t.Setenv(markerDirEnv, dir)

	op, err := Lookup(GetMultiThreaded)
	if err != nil {
		t.Fatal(err)
	}
	cfg := smallConfig()
	cfg.Impl = markerVariant
	opts := quickOptions()
	opts.Forks = 1
	opts.Warmup = 0
	opts.Measurement = 1
	opts.Iteration = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ready := filepath.Join(dir, "ready")
		deadline := time.Now().Add(30 * time.Second)
		for time.Now().Before(deadline) {
			if _, err := os.Stat(ready); err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()

	start := time.Now()
	_, err = RunForks(ctx, exe, cfg, op, opts)
	if err == nil {
		t.Fatal("RunForks succeeded after cancellation")
	}
	if strings.Contains(err.Error(), "signal: killed") {
		t.Fatalf("fork was killed instead of interrupted: %v", err)
	}
	if !strings.Contains(err.Error(), context.Canceled.Error()) {
		t.Errorf("error = %v, want the child's cancellation", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "closed")); err != nil {
		t.Errorf("fork did not close its cache: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= time.Minute {
		t.Errorf("fork ran for %s, the full iteration", elapsed)
	}
}
