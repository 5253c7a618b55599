package benchmark

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tstromberg/cachebench/internal/cache"
)

func quickOptions() Options {
	o := DefaultOptions()
	o.Warmup = 1
	o.Measurement = 2
	o.Forks = 0
	o.Iteration = 5 * time.Millisecond
	return o
}

func TestSetupPreloadsKeySpace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keys = 10
	cfg.ValueSize = 4
	cfg.Capacity = 1 << 20

	s, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer s.Teardown() //nolint:errcheck // test cleanup

	c := s.Cache()
	for k := range cfg.Keys {
		v, ok := c.Get(k)
		if !ok || len(v) != cfg.ValueSize {
			t.Errorf("Get(%d) = %d bytes, %v; want %d bytes", k, len(v), ok, cfg.ValueSize)
		}
	}
	if v, ok := c.Get(5); !ok || len(v) != 4 {
		t.Errorf("Get(5) = %v, %v; want 4 byte value", v, ok)
	}
	if _, ok := c.Get(10); ok {
		t.Error("Get(10) found a key outside the preloaded range")
	}
	if s.Config() != cfg {
		t.Errorf("Config() = %+v, want %+v", s.Config(), cfg)
	}
}

func TestSetupExactPutCount(t *testing.T) {
	rec := useRecorder(t, &recordingCache{})
	s, err := Setup(recordingConfig(25))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Teardown() //nolint:errcheck // test cleanup

	if got := rec.puts.Load(); got != 25 {
		t.Errorf("preload issued %d puts, want 25", got)
	}
	if len(rec.m) != 25 {
		t.Errorf("cache holds %d entries, want 25", len(rec.m))
	}
	for k := range 25 {
		if _, ok := rec.m[k]; !ok {
			t.Errorf("key %d not preloaded", k)
		}
	}
}

func TestSetupUnknownVariant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Impl = "no-such-cache"
	if _, err := Setup(cfg); !errors.Is(err, cache.ErrUnknownVariant) {
		t.Fatalf("Setup error = %v, want ErrUnknownVariant", err)
	}

	op, err := Lookup(GetSingleThreaded)
	if err != nil {
		t.Fatal(err)
	}
	trial, err := RunTrial(context.Background(), cfg, op, quickOptions())
	if !errors.Is(err, cache.ErrUnknownVariant) {
		t.Fatalf("RunTrial error = %v, want ErrUnknownVariant", err)
	}
	if len(trial.Iterations) != 0 {
		t.Errorf("%d iterations ran after a failed setup", len(trial.Iterations))
	}
}

func TestSetupRejectsEmptyKeySpace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keys = 0
	if _, err := Setup(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Setup error = %v, want ErrInvalidConfig", err)
	}
}

func TestSetupPreloadFailureClosesCache(t *testing.T) {
	rec := useRecorder(t, &recordingCache{failPutAfter: 3})
	_, err := Setup(recordingConfig(10))
	if !errors.Is(err, errPut) {
		t.Fatalf("Setup error = %v, want errPut", err)
	}
	if got := rec.closes.Load(); got != 1 {
		t.Errorf("Close called %d times, want 1", got)
	}
}

func TestTeardownOnce(t *testing.T) {
	rec := useRecorder(t, &recordingCache{})
	s, err := Setup(recordingConfig(5))
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := s.Teardown(); err != nil {
			t.Fatal(err)
		}
	}
	if got := rec.closes.Load(); got != 1 {
		t.Errorf("Close called %d times, want 1", got)
	}
}

func TestRunTrialTearsDownOnEveryPath(t *testing.T) {
	tests := []struct {
		name    string
		rec     *recordingCache
		op      string
		cancel  bool
		wantErr bool
	}{
		{name: "success", rec: &recordingCache{}, op: GetMultiThreaded},
		{name: "put error", rec: &recordingCache{failPutAfter: 100}, op: PutMultiThreaded, wantErr: true},
		{name: "panic", rec: &recordingCache{panicOnGet: true}, op: GetSingleThreaded, wantErr: true},
		{name: "cancelled", rec: &recordingCache{}, op: PutSingleThreaded, cancel: true, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := useRecorder(t, tc.rec)
			op, err := Lookup(tc.op)
			if err != nil {
				t.Fatal(err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tc.cancel {
				cancel()
			}

			_, err = RunTrial(ctx, recordingConfig(50), op, quickOptions())
			if (err != nil) != tc.wantErr {
				t.Fatalf("RunTrial error = %v, wantErr %v", err, tc.wantErr)
			}
			if got := rec.closes.Load(); got != 1 {
				t.Errorf("Close called %d times, want 1", got)
			}
		})
	}
}

func TestRunTrialTeardownErrorIsWarning(t *testing.T) {
	useRecorder(t, &recordingCache{closeErr: errors.New("leak")})
	op, err := Lookup(GetSingleThreaded)
	if err != nil {
		t.Fatal(err)
	}
	trial, err := RunTrial(context.Background(), recordingConfig(10), op, quickOptions())
	if err != nil {
		t.Fatalf("RunTrial: %v", err)
	}
	if len(trial.Iterations) != 2 {
		t.Errorf("got %d measured iterations, want 2", len(trial.Iterations))
	}
	if len(trial.Warnings) != 1 || !strings.Contains(trial.Warnings[0], ErrTeardown.Error()) {
		t.Errorf("Warnings = %v, want one teardown warning", trial.Warnings)
	}
}

func TestRunTrialTeardownErrorJoinsFailure(t *testing.T) {
	useRecorder(t, &recordingCache{failPutAfter: 20, closeErr: errors.New("leak")})
	op, err := Lookup(PutSingleThreaded)
	if err != nil {
		t.Fatal(err)
	}
	_, err = RunTrial(context.Background(), recordingConfig(10), op, quickOptions())
	if !errors.Is(err, errPut) || !errors.Is(err, ErrTeardown) {
		t.Fatalf("RunTrial error = %v, want errPut and ErrTeardown", err)
	}
}
