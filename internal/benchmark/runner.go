package benchmark

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTeardown marks a failure to release the cache after measurements were taken.
// Iterations recorded before it are still valid.
var ErrTeardown = errors.New("teardown failed")

// opsBatchSize is how many operations a worker runs between stop checks.
const opsBatchSize = 1000

// WorkerSample is what one worker did during one iteration.
type WorkerSample struct {
	Ops     int64         `json:"ops"`
	Elapsed time.Duration `json:"elapsed"`
}

// Iteration holds one timed iteration across all workers.
type Iteration struct {
	Workers []WorkerSample `json:"workers"`
}

// Ops returns the total operations across workers.
func (it Iteration) Ops() int64 {
	var n int64
	for _, w := range it.Workers {
		n += w.Ops
	}
	return n
}

// Throughput returns operations per unit, summed over workers.
func (it Iteration) Throughput(unit time.Duration) float64 {
	var sum float64
	for _, w := range it.Workers {
		if w.Elapsed > 0 {
			sum += float64(w.Ops) / (float64(w.Elapsed) / float64(unit))
		}
	}
	return sum
}

// AvgTime returns units per operation as seen by a single worker.
func (it Iteration) AvgTime(unit time.Duration) float64 {
	var ops int64
	var elapsed time.Duration
	for _, w := range it.Workers {
		ops += w.Ops
		elapsed += w.Elapsed
	}
	if ops == 0 {
		return 0
	}
	return float64(elapsed) / float64(unit) / float64(ops)
}

// Score returns the iteration's value in the given mode.
func (it Iteration) Score(mode Mode, unit time.Duration) float64 {
	if mode == Throughput {
		return it.Throughput(unit)
	}
	return it.AvgTime(unit)
}

// Trial is one fork's worth of measurements for one operation and workload.
type Trial struct {
	Op         string      `json:"op"`
	Config     Config      `json:"config"`
	Threads    int         `json:"threads"`
	Iterations []Iteration `json:"iterations"` // measured only; warmups are dropped
	Warnings   []string    `json:"warnings,omitempty"`
}

type worker struct {
	ts     *ThreadState
	sample WorkerSample
}

// RunTrial sets up the cache, runs warmup and measured iterations of op, and
// tears the cache down on every exit path. Measured iterations collected
// before a failure are returned alongside the error. A teardown failure after
// a clean run is recorded in Warnings rather than returned.
func RunTrial(ctx context.Context, cfg Config, op Operation, opts Options) (trial Trial, err error) {
	trial = Trial{Op: op.Name, Config: cfg, Threads: op.ThreadCount(opts.Threads)}

	s, err := Setup(cfg)
	if err != nil {
		return trial, fmt.Errorf("setup: %w", err)
	}
	defer func() {
		terr := s.Teardown()
		if terr == nil {
			return
		}
		terr = fmt.Errorf("%w: %w", ErrTeardown, terr)
		if err != nil {
			err = errors.Join(err, terr)
			return
		}
		trial.Warnings = append(trial.Warnings, terr.Error())
	}()

	workers := make([]*worker, trial.Threads)
	for i := range workers {
		workers[i] = &worker{ts: NewThreadState(cfg.Keys)}
	}

	for i := range opts.Warmup + opts.Measurement {
		if err := ctx.Err(); err != nil {
			return trial, err
		}
		it, err := runIteration(ctx, s, op, workers, opts.Iteration)
		if err != nil {
			return trial, fmt.Errorf("%s iteration %d: %w", op.Name, i+1, err)
		}
		if i >= opts.Warmup {
			trial.Iterations = append(trial.Iterations, it)
		}
	}
	return trial, nil
}

// runIteration releases all workers at once and stops them when d elapses,
// ctx is cancelled, or any worker fails.
func runIteration(ctx context.Context, s *State, op Operation, workers []*worker, d time.Duration) (Iteration, error) {
	var stop atomic.Bool
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, len(workers))

	for i, w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			errs[i] = w.run(s, op, start, &stop)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	close(start)
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-done:
	}
	stop.Store(true)
	timer.Stop()
	<-done

	it := Iteration{Workers: make([]WorkerSample, len(workers))}
	for i, w := range workers {
		it.Workers[i] = w.sample
	}
	if err := errors.Join(errs...); err != nil {
		return it, err
	}
	return it, ctx.Err()
}

func (w *worker) run(s *State, op Operation, start <-chan struct{}, stop *atomic.Bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stop.Store(true)
			err = fmt.Errorf("%s panicked: %v", op.Name, r)
		}
	}()

	<-start
	var ops int64
	begin := time.Now()
	defer func() {
		w.sample = WorkerSample{Ops: ops, Elapsed: time.Since(begin)}
	}()

	for !stop.Load() {
		for range opsBatchSize {
			if err := op.Run(s, w.ts); err != nil {
				stop.Store(true)
				return err
			}
		}
		ops += opsBatchSize
	}
	return nil
}
