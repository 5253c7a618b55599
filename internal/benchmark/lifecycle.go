package benchmark

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tstromberg/cachebench/internal/cache"
)

// State is one trial's shared state: the workload and the single cache every
// worker reads and writes.
type State struct {
	cfg   Config
	cache cache.Cache

	closeOnce sync.Once
	closeErr  error
}

// Setup builds the configured cache and preloads keys 0..Keys-1 with
// ValueSize byte values. Nothing here is timed. Any failure is fatal for the
// trial; a partially built cache is closed before returning.
func Setup(cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := cache.New(cfg.Impl, cfg.CacheOptions())
	if err != nil {
		return nil, err
	}

	s := &State{cfg: cfg, cache: c}
	for i := range cfg.Keys {
		if err := c.Put(i, make([]byte, cfg.ValueSize)); err != nil {
			err = fmt.Errorf("preload key %d: %w", i, err)
			return nil, errors.Join(err, s.Teardown())
		}
	}
	if w, ok := c.(cache.Waiter); ok {
		w.Wait()
	}
	return s, nil
}

// Config returns the workload the state was built from.
func (s *State) Config() Config {
	return s.cfg
}

// Cache returns the cache under test.
func (s *State) Cache() cache.Cache {
	return s.cache
}

// Teardown closes the cache. Only the first call closes it; later calls
// return the first result.
func (s *State) Teardown() error {
	s.closeOnce.Do(func() {
		if err := s.cache.Close(); err != nil {
			s.closeErr = fmt.Errorf("close %s: %w", s.cfg.Impl, err)
		}
	})
	return s.closeErr
}
