package benchmark

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tstromberg/cachebench/internal/cache"
)

const recordingVariant = "test-recording"

// recordingCache is a map-backed cache that records how the harness drives it.
type recordingCache struct {
	mu sync.Mutex
	m  map[int][]byte

	puts        atomic.Int64
	lastGet     atomic.Int64
	lastContain atomic.Int64
	closes      atomic.Int32

	failPutAfter int64 // 0 = never
	panicOnGet   bool
	closeErr     error
}

var errPut = errors.New("put rejected")

func (c *recordingCache) Put(key int, value []byte) error {
	n := c.puts.Add(1)
	if c.failPutAfter > 0 && n > c.failPutAfter {
		return errPut
	}
	c.mu.Lock()
	c.m[key] = value
	c.mu.Unlock()
	return nil
}

func (c *recordingCache) Get(key int) ([]byte, bool) {
	if c.panicOnGet {
		panic("boom")
	}
	c.lastGet.Store(int64(key))
	c.mu.Lock()
	v, ok := c.m[key]
	c.mu.Unlock()
	return v, ok
}

func (c *recordingCache) ContainsKey(key int) bool {
	c.lastContain.Store(int64(key))
	c.mu.Lock()
	_, ok := c.m[key]
	c.mu.Unlock()
	return ok
}

func (*recordingCache) Name() string { return recordingVariant }

func (c *recordingCache) Close() error {
	c.closes.Add(1)
	return c.closeErr
}

var (
	recMu   sync.Mutex
	nextRec *recordingCache
)

func init() {
	cache.Register(recordingVariant, func(cache.Options) (cache.Cache, error) {
		recMu.Lock()
		defer recMu.Unlock()
		if nextRec == nil {
			nextRec = &recordingCache{}
		}
		c := nextRec
		c.m = make(map[int][]byte)
		nextRec = nil
		return c, nil
	})
}

// useRecorder makes the next recording-variant construction return c.
func useRecorder(t *testing.T, c *recordingCache) *recordingCache {
	t.Helper()
	recMu.Lock()
	nextRec = c
	recMu.Unlock()
	t.Cleanup(func() {
		recMu.Lock()
		nextRec = nil
		recMu.Unlock()
	})
	return c
}

func recordingConfig(keys int) Config {
	cfg := DefaultConfig()
	cfg.Impl = recordingVariant
	cfg.Keys = keys
	cfg.ValueSize = 4
	return cfg
}
