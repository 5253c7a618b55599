package cache

import (
	"sync"

	"github.com/Code-Hex/go-generics-cache/policy/clock"
)

type clockCache struct {
	c  *clock.Cache[int, []byte]
	mu sync.Mutex
}

// NewClock creates a clock-based cache.
func NewClock(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	return &clockCache{
		c: clock.NewCache[int, []byte](clock.WithCapacity(n)),
	}, nil
}

func (c *clockCache) Put(key int, value []byte) error {
	c.mu.Lock()
	c.c.Set(key, value)
	c.mu.Unlock()
	return nil
}

func (c *clockCache) Get(key int) ([]byte, bool) {
	c.mu.Lock()
	v, ok := c.c.Get(key)
	c.mu.Unlock()
	return v, ok
}

func (c *clockCache) ContainsKey(key int) bool {
	_, ok := c.Get(key)
	return ok
}

func (*clockCache) Name() string {
	return "clock"
}

func (*clockCache) Close() error { return nil }
