package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type ttlcacheCache struct {
	c *ttlcache.Cache[int, []byte]
}

// NewTTLCache creates a TTL-based cache and starts its expiration janitor.
func NewTTLCache(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	c := ttlcache.New[int, []byte](
		ttlcache.WithCapacity[int, []byte](uint64(n)), //nolint:gosec // n always positive
		ttlcache.WithTTL[int, []byte](time.Hour),     // long TTL, expiration is not measured
	)
	go c.Start()
	return &ttlcacheCache{c: c}, nil
}

func (c *ttlcacheCache) Put(key int, value []byte) error {
	c.c.Set(key, value, ttlcache.DefaultTTL)
	return nil
}

func (c *ttlcacheCache) Get(key int) ([]byte, bool) {
	item := c.c.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *ttlcacheCache) ContainsKey(key int) bool {
	return c.c.Has(key)
}

func (*ttlcacheCache) Name() string {
	return "ttlcache"
}

func (c *ttlcacheCache) Close() error {
	c.c.Stop()
	return nil
}
