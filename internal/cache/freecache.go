package cache

import (
	"encoding/binary"

	"github.com/coocood/freecache"
)

// minFreecacheBytes is the smallest arena freecache accepts without rounding up.
const minFreecacheBytes = 512 * 1024

type freecacheCache struct {
	c *freecache.Cache
}

// NewFreecache creates a freecache arena of Capacity bytes.
// freecache fixes its own segment count, so SegmentCount is ignored.
func NewFreecache(opts Options) (Cache, error) {
	size := max(int(opts.Capacity), minFreecacheBytes) //nolint:gosec // 64-bit targets only
	return &freecacheCache{c: freecache.NewCache(size)}, nil
}

func freecacheKey(key int) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(key)) //nolint:gosec // bit pattern only
	return b
}

// Put surfaces freecache's rejection of oversized entries.
func (c *freecacheCache) Put(key int, value []byte) error {
	return c.c.Set(freecacheKey(key), value, 0)
}

func (c *freecacheCache) Get(key int) ([]byte, bool) {
	v, err := c.c.Get(freecacheKey(key))
	if err != nil {
		return nil, false
	}
	return v, true
}

func (c *freecacheCache) ContainsKey(key int) bool {
	_, err := c.c.Get(freecacheKey(key))
	return err == nil
}

func (*freecacheCache) Name() string {
	return "freecache"
}

func (c *freecacheCache) Close() error {
	c.c.Clear()
	return nil
}
