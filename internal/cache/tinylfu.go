package cache

import (
	"strconv"

	"github.com/vmihailenco/go-tinylfu"
)

type tinyLFUCache struct {
	c *tinylfu.SyncT
}

// NewTinyLFU creates a TinyLFU cache. Keys are stored in decimal form.
func NewTinyLFU(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	return &tinyLFUCache{c: tinylfu.NewSync(n, n*10)}, nil
}

func (c *tinyLFUCache) Put(key int, value []byte) error {
	c.c.Set(&tinylfu.Item{Key: strconv.Itoa(key), Value: value})
	return nil
}

func (c *tinyLFUCache) Get(key int) ([]byte, bool) {
	v, ok := c.c.Get(strconv.Itoa(key))
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (c *tinyLFUCache) ContainsKey(key int) bool {
	_, ok := c.c.Get(strconv.Itoa(key))
	return ok
}

func (*tinyLFUCache) Name() string {
	return "tinylfu"
}

func (*tinyLFUCache) Close() error { return nil }
