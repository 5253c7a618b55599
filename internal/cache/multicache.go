package cache

import "github.com/codeGROOVE-dev/multicache"

type multicacheCache struct {
	c *multicache.Cache[int, []byte]
}

// NewMulticache creates a multicache instance.
func NewMulticache(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	return &multicacheCache{c: multicache.New[int, []byte](multicache.Size(n))}, nil
}

func (c *multicacheCache) Put(key int, value []byte) error {
	c.c.Set(key, value)
	return nil
}

func (c *multicacheCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *multicacheCache) ContainsKey(key int) bool {
	_, ok := c.c.Get(key)
	return ok
}

func (*multicacheCache) Name() string {
	return "multicache"
}

func (c *multicacheCache) Close() error {
	c.c.Close()
	return nil
}
