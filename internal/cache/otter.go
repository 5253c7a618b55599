package cache

import "github.com/maypok86/otter/v2"

type otterCache struct {
	c *otter.Cache[int, []byte]
}

// NewOtter creates an Otter cache.
func NewOtter(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	c, err := otter.New(&otter.Options[int, []byte]{MaximumSize: n})
	if err != nil {
		return nil, err
	}
	return &otterCache{c: c}, nil
}

func (c *otterCache) Put(key int, value []byte) error {
	c.c.Set(key, value)
	return nil
}

func (c *otterCache) Get(key int) ([]byte, bool) {
	return c.c.GetIfPresent(key)
}

func (c *otterCache) ContainsKey(key int) bool {
	_, ok := c.c.GetIfPresent(key)
	return ok
}

func (*otterCache) Name() string {
	return "otter"
}

func (c *otterCache) Close() error {
	c.c.InvalidateAll()
	return nil
}
