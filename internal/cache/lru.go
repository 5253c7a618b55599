package cache

import lru "github.com/hashicorp/golang-lru/v2"

type lruCache struct {
	c *lru.Cache[int, []byte]
}

func NewLRU(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	c, err := lru.New[int, []byte](n)
	if err != nil {
		return nil, err
	}
	return &lruCache{c: c}, nil
}

func (c *lruCache) Put(key int, value []byte) error {
	c.c.Add(key, value)
	return nil
}

func (c *lruCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *lruCache) ContainsKey(key int) bool {
	return c.c.Contains(key)
}

func (c *lruCache) Name() string {
	return "lru"
}

func (c *lruCache) Close() error {
	c.c.Purge()
	return nil
}
