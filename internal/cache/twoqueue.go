package cache

import lru "github.com/hashicorp/golang-lru/v2"

type twoQueueCache struct {
	c *lru.TwoQueueCache[int, []byte]
}

func NewTwoQueue(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	c, err := lru.New2Q[int, []byte](n)
	if err != nil {
		return nil, err
	}
	return &twoQueueCache{c: c}, nil
}

func (c *twoQueueCache) Put(key int, value []byte) error {
	c.c.Add(key, value)
	return nil
}

func (c *twoQueueCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *twoQueueCache) ContainsKey(key int) bool {
	return c.c.Contains(key)
}

func (c *twoQueueCache) Name() string {
	return "2q"
}

func (c *twoQueueCache) Close() error {
	c.c.Purge()
	return nil
}
