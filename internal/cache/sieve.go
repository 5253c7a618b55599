package cache

import (
	"github.com/scalalang2/golang-fifo/sieve"
)

type sieveCache struct {
	c *sieve.Sieve[int, []byte]
}

// NewSieve creates a SIEVE cache.
func NewSieve(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	return &sieveCache{c: sieve.New[int, []byte](n, 0)}, nil
}

func (c *sieveCache) Put(key int, value []byte) error {
	c.c.Set(key, value)
	return nil
}

func (c *sieveCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *sieveCache) ContainsKey(key int) bool {
	return c.c.Contains(key)
}

func (c *sieveCache) Name() string {
	return "sieve"
}

func (c *sieveCache) Close() error {
	c.c.Purge()
	return nil
}
