package cache

import "github.com/dgraph-io/ristretto"

type ristrettoCache struct {
	c *ristretto.Cache
}

// NewRistretto creates a Ristretto cache with one unit of cost per entry.
func NewRistretto(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(n) * 10,
		MaxCost:            int64(n),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &ristrettoCache{c: c}, nil
}

// Put hands the entry to Ristretto's write buffer; dropped sets are not errors.
func (c *ristrettoCache) Put(key int, value []byte) error {
	c.c.Set(key, value, 1)
	return nil
}

func (c *ristrettoCache) Get(key int) ([]byte, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (c *ristrettoCache) ContainsKey(key int) bool {
	_, ok := c.c.Get(key)
	return ok
}

// Wait flushes pending buffered writes.
func (c *ristrettoCache) Wait() {
	c.c.Wait()
}

func (*ristrettoCache) Name() string {
	return "ristretto"
}

func (c *ristrettoCache) Close() error {
	c.c.Wait()
	c.c.Close()
	return nil
}
