package cache

import "github.com/Yiling-J/theine-go"

type theineCache struct {
	c *theine.Cache[int, []byte]
}

// NewTheine creates a Theine cache.
func NewTheine(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	c, err := theine.NewBuilder[int, []byte](int64(n)).Build()
	if err != nil {
		return nil, err
	}
	return &theineCache{c: c}, nil
}

func (c *theineCache) Put(key int, value []byte) error {
	c.c.Set(key, value, 1)
	return nil
}

func (c *theineCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *theineCache) ContainsKey(key int) bool {
	_, ok := c.c.Get(key)
	return ok
}

func (*theineCache) Name() string {
	return "theine"
}

func (c *theineCache) Close() error {
	c.c.Close()
	return nil
}
