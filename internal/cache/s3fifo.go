package cache

import (
	"github.com/scalalang2/golang-fifo/s3fifo"
)

type s3fifoCache struct {
	c *s3fifo.S3FIFO[int, []byte]
}

// NewS3FIFO creates an S3-FIFO cache.
func NewS3FIFO(opts Options) (Cache, error) {
	n, err := opts.Entries()
	if err != nil {
		return nil, err
	}
	return &s3fifoCache{c: s3fifo.New[int, []byte](n, 0)}, nil
}

func (c *s3fifoCache) Put(key int, value []byte) error {
	c.c.Set(key, value)
	return nil
}

func (c *s3fifoCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *s3fifoCache) ContainsKey(key int) bool {
	return c.c.Contains(key)
}

func (c *s3fifoCache) Name() string {
	return "s3-fifo"
}

func (c *s3fifoCache) Close() error {
	c.c.Purge()
	return nil
}
