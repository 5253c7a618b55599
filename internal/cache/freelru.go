package cache

import (
	"encoding/binary"

	lru "github.com/elastic/go-freelru"
	"github.com/zeebo/xxh3"
)

func hashInt(i int) uint32 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(i)) //nolint:gosec // bit pattern only
	return uint32(xxh3.Hash(b[:]))
}

// freeLRUSizes returns entry capacity and hash table size; freelru needs size >= capacity.
func freeLRUSizes(opts Options, tables int) (capacity, size uint32, err error) {
	n, err := opts.Entries()
	if err != nil {
		return 0, 0, err
	}
	capacity = uint32(max(n, tables)) //nolint:gosec // bounded by maxEntries
	size = uint32(nextPow2(max(n, opts.TableSize()*tables))) //nolint:gosec // bounded
	return capacity, size, nil
}

type freeLRUSyncedCache struct {
	c *lru.SyncedLRU[int, []byte]
}

// NewFreeLRUSynced creates a single-lock freelru cache.
func NewFreeLRUSynced(opts Options) (Cache, error) {
	capacity, size, err := freeLRUSizes(opts, 1)
	if err != nil {
		return nil, err
	}
	c, err := lru.NewSyncedWithSize[int, []byte](capacity, size, hashInt)
	if err != nil {
		return nil, err
	}
	return &freeLRUSyncedCache{c: c}, nil
}

func (c *freeLRUSyncedCache) Put(key int, value []byte) error {
	c.c.Add(key, value)
	return nil
}

func (c *freeLRUSyncedCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *freeLRUSyncedCache) ContainsKey(key int) bool {
	return c.c.Contains(key)
}

func (c *freeLRUSyncedCache) Name() string {
	return "freelru-sync"
}

func (c *freeLRUSyncedCache) Close() error {
	c.c.Purge()
	return nil
}

type freeLRUShardedCache struct {
	c *lru.ShardedLRU[int, []byte]
}

// NewFreeLRUSharded creates a freelru cache with one shard per segment.
func NewFreeLRUSharded(opts Options) (Cache, error) {
	shards := opts.Segments()
	capacity, size, err := freeLRUSizes(opts, shards)
	if err != nil {
		return nil, err
	}
	c, err := lru.NewShardedWithSize[int, []byte](uint32(shards), capacity, size, hashInt) //nolint:gosec // small power of two
	if err != nil {
		return nil, err
	}
	return &freeLRUShardedCache{c: c}, nil
}

func (c *freeLRUShardedCache) Put(key int, value []byte) error {
	c.c.Add(key, value)
	return nil
}

func (c *freeLRUShardedCache) Get(key int) ([]byte, bool) {
	return c.c.Get(key)
}

func (c *freeLRUShardedCache) ContainsKey(key int) bool {
	return c.c.Contains(key)
}

func (c *freeLRUShardedCache) Name() string {
	return "freelru-shard"
}

func (c *freeLRUShardedCache) Close() error {
	c.c.Purge()
	return nil
}
