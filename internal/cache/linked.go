package cache

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/zeebo/xxh3"
)

// entryOverhead approximates per-entry bookkeeping (list node, map slot, slice header).
const entryOverhead = 64

// linkedCache is a segmented LRU bounded by bytes rather than entries.
// Each segment owns its lock; a key always maps to the same segment.
type linkedCache struct {
	segments []linkedSegment
	mask     uint64
}

type linkedSegment struct {
	mu    sync.Mutex
	lru   *simplelru.LRU[int, []byte]
	bytes int64
	limit int64
}

// NewLinked creates a segmented, byte-bounded LRU cache.
func NewLinked(opts Options) (Cache, error) {
	n := opts.Segments()
	limit := opts.Capacity / int64(n)
	if limit < int64(max(opts.EntrySize, 1)) {
		return nil, fmt.Errorf("%w: %d bytes over %d segments cannot hold a %d byte entry",
			ErrCapacity, opts.Capacity, n, opts.EntrySize)
	}

	c := &linkedCache{
		segments: make([]linkedSegment, n),
		mask:     uint64(n - 1),
	}
	// Bytes are the real bound; the entry limit only has to be unreachable.
	maxCount := int(min(limit/entryOverhead+1, int64(maxEntries)))
	for i := range c.segments {
		l, err := simplelru.NewLRU[int, []byte](maxCount, nil)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		c.segments[i].lru = l
		c.segments[i].limit = limit
	}
	return c, nil
}

func cost(v []byte) int64 {
	return int64(len(v)) + entryOverhead
}

func (c *linkedCache) segment(key int) *linkedSegment {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key)) //nolint:gosec // bit pattern only
	return &c.segments[xxh3.Hash(b[:])&c.mask]
}

func (c *linkedCache) Put(key int, value []byte) error {
	s := c.segment(key)
	s.mu.Lock()
	if old, ok := s.lru.Peek(key); ok {
		s.bytes -= cost(old)
	}
	s.lru.Add(key, value)
	s.bytes += cost(value)
	for s.bytes > s.limit && s.lru.Len() > 1 {
		_, old, ok := s.lru.RemoveOldest()
		if !ok {
			break
		}
		s.bytes -= cost(old)
	}
	s.mu.Unlock()
	return nil
}

func (c *linkedCache) Get(key int) ([]byte, bool) {
	s := c.segment(key)
	s.mu.Lock()
	v, ok := s.lru.Get(key)
	s.mu.Unlock()
	return v, ok
}

func (c *linkedCache) ContainsKey(key int) bool {
	s := c.segment(key)
	s.mu.Lock()
	ok := s.lru.Contains(key)
	s.mu.Unlock()
	return ok
}

func (*linkedCache) Name() string {
	return "linked"
}

func (c *linkedCache) Close() error {
	for i := range c.segments {
		s := &c.segments[i]
		s.mu.Lock()
		s.lru.Purge()
		s.bytes = 0
		s.mu.Unlock()
	}
	return nil
}
