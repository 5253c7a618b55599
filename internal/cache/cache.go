// Package cache provides a unified interface for benchmarking cache implementations.
package cache

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrUnknownVariant is returned by New for names that were never registered.
	ErrUnknownVariant = errors.New("unknown cache variant")
	// ErrCapacity is returned when the capacity cannot hold a single entry.
	ErrCapacity = errors.New("capacity too small")
)

// Cache is the minimal contract the harness measures: int keys, byte slice values.
// Implementations must be safe for concurrent use.
type Cache interface {
	Put(key int, value []byte) error
	Get(key int) ([]byte, bool)
	ContainsKey(key int) bool
	Name() string
	Close() error
}

// Waiter is implemented by caches that buffer writes asynchronously.
// Wait blocks until every buffered write is applied.
type Waiter interface {
	Wait()
}

// Options describes how a cache should be constructed.
type Options struct {
	Capacity      int64 // bytes
	SegmentCount  int   // -1 = auto
	HashTableSize int   // -1 = auto
	EntrySize     int   // expected bytes per entry, key + value + overhead
}

// Factory creates a new cache instance.
type Factory func(opts Options) (Cache, error)

// Entries returns how many entries of EntrySize fit in Capacity.
func (o Options) Entries() (int, error) {
	size := int64(max(o.EntrySize, 1))
	n := o.Capacity / size
	if n < 1 {
		return 0, fmt.Errorf("%w: %d bytes for %d byte entries", ErrCapacity, o.Capacity, size)
	}
	return int(min(n, int64(maxEntries))), nil
}

// maxEntries keeps entry-count caches that preallocate within uint32 range.
const maxEntries = 1 << 30

// Segments returns the configured segment count, or twice the CPU count when auto.
// The result is always a power of two.
func (o Options) Segments() int {
	n := o.SegmentCount
	if n <= 0 {
		n = runtime.NumCPU() * 2
	}
	return nextPow2(n)
}

// TableSize returns the per-segment hash table hint, or 8192 when auto.
func (o Options) TableSize() int {
	if o.HashTableSize <= 0 {
		return 8192
	}
	return nextPow2(o.HashTableSize)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
