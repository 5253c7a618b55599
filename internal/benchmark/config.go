package benchmark

import (
	"errors"
	"fmt"

	"github.com/tstromberg/cachebench/internal/cache"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid workload")

// Workload defaults.
const (
	DefaultValueSize     = 2048
	DefaultCapacity      = int64(1) << 30
	DefaultSegmentCount  = -1
	DefaultHashTableSize = -1
	DefaultKeys          = 1_000_000
)

// MissKey is the key the miss-path operations look up.
const MissKey = 0

// entryOverhead is added to ValueSize when telling a backend how big entries are.
const entryOverhead = 64

// Config describes one benchmark configuration. It is passed by value and never
// modified once a run starts.
type Config struct {
	ValueSize     int    `json:"valueSize"`
	Capacity      int64  `json:"capacity"`
	SegmentCount  int    `json:"segmentCount"`
	HashTableSize int    `json:"hashTableSize"`
	Keys          int    `json:"keys"`
	Impl          string `json:"impl"`
}

// DefaultConfig returns the stock workload: 2 KiB values, 1 GiB, 1M keys, linked.
func DefaultConfig() Config {
	return Config{
		ValueSize:     DefaultValueSize,
		Capacity:      DefaultCapacity,
		SegmentCount:  DefaultSegmentCount,
		HashTableSize: DefaultHashTableSize,
		Keys:          DefaultKeys,
		Impl:          cache.DefaultVariant,
	}
}

// Validate rejects a key space that would leave the cursor range empty and
// make MissKey the only preloaded key. Other bad values are left for the
// cache constructor to reject.
func (c Config) Validate() error {
	if c.Keys < 1 {
		return fmt.Errorf("%w: keys must be at least 1, got %d", ErrInvalidConfig, c.Keys)
	}
	return nil
}

// CacheOptions converts the workload into backend construction options.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Capacity:      c.Capacity,
		SegmentCount:  c.SegmentCount,
		HashTableSize: c.HashTableSize,
		EntrySize:     c.ValueSize + entryOverhead,
	}
}

// String renders the parameters the way result tables label them.
func (c Config) String() string {
	return fmt.Sprintf("impl=%s valueSize=%d capacity=%d segmentCount=%d hashTableSize=%d keys=%d",
		c.Impl, c.ValueSize, c.Capacity, c.SegmentCount, c.HashTableSize, c.Keys)
}
