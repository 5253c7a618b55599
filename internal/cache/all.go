package cache

import (
	"fmt"
	"sync"
)

// DefaultVariant is the cache built when no variant is requested.
const DefaultVariant = "linked"

var (
	mu sync.RWMutex
	// registry maps variant names to their factory functions.
	registry = map[string]Factory{}
	// order keeps the display order of registered variants.
	order []string
)

func init() {
	Register("linked", NewLinked)
	Register("otter", NewOtter)
	Register("theine", NewTheine)
	Register("multicache", NewMulticache)
	Register("ttlcache", NewTTLCache)
	Register("ristretto", NewRistretto)
	Register("tinylfu", NewTinyLFU)
	Register("sieve", NewSieve)
	Register("s3-fifo", NewS3FIFO)
	Register("freelru-shard", NewFreeLRUSharded)
	Register("freelru-sync", NewFreeLRUSynced)
	Register("freecache", NewFreecache)
	Register("2q", NewTwoQueue)
	Register("s4lru", NewS4LRU)
	Register("clock", NewClock)
	Register("lru", NewLRU)
}

// Register adds a variant. Registering the same name twice replaces the factory.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; !ok {
		order = append(order, name)
	}
	registry[name] = f
}

// New constructs the named variant.
func New(variant string, opts Options) (Cache, error) {
	mu.RLock()
	f, ok := registry[variant]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	c, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", variant, err)
	}
	return c, nil
}

// Names returns all registered variant names in display order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Known reports whether a variant is registered.
func Known(variant string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[variant]
	return ok
}
