package cache

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func smallOptions() Options {
	return Options{Capacity: 1 << 20, SegmentCount: -1, HashTableSize: -1, EntrySize: 4 + entryOverhead}
}

func TestNewUnknownVariant(t *testing.T) {
	_, err := New("no-such-cache", smallOptions())
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("New(unknown) error = %v, want ErrUnknownVariant", err)
	}
}

func TestNamesStartWithDefault(t *testing.T) {
	names := Names()
	if len(names) == 0 || names[0] != DefaultVariant {
		t.Fatalf("Names() = %v, want %q first", names, DefaultVariant)
	}
	if !slices.Contains(names, "otter") {
		t.Errorf("Names() = %v, missing otter", names)
	}
	if !Known(DefaultVariant) || Known("no-such-cache") {
		t.Error("Known() disagrees with the registry")
	}
}

func TestAllVariantsPutGet(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := New(name, smallOptions())
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			defer c.Close() //nolint:errcheck // test cleanup

			if c.Name() != name {
				t.Errorf("Name() = %q, want %q", c.Name(), name)
			}
			for i := range 10 {
				if err := c.Put(i, make([]byte, 4)); err != nil {
					t.Fatalf("Put(%d): %v", i, err)
				}
			}
			if w, ok := c.(Waiter); ok {
				w.Wait()
			}
			// Admission policies may drop entries, so only absent keys are asserted.
			if _, ok := c.Get(999_999); ok {
				t.Error("Get(absent) reported a hit")
			}
			if c.ContainsKey(999_999) {
				t.Error("ContainsKey(absent) = true")
			}
		})
	}
}

func TestLinkedPreload(t *testing.T) {
	c, err := NewLinked(smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := range 10 {
		if err := c.Put(i, make([]byte, 4)); err != nil {
			t.Fatal(err)
		}
	}
	for i := range 10 {
		v, ok := c.Get(i)
		if !ok || len(v) != 4 {
			t.Errorf("Get(%d) = %v, %v; want 4 byte value", i, v, ok)
		}
		if !c.ContainsKey(i) {
			t.Errorf("ContainsKey(%d) = false", i)
		}
	}
	if _, ok := c.Get(10); ok {
		t.Error("Get(10) hit on a key never written")
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if c.ContainsKey(5) {
		t.Error("Close did not release entries")
	}
}

func TestLinkedEvictsByBytes(t *testing.T) {
	opts := Options{Capacity: 1000, SegmentCount: 1, EntrySize: 100 + entryOverhead}
	c, err := NewLinked(opts)
	if err != nil {
		t.Fatal(err)
	}
	lc := c.(*linkedCache) //nolint:errcheck // known type
	for i := range 100 {
		if err := c.Put(i, make([]byte, 100)); err != nil {
			t.Fatal(err)
		}
	}
	s := &lc.segments[0]
	if s.bytes > s.limit {
		t.Errorf("segment holds %d bytes, limit %d", s.bytes, s.limit)
	}
	if !c.ContainsKey(99) {
		t.Error("most recent key was evicted")
	}
	if c.ContainsKey(0) {
		t.Error("oldest key survived eviction")
	}
}

func TestLinkedOverwriteKeepsAccounting(t *testing.T) {
	c, err := NewLinked(Options{Capacity: 1 << 16, SegmentCount: 1, EntrySize: 8})
	if err != nil {
		t.Fatal(err)
	}
	lc := c.(*linkedCache) //nolint:errcheck // known type
	for range 5 {
		if err := c.Put(1, make([]byte, 8)); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := lc.segments[0].bytes, int64(8+entryOverhead); got != want {
		t.Errorf("bytes after overwrites = %d, want %d", got, want)
	}
}

func TestCapacityTooSmall(t *testing.T) {
	opts := Options{Capacity: 10, SegmentCount: 1, EntrySize: 2048}
	for _, name := range []string{"linked", "otter", "lru"} {
		if _, err := New(name, opts); !errors.Is(err, ErrCapacity) {
			t.Errorf("New(%q) error = %v, want ErrCapacity", name, err)
		}
	}
}

func TestOptionsDerivation(t *testing.T) {
	tests := []struct {
		opts     Options
		segments int
		table    int
	}{
		{Options{SegmentCount: 1, HashTableSize: 1}, 1, 1},
		{Options{SegmentCount: 3, HashTableSize: 1000}, 4, 1024},
		{Options{SegmentCount: 16, HashTableSize: -1}, 16, 8192},
	}
	for _, tc := range tests {
		if got := tc.opts.Segments(); got != tc.segments {
			t.Errorf("Segments(%d) = %d, want %d", tc.opts.SegmentCount, got, tc.segments)
		}
		if got := tc.opts.TableSize(); got != tc.table {
			t.Errorf("TableSize(%d) = %d, want %d", tc.opts.HashTableSize, got, tc.table)
		}
	}
	if auto := (Options{SegmentCount: -1}).Segments(); auto < 2 || auto&(auto-1) != 0 {
		t.Errorf("auto Segments() = %d, want power of two >= 2", auto)
	}
}

func TestLinkedConcurrentAccess(t *testing.T) {
	c, err := NewLinked(Options{Capacity: 1 << 20, SegmentCount: 4, EntrySize: 16 + entryOverhead})
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				key := g*1000 + i
				_ = c.Put(key, make([]byte, 16)) //nolint:errcheck // linked never fails
				c.Get(key)
				c.ContainsKey(key)
			}
		}()
	}
	wg.Wait()
}
