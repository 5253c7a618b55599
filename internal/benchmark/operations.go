package benchmark

import (
	"fmt"
	"runtime"
)

// ThreadMode says how many workers run an operation.
type ThreadMode int

const (
	// Max runs one worker per available CPU.
	Max ThreadMode = iota
	// Single runs exactly one worker.
	Single
)

func (m ThreadMode) String() string {
	if m == Single {
		return "1"
	}
	return "max"
}

// Operation is one measured unit: a single cache call plus cursor movement.
type Operation struct {
	Name    string
	Threads ThreadMode
	Run     func(s *State, t *ThreadState) error
}

// ThreadCount returns how many workers run the operation when max are available.
// A max of zero or less means GOMAXPROCS.
func (o Operation) ThreadCount(maxThreads int) int {
	if o.Threads == Single {
		return 1
	}
	if maxThreads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return maxThreads
}

// The operation names are the ones reported in results and accepted by -bench.
const (
	GetNonExisting      = "getNonExisting"
	ContainsNonExisting = "containsNonExisting"
	PutSingleThreaded   = "putSingleThreaded"
	PutMultiThreaded    = "putMultiThreaded"
	GetSingleThreaded   = "getSingleThreaded"
	GetMultiThreaded    = "getMultiThreaded"
)

var operations = []Operation{
	{Name: GetNonExisting, Threads: Max, Run: getNonExisting},
	{Name: ContainsNonExisting, Threads: Max, Run: containsNonExisting},
	{Name: PutSingleThreaded, Threads: Single, Run: put},
	{Name: PutMultiThreaded, Threads: Max, Run: put},
	{Name: GetSingleThreaded, Threads: Single, Run: get},
	{Name: GetMultiThreaded, Threads: Max, Run: get},
}

// Operations returns the full suite in reporting order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// Lookup returns the named operation.
func Lookup(name string) (Operation, error) {
	for _, op := range operations {
		if op.Name == name {
			return op, nil
		}
	}
	return Operation{}, fmt.Errorf("unknown operation %q", name)
}

func getNonExisting(s *State, _ *ThreadState) error {
	s.cache.Get(MissKey)
	return nil
}

func containsNonExisting(s *State, _ *ThreadState) error {
	s.cache.ContainsKey(MissKey)
	return nil
}

func put(s *State, t *ThreadState) error {
	return s.cache.Put(t.Put.Next(), make([]byte, s.cfg.ValueSize))
}

func get(s *State, t *ThreadState) error {
	s.cache.Get(t.Get.Next())
	return nil
}
