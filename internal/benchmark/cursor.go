package benchmark

// Cursor cycles through keys 1..bound. It is owned by a single worker and is
// never shared, so it needs no synchronization.
type Cursor struct {
	key   int
	bound int
}

// NewCursor returns a cursor positioned at key 1.
func NewCursor(bound int) *Cursor {
	return &Cursor{key: 1, bound: bound}
}

// Key returns the current key without advancing. Operations only call Next;
// Key is for inspecting a cursor, as the tests do.
func (c *Cursor) Key() int {
	return c.key
}

// Next returns the current key and advances, wrapping to 1 past bound.
func (c *Cursor) Next() int {
	k := c.key
	c.key++
	if c.key > c.bound {
		c.key = 1
	}
	return k
}

// ThreadState is the per-worker state. Put and Get cursors are separate so
// put and get workloads never shift each other's access pattern.
type ThreadState struct {
	Put *Cursor
	Get *Cursor
}

// NewThreadState creates fresh cursors for one worker.
func NewThreadState(keys int) *ThreadState {
	return &ThreadState{Put: NewCursor(keys), Get: NewCursor(keys)}
}
