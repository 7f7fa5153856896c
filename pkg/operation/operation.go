// Package operation implements the live cryptographic job and the
// process-wide operation table: a single mutex guarding handle allocation,
// lookup, and removal, with each Operation carrying its own lock for the
// duration of a single update/finish/abort call.
package operation

import (
	"sync"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/primitives"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// DefaultCapacity is the operation table's default slot count.
const DefaultCapacity = 16

// Operation is a live cryptographic job: a pinned adapter plus the metadata
// needed to report it back to a caller. All mutation during update/finish/
// abort happens under mu, held for the duration of a single call.
type Operation struct {
	Handle    uint64
	Purpose   tag.Purpose_
	Algorithm tag.Algorithm_
	Adapter   primitives.Adapter

	mu sync.Mutex
}

// Table is the process-wide handle → Operation map.
type Table struct {
	mu         sync.Mutex
	operations map[uint64]*Operation
	nextHandle uint64
	capacity   int
}

// NewTable constructs an empty table with the given capacity. A capacity of
// 0 uses DefaultCapacity.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{operations: make(map[uint64]*Operation), capacity: capacity}
}

// Begin allocates a fresh non-zero handle and registers op under it,
// failing with ErrTooManyOperations if the table is at capacity.
func (t *Table) Begin(purpose tag.Purpose_, algorithm tag.Algorithm_, adapter primitives.Adapter) (*Operation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.operations) >= t.capacity {
		return nil, ErrTooManyOperations
	}

	t.nextHandle++
	if t.nextHandle == 0 {
		t.nextHandle = 1
	}

	op := &Operation{Handle: t.nextHandle, Purpose: purpose, Algorithm: algorithm, Adapter: adapter}
	t.operations[op.Handle] = op
	return op, nil
}

// Lookup returns the operation registered under handle without removing it.
func (t *Table) Lookup(handle uint64) (*Operation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.operations[handle]
	if !ok {
		return nil, ErrInvalidOperationHandle
	}
	return op, nil
}

// remove deletes handle from the table if present, reporting whether this
// call was the one that removed it.
func (t *Table) remove(handle uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.operations[handle]; !ok {
		return false
	}
	delete(t.operations, handle)
	return true
}

// Update runs fn against the operation registered under handle, holding the
// operation's own lock. On success the operation stays registered (update
// never transitions out of Input); if fn returns an error the operation is
// removed from the table and its adapter aborted. Because Finish and Abort
// remove their operation only while holding the same lock, re-checking
// registration after acquiring it closes the race where a concurrent
// Finish/Abort wins first: the loser observes ErrInvalidOperationHandle
// instead of calling fn on a torn-down adapter.
func (t *Table) Update(handle uint64, fn func(*Operation) error) error {
	op, err := t.Lookup(handle)
	if err != nil {
		return err
	}
	op.mu.Lock()
	defer op.mu.Unlock()

	if !t.has(handle) {
		return ErrInvalidOperationHandle
	}
	if err := fn(op); err != nil {
		if t.remove(handle) {
			op.Adapter.Abort()
		}
		return err
	}
	return nil
}

// has reports whether handle is still registered.
func (t *Table) has(handle uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.operations[handle]
	return ok
}

// Finish runs fn against the operation registered under handle and then
// removes it, win-or-lose against a concurrent Abort on the same handle: the
// goroutine that wins the operation's lock performs the removal and the
// call; the loser observes ErrInvalidOperationHandle.
func (t *Table) Finish(handle uint64, fn func(*Operation) error) error {
	op, err := t.Lookup(handle)
	if err != nil {
		return err
	}
	op.mu.Lock()
	defer op.mu.Unlock()

	if !t.remove(handle) {
		return ErrInvalidOperationHandle
	}
	return fn(op)
}

// Abort removes handle's operation and runs its adapter's Abort, following
// the same win-or-lose rule as Finish.
func (t *Table) Abort(handle uint64) error {
	op, err := t.Lookup(handle)
	if err != nil {
		return err
	}
	op.mu.Lock()
	defer op.mu.Unlock()

	if !t.remove(handle) {
		return ErrInvalidOperationHandle
	}
	op.Adapter.Abort()
	return nil
}

// Len reports the number of live operations, for tests and metrics.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.operations)
}
