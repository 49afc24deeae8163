// Package queue implements C3, the work queue driving the closure
// discovery pipeline: a deduplicated, strictly FIFO list of commands
// pending analysis.
package queue

import "github.com/rootcut/rootcut/internal/domain"

// Queue is an append-only, order-preserving, duplicate-rejecting list of
// domain.WorkItem. Ordering is critical for determinism of the analyzer
// chain: items enqueued at time t are fully processed before any item
// enqueued at t+1 (spec.md §5).
type Queue struct {
	items   []domain.WorkItem
	present map[domain.WorkItem]struct{}
	cursor  int
}

// New creates an empty work queue.
func New() *Queue {
	return &Queue{present: make(map[domain.WorkItem]struct{})}
}

// Enqueue appends name to the queue. A no-op if name already appears,
// rejecting duplicates by exact string equality (spec.md §3 WorkItem).
func (q *Queue) Enqueue(name domain.WorkItem) bool {
	if name == "" {
		return false
	}
	if _, ok := q.present[name]; ok {
		return false
	}
	q.present[name] = struct{}{}
	q.items = append(q.items, name)
	return true
}

// Next pops the next unprocessed item in FIFO order. ok is false once the
// queue is drained. Items already returned by Next remain in the dedupe set
// so a later Enqueue of the same name is still rejected (the queue never
// re-delivers a name, even one enqueued while draining).
func (q *Queue) Next() (item domain.WorkItem, ok bool) {
	if q.cursor >= len(q.items) {
		return "", false
	}
	item = q.items[q.cursor]
	q.cursor++
	return item, true
}

// Empty reports whether every enqueued item has been returned by Next.
// Because Enqueue may be called while draining (analyzers enqueue further
// work), Empty must be re-checked after each Next in a drain loop.
func (q *Queue) Empty() bool {
	return q.cursor >= len(q.items)
}

// Len returns the total number of distinct items ever enqueued.
func (q *Queue) Len() int {
	return len(q.items)
}

// Seen reports whether name has ever been enqueued, processed or not.
func (q *Queue) Seen(name domain.WorkItem) bool {
	_, ok := q.present[name]
	return ok
}

// Drain returns a function suitable for a `for item, ok := next(); ok;
// item, ok = next()` loop, repeatedly popping items until the queue is
// empty — including items enqueued mid-drain by earlier iterations.
func (q *Queue) Drain() func() (domain.WorkItem, bool) {
	return q.Next
}
