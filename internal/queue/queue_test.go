package queue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/queue"
)

func TestQueue_FIFOOrder(t *testing.T) {
	q := queue.New()
	q.Enqueue("bash")
	q.Enqueue("ls")
	q.Enqueue("cat")

	var order []domain.WorkItem
	for item, ok := q.Next(); ok; item, ok = q.Next() {
		order = append(order, item)
	}
	assert.Equal(t, []domain.WorkItem{"bash", "ls", "cat"}, order)
}

func TestQueue_RejectsDuplicates(t *testing.T) {
	q := queue.New()
	assert.True(t, q.Enqueue("bash"))
	assert.False(t, q.Enqueue("bash"))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_RejectsEmpty(t *testing.T) {
	q := queue.New()
	assert.False(t, q.Enqueue(""))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_EnqueueDuringDrain(t *testing.T) {
	q := queue.New()
	q.Enqueue("a")

	var seen []domain.WorkItem
	for item, ok := q.Next(); ok; item, ok = q.Next() {
		seen = append(seen, item)
		if item == "a" {
			q.Enqueue("b")
		}
	}
	assert.Equal(t, []domain.WorkItem{"a", "b"}, seen)
}

func TestQueue_DuplicateAfterProcessedStillRejected(t *testing.T) {
	q := queue.New()
	q.Enqueue("a")
	q.Next()
	assert.False(t, q.Enqueue("a"))
	assert.True(t, q.Seen("a"))
}

func TestQueue_Empty(t *testing.T) {
	q := queue.New()
	assert.True(t, q.Empty())
	q.Enqueue("a")
	assert.False(t, q.Empty())
	q.Next()
	assert.True(t, q.Empty())
}
