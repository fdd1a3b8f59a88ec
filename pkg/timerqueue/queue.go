package timerqueue

import (
	"bytes"
	"container/heap"
	"sync"

	"github.com/google/uuid"

	"github.com/jdziat/durable-timers/pkg/core"
)

// timerHeap orders timers by deadline, then by id bytes so that equal
// deadlines still have a deterministic total order.
type timerHeap []core.Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].ExpiresAt != h[j].ExpiresAt {
		return h[i].ExpiresAt < h[j].ExpiresAt
	}
	return bytes.Compare(h[i].ID[:], h[j].ID[:]) < 0
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(core.Timer))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// Queue is a concurrency-safe min-heap of timers ordered by deadline.
// A single mutex covers the whole structure.
type Queue struct {
	mu   sync.Mutex
	heap timerHeap
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Insert adds a timer to the queue.
func (q *Queue) Insert(t core.Timer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.heap, t)
}

// Peek returns the timer with the earliest deadline without removing it.
func (q *Queue) Peek() (core.Timer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return core.Timer{}, false
	}
	return q.heap[0], true
}

// Pop removes and returns the timer with the earliest deadline.
func (q *Queue) Pop() (core.Timer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return core.Timer{}, false
	}
	return heap.Pop(&q.heap).(core.Timer), true
}

// Remove deletes the timer with the given id if present and returns it.
// Arbitrary-id removal requires a linear scan of the heap.
func (q *Queue) Remove(id uuid.UUID) (core.Timer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.heap {
		if t.ID == id {
			return heap.Remove(&q.heap, i).(core.Timer), true
		}
	}
	return core.Timer{}, false
}

// Snapshot returns a copy of all queued timers in no particular order.
func (q *Queue) Snapshot() []core.Timer {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]core.Timer, len(q.heap))
	copy(out, q.heap)
	return out
}

// Len returns the number of queued timers.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Empty reports whether the queue has no timers.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}
