package timerqueue_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/durable-timers/pkg/core"
	"github.com/jdziat/durable-timers/pkg/timerqueue"
)

func TestQueue_OrdersByDeadline(t *testing.T) {
	q := timerqueue.New()

	late := core.NewTimer(3000)
	early := core.NewTimer(1000)
	middle := core.NewTimer(2000)

	q.Insert(late)
	q.Insert(early)
	q.Insert(middle)

	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, early.ID, first.ID)

	second, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, middle.ID, second.ID)

	third, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, late.ID, third.ID)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueue_PeekDoesNotRemove(t *testing.T) {
	q := timerqueue.New()

	_, ok := q.Peek()
	assert.False(t, ok)

	timer := core.NewTimer(1000)
	q.Insert(timer)

	peeked, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, timer.ID, peeked.ID)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_TieBreakIsDeterministic(t *testing.T) {
	// Equal deadlines must pop in the same order no matter the insert order.
	a := core.NewTimer(5000)
	b := core.NewTimer(5000)
	c := core.NewTimer(5000)

	popAll := func(timers ...core.Timer) []uuid.UUID {
		q := timerqueue.New()
		for _, timer := range timers {
			q.Insert(timer)
		}
		var order []uuid.UUID
		for {
			timer, ok := q.Pop()
			if !ok {
				break
			}
			order = append(order, timer.ID)
		}
		return order
	}

	first := popAll(a, b, c)
	second := popAll(c, b, a)
	third := popAll(b, a, c)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestQueue_RemoveByID(t *testing.T) {
	q := timerqueue.New()

	keep := core.NewTimer(1000)
	drop := core.NewTimer(2000)
	q.Insert(keep)
	q.Insert(drop)

	removed, ok := q.Remove(drop.ID)
	require.True(t, ok)
	assert.Equal(t, drop.ID, removed.ID)
	assert.Equal(t, 1, q.Len())

	// Removing again is a no-op.
	_, ok = q.Remove(drop.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())

	next, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, keep.ID, next.ID)
}

func TestQueue_RemoveMiddlePreservesOrder(t *testing.T) {
	q := timerqueue.New()

	timers := make([]core.Timer, 0, 10)
	for i := 0; i < 10; i++ {
		timer := core.NewTimer(int64(1000 * (i + 1)))
		timers = append(timers, timer)
		q.Insert(timer)
	}

	_, ok := q.Remove(timers[4].ID)
	require.True(t, ok)

	var last int64 = -1
	for {
		timer, ok := q.Pop()
		if !ok {
			break
		}
		assert.NotEqual(t, timers[4].ID, timer.ID)
		assert.GreaterOrEqual(t, timer.ExpiresAt, last)
		last = timer.ExpiresAt
	}
}

func TestQueue_Snapshot(t *testing.T) {
	q := timerqueue.New()
	for i := 0; i < 5; i++ {
		q.Insert(core.NewTimer(int64(i * 100)))
	}

	snapshot := q.Snapshot()
	assert.Len(t, snapshot, 5)
	assert.Equal(t, 5, q.Len())

	// Mutating the snapshot must not affect the queue.
	snapshot[0] = core.NewTimer(999999)
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, int64(0), head.ExpiresAt)
}

func TestQueue_ConcurrentInserts(t *testing.T) {
	q := timerqueue.New()

	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				q.Insert(core.NewTimer(base + int64(i)))
			}
		}(int64(g * 1000))
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, q.Len())

	seen := make(map[uuid.UUID]bool)
	var last int64 = -1
	for {
		timer, ok := q.Pop()
		if !ok {
			break
		}
		assert.False(t, seen[timer.ID], "duplicate id popped")
		seen[timer.ID] = true
		assert.GreaterOrEqual(t, timer.ExpiresAt, last)
		last = timer.ExpiresAt
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
