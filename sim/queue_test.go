package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitQueue_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a queue with waiters [A, B]
	wq := &WaitQueue{}
	a := &Waiter{Amount: 1}
	b := &Waiter{Amount: 2}
	wq.Enqueue(a)
	wq.Enqueue(b)

	// WHEN Peek() is called
	got := wq.Peek()

	// THEN it returns the front element without removing it
	assert.Same(t, a, got)
	assert.Equal(t, 2, wq.Len())
	assert.True(t, a.Queued())
}

func TestWaitQueue_Peek_Empty_ReturnsNil(t *testing.T) {
	wq := &WaitQueue{}
	assert.Nil(t, wq.Peek())
	assert.Nil(t, wq.Dequeue())
}

func TestWaitQueue_Dequeue_FIFO(t *testing.T) {
	// GIVEN waiters enqueued A, B, C
	wq := &WaitQueue{}
	ws := []*Waiter{{Amount: 1}, {Amount: 2}, {Amount: 3}}
	for _, w := range ws {
		wq.Enqueue(w)
	}

	// WHEN they are dequeued
	// THEN they come out in arrival order and are no longer marked queued
	for _, want := range ws {
		got := wq.Dequeue()
		assert.Same(t, want, got)
		assert.False(t, got.Queued())
	}
	assert.Equal(t, 0, wq.Len())
}

func TestWaitQueue_Remove_PreservesOrder(t *testing.T) {
	// GIVEN [A, B, C]
	wq := &WaitQueue{}
	a, b, c := &Waiter{Amount: 1}, &Waiter{Amount: 2}, &Waiter{Amount: 3}
	wq.Enqueue(a)
	wq.Enqueue(b)
	wq.Enqueue(c)

	// WHEN B is removed
	assert.True(t, wq.Remove(b))

	// THEN the queue is [A, C] and a second removal is a no-op
	assert.False(t, wq.Remove(b))
	assert.False(t, b.Queued())
	assert.Equal(t, "[1.000@0.000 3.000@0.000]", wq.String())
	assert.Same(t, a, wq.Dequeue())
	assert.Same(t, c, wq.Dequeue())
}
