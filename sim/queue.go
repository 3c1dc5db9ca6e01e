// Implements the WaitQueue, which holds processes parked on a Container
// until enough capacity is released. Waiters are enqueued in arrival order.

package sim

import (
	"fmt"
	"strings"
)

// Waiter is a parked acquire request. It is the handle returned by
// Container.Acquire when the request could not be granted immediately.
type Waiter struct {
	Amount float64 // requested quantity
	Since  float64 // virtual time the request was parked
	then   Process
	queued bool
}

// Queued reports whether the request is still parked.
func (w *Waiter) Queued() bool {
	return w.queued
}

func (w *Waiter) String() string {
	return fmt.Sprintf("%.3f@%.3f", w.Amount, w.Since)
}

// WaitQueue represents a FIFO queue of parked acquire requests.
type WaitQueue struct {
	queue []*Waiter
}

// Enqueue adds a waiter to the back of the queue.
func (wq *WaitQueue) Enqueue(w *Waiter) {
	w.queued = true
	wq.queue = append(wq.queue, w)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range wq.queue {
		sb.WriteString(val.String())
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of parked requests.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the longest-waiting request without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *Waiter {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Dequeue removes and returns the longest-waiting request.
func (wq *WaitQueue) Dequeue() *Waiter {
	if len(wq.queue) == 0 {
		return nil
	}
	w := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	w.queued = false
	return w
}

// Remove withdraws w from anywhere in the queue, preserving the order of
// the rest. Returns false if w is not queued.
func (wq *WaitQueue) Remove(w *Waiter) bool {
	for i, q := range wq.queue {
		if q == w {
			wq.queue = append(wq.queue[:i], wq.queue[i+1:]...)
			w.queued = false
			return true
		}
	}
	return false
}
