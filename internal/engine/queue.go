package engine

import "sync"

// Queue is the work queue of one refresh worker, holding slot indexes
// into the record store.
//
// The discipline is deliberately recency-biased: Push and Pop operate on
// the same end, so the most recently pushed slot is processed first and a
// freshly populated filter subset or a manual refresh jumps ahead of the
// backlog. Requeue places a completed slot at the opposite end, turning
// the steady state into a perpetual round robin in which re-enqueued
// items never starve fresh pushes. Do not flatten this into FIFO; it
// changes observed refresh latency for newly filtered subsets.
type Queue struct {
	mu    sync.Mutex
	slots []int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push adds a slot at the recency end; it will be popped next.
func (q *Queue) Push(slot int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.slots = append(q.slots, slot)
}

// Pop removes and returns the most recently pushed slot.
func (q *Queue) Pop() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.slots)
	if n == 0 {
		return 0, false
	}
	slot := q.slots[n-1]
	q.slots = q.slots[:n-1]
	return slot, true
}

// Requeue adds a completed slot at the back of the rotation.
func (q *Queue) Requeue(slot int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.slots = append([]int{slot}, q.slots...)
}

// Purge drops all pending slots. Record store contents are unaffected.
func (q *Queue) Purge() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.slots = q.slots[:0]
}

// Len returns the number of pending slots.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.slots)
}
