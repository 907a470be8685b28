package engine

import "testing"

func TestQueue_PopIsMostRecentFirst(t *testing.T) {
	q := NewQueue()
	q.Push(0)
	q.Push(1)
	q.Push(2)

	for _, want := range []int{2, 1, 0} {
		got, ok := q.Pop()
		if !ok {
			t.Fatal("queue emptied early")
		}
		if got != want {
			t.Errorf("pop = %d, want %d", got, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("drained queue should report empty")
	}
}

func TestQueue_RequeueRotates(t *testing.T) {
	q := NewQueue()
	q.Push(0)
	q.Push(1)
	q.Push(2)

	// Pop each slot and requeue it; two full passes must visit every
	// slot exactly twice, with no starvation.
	visits := make(map[int]int)
	for i := 0; i < 6; i++ {
		slot, ok := q.Pop()
		if !ok {
			t.Fatal("queue should never drain while requeueing")
		}
		visits[slot]++
		q.Requeue(slot)
	}
	for slot := 0; slot < 3; slot++ {
		if visits[slot] != 2 {
			t.Errorf("slot %d visited %d times, want 2", slot, visits[slot])
		}
	}
}

func TestQueue_FreshPushJumpsRequeuedBacklog(t *testing.T) {
	q := NewQueue()
	q.Push(0)
	slot, _ := q.Pop()
	q.Requeue(slot)

	q.Push(7)
	if got, _ := q.Pop(); got != 7 {
		t.Errorf("pop = %d, want fresh push 7 ahead of requeued backlog", got)
	}
}

func TestQueue_Purge(t *testing.T) {
	q := NewQueue()
	q.Push(0)
	q.Push(1)
	q.Purge()
	if q.Len() != 0 {
		t.Errorf("len after purge = %d, want 0", q.Len())
	}
	if _, ok := q.Pop(); ok {
		t.Error("purged queue should be empty")
	}
}
