package executor

import (
	"github.com/eapache/queue"
)

// compactThreshold is the tombstone count that triggers a queue rebuild
const compactThreshold = 64

// taskQueue is a bounded FIFO of pending handles. Cancelled handles stay in
// the ring as tombstones until they reach the head or the ring is compacted.
// It is guarded by the executor mutex.
type taskQueue struct {
	items    *queue.Queue
	capacity int
	live     int
}

func newTaskQueue(capacity int) *taskQueue {
	return &taskQueue{
		items:    queue.New(),
		capacity: capacity,
	}
}

// Len returns the number of live queued handles
func (q *taskQueue) Len() int {
	return q.live
}

// Cap returns the queue capacity
func (q *taskQueue) Cap() int {
	return q.capacity
}

// push appends h unless the queue is full
func (q *taskQueue) push(h *Handle) bool {
	if q.live >= q.capacity {
		return false
	}
	h.queued = true
	q.items.Add(h)
	q.live++
	return true
}

// pop removes the oldest live handle, skipping tombstones
func (q *taskQueue) pop() *Handle {
	for q.items.Length() > 0 {
		h := q.items.Remove().(*Handle)
		if !h.queued {
			continue
		}
		h.queued = false
		q.live--
		return h
	}
	return nil
}

// remove turns a queued handle into a tombstone
func (q *taskQueue) remove(h *Handle) bool {
	if !h.queued {
		return false
	}
	h.queued = false
	q.live--

	if dead := q.items.Length() - q.live; dead >= compactThreshold && dead > q.live {
		q.compact()
	}
	return true
}

// drain removes every live handle in FIFO order
func (q *taskQueue) drain() []*Handle {
	out := make([]*Handle, 0, q.live)
	for h := q.pop(); h != nil; h = q.pop() {
		out = append(out, h)
	}
	return out
}

func (q *taskQueue) compact() {
	fresh := queue.New()
	for i := 0; i < q.items.Length(); i++ {
		if h := q.items.Get(i).(*Handle); h.queued {
			fresh.Add(h)
		}
	}
	q.items = fresh
}
