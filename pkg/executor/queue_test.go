package executor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/goexecutor/internal/testutils"
)

func queuedHandle(id string) *Handle {
	return newHandle(nil, testutils.NewRecordingTask(id, nil, nil, nil), time.Now())
}

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue(3)

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, q.push(queuedHandle(id)))
	}
	assert.False(t, q.push(queuedHandle("d")), "push beyond capacity")
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Cap())

	for _, want := range []string{"a", "b", "c"} {
		h := q.pop()
		require.NotNil(t, h)
		assert.Equal(t, want, h.ID())
		assert.False(t, h.queued)
	}
	assert.Nil(t, q.pop())
	assert.Equal(t, 0, q.Len())
}

func TestTaskQueue_ZeroCapacity(t *testing.T) {
	q := newTaskQueue(0)
	assert.False(t, q.push(queuedHandle("a")))
	assert.Nil(t, q.pop())
}

func TestTaskQueue_Remove(t *testing.T) {
	q := newTaskQueue(4)
	a, b, c := queuedHandle("a"), queuedHandle("b"), queuedHandle("c")
	q.push(a)
	q.push(b)
	q.push(c)

	assert.True(t, q.remove(b))
	assert.False(t, q.remove(b), "already removed")
	assert.Equal(t, 2, q.Len())

	// Freed slot is usable again
	assert.True(t, q.push(queuedHandle("d")))

	var order []string
	for h := q.pop(); h != nil; h = q.pop() {
		order = append(order, h.ID())
	}
	assert.Equal(t, []string{"a", "c", "d"}, order)
}

func TestTaskQueue_Compact(t *testing.T) {
	q := newTaskQueue(1000)

	handles := make([]*Handle, 200)
	for i := range handles {
		handles[i] = queuedHandle(fmt.Sprintf("h-%d", i))
		require.True(t, q.push(handles[i]))
	}

	// Remove all but the last ten; compaction keeps the ring small
	for _, h := range handles[:190] {
		require.True(t, q.remove(h))
	}
	assert.Equal(t, 10, q.Len())
	assert.Less(t, q.items.Length(), 200)

	drained := q.drain()
	require.Len(t, drained, 10)
	for i, h := range drained {
		assert.Equal(t, fmt.Sprintf("h-%d", 190+i), h.ID())
	}
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.items.Length())
}
