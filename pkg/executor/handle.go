package executor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jzx17/goexecutor/pkg/types"
)

// Handle is a reference to the eventual outcome of a submitted task.
// It stays valid after an await times out.
type Handle struct {
	id   string
	task types.Task
	exec *Executor

	state int32 // atomic types.TaskState
	done  chan struct{}
	value any
	err   error

	submittedAt time.Time
	startedAt   int64 // Unix nanoseconds, atomic
	finishedAt  int64 // Unix nanoseconds, atomic

	// queued is guarded by exec.mu
	queued bool
}

func newHandle(e *Executor, task types.Task, now time.Time) *Handle {
	id := task.ID()
	if id == "" {
		id = ulid.Make().String()
	}
	return &Handle{
		id:          id,
		task:        task,
		exec:        e,
		state:       int32(types.TaskPending),
		done:        make(chan struct{}),
		submittedAt: now,
	}
}

// ID returns the task ID
func (h *Handle) ID() string {
	return h.id
}

// State returns the current task state
func (h *Handle) State() types.TaskState {
	return types.TaskState(atomic.LoadInt32(&h.state))
}

// Done returns a channel closed once the task completes, fails or is cancelled
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Poll returns the outcome without blocking; ok is false while the task is unfinished
func (h *Handle) Poll() (value any, ok bool, err error) {
	select {
	case <-h.done:
		return h.value, true, h.err
	default:
		return nil, false, nil
	}
}

// Await blocks until the task finishes or ctx is done. A ctx deadline
// yields an error matching types.ErrTimeout; the task itself is unaffected.
func (h *Handle) Await(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.value, h.err
	default:
	}

	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: task %s: %w", types.ErrTimeout, h.id, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// AwaitTimeout blocks until the task finishes or timeout elapses on the
// executor clock. A non-positive timeout waits without limit.
func (h *Handle) AwaitTimeout(timeout time.Duration) (any, error) {
	if timeout <= 0 {
		<-h.done
		return h.value, h.err
	}

	select {
	case <-h.done:
		return h.value, h.err
	default:
	}

	timer := h.exec.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return h.value, h.err
	case <-timer.C():
		return nil, fmt.Errorf("%w: task %s after %s: %w",
			types.ErrTimeout, h.id, timeout, context.DeadlineExceeded)
	}
}

// Cancel removes a task that has not started yet. It returns false, and
// does nothing, when the task is already running or finished.
func (h *Handle) Cancel() bool {
	return h.exec.cancel(h)
}

// SubmittedAt returns the admission time
func (h *Handle) SubmittedAt() time.Time {
	return h.submittedAt
}

// StartedAt returns when a worker took the task, or the zero time
func (h *Handle) StartedAt() time.Time {
	return unixNano(atomic.LoadInt64(&h.startedAt))
}

// FinishedAt returns when the task finished, or the zero time
func (h *Handle) FinishedAt() time.Time {
	return unixNano(atomic.LoadInt64(&h.finishedAt))
}

// markRunning moves a pending handle to running; called under exec.mu
func (h *Handle) markRunning(now time.Time) bool {
	if !atomic.CompareAndSwapInt32(&h.state, int32(types.TaskPending), int32(types.TaskRunning)) {
		return false
	}
	atomic.StoreInt64(&h.startedAt, now.UnixNano())
	return true
}

// markCancelled moves a pending handle to cancelled
func (h *Handle) markCancelled() bool {
	return atomic.CompareAndSwapInt32(&h.state, int32(types.TaskPending), int32(types.TaskCancelled))
}

// finish publishes the outcome; the state must already be owned by the caller
func (h *Handle) finish(state types.TaskState, value any, err error, now time.Time) {
	h.value = value
	h.err = err
	atomic.StoreInt64(&h.finishedAt, now.UnixNano())
	atomic.StoreInt32(&h.state, int32(state))
	close(h.done)
}

func unixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Await waits on h with ctx and asserts the result to T
func Await[T any](ctx context.Context, h *Handle) (T, error) {
	var zero T

	v, err := h.Await(ctx)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("task %s returned %T, want %T", h.id, v, zero)
	}
	return typed, nil
}
