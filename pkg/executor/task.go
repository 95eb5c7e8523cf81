package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/jzx17/goexecutor/pkg/types"
)

// BasicTask is the basic implementation of types.Task
type BasicTask struct {
	id string
	fn func(ctx context.Context) (any, error)
}

// NewBasicTask creates a task whose ID is assigned on submission
func NewBasicTask(fn func(ctx context.Context) (any, error)) *BasicTask {
	return &BasicTask{fn: fn}
}

// NewBasicTaskWithID creates a task with a caller supplied ID
func NewBasicTaskWithID(id string, fn func(ctx context.Context) (any, error)) *BasicTask {
	return &BasicTask{id: id, fn: fn}
}

// Execute executes the task
func (t *BasicTask) Execute(ctx context.Context) (any, error) {
	if t.fn == nil {
		return nil, fmt.Errorf("task %s has no execution function", t.id)
	}
	return t.fn(ctx)
}

// ID returns the task ID
func (t *BasicTask) ID() string {
	return t.id
}

// timeoutTask bounds the context seen by the wrapped task
type timeoutTask struct {
	types.Task
	timeout time.Duration
}

// WithTimeout wraps task so its context expires timeout after it starts.
// Whether the task stops early is up to the task.
func WithTimeout(task types.Task, timeout time.Duration) types.Task {
	return &timeoutTask{Task: task, timeout: timeout}
}

// Execute executes the wrapped task with a deadline
func (t *timeoutTask) Execute(ctx context.Context) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Task.Execute(ctx)
}
