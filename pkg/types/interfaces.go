// Package types defines core interfaces and types for the executor
package types

import (
	"context"
)

// Task defines a unit of work submitted to an executor
type Task interface {
	// Execute runs the task and returns its result
	Execute(ctx context.Context) (any, error)

	// ID returns the task ID; an empty ID lets the executor assign one
	ID() string
}

// TaskFunc adapts a function to the Task interface
type TaskFunc func(ctx context.Context) (any, error)

// Execute calls f
func (f TaskFunc) Execute(ctx context.Context) (any, error) {
	return f(ctx)
}

// ID returns an empty ID
func (f TaskFunc) ID() string {
	return ""
}

// ExecutorState defines the lifecycle state of an executor
type ExecutorState int32

const (
	// StateCreated executor has been constructed but not started
	StateCreated ExecutorState = iota
	// StateRunning executor accepts submissions
	StateRunning
	// StateShuttingDown executor rejects submissions and is waiting for workers
	StateShuttingDown
	// StateTerminated all workers have exited
	StateTerminated
)

// String returns the string representation of ExecutorState
func (s ExecutorState) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// TaskState defines the state of a submitted task
type TaskState int32

const (
	// TaskPending task is queued or being handed to a worker
	TaskPending TaskState = iota
	// TaskRunning task is executing on a worker
	TaskRunning
	// TaskCompleted task returned without error
	TaskCompleted
	// TaskFailed task returned an error or panicked
	TaskFailed
	// TaskCancelled task was cancelled before it started
	TaskCancelled
)

// String returns the string representation of TaskState
func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Done reports whether the state is terminal
func (s TaskState) Done() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// ExecutorStats defines statistics for a bounded executor
type ExecutorStats struct {
	// CoreSize is the configured core worker count
	CoreSize int

	// MaxSize is the configured maximum worker count
	MaxSize int

	// PoolSize is the current number of workers
	PoolSize int

	// ActiveWorkers is the number of workers running a task
	ActiveWorkers int

	// IdleWorkers is the number of workers waiting for a task
	IdleWorkers int

	// LargestPoolSize is the highest worker count observed
	LargestPoolSize int

	// QueueSize is the current number of queued tasks
	QueueSize int

	// QueueCapacity is the capacity of the queue
	QueueCapacity int

	// Task counters
	Submitted int64
	Completed int64
	Failed    int64
	Rejected  int64
	Cancelled int64
}

// Pending returns the number of accepted tasks that have not finished
func (s ExecutorStats) Pending() int64 {
	return s.Submitted - s.Completed - s.Failed - s.Cancelled
}
