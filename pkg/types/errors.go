// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrRejected indicates the executor could not admit a task
	ErrRejected = errors.New("task rejected")

	// ErrShutdown indicates the executor no longer accepts tasks
	ErrShutdown = errors.New("executor is shut down")

	// ErrNotStarted indicates the executor has not been started
	ErrNotStarted = errors.New("executor is not started")

	// ErrTimeout indicates an await deadline elapsed before the task finished
	ErrTimeout = errors.New("await timeout")

	// ErrCancelled indicates the task was cancelled before it started
	ErrCancelled = errors.New("task cancelled")

	// ErrNilTask indicates a nil task was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrInvalidConfig indicates an invalid executor configuration
	ErrInvalidConfig = errors.New("invalid executor config")
)

// RejectedError reports a saturated pool at submission time
type RejectedError struct {
	// Executor is the name prefix of the rejecting executor
	Executor string

	// PoolSize is the worker count at rejection time
	PoolSize int

	// QueueSize is the queue length at rejection time
	QueueSize int

	// QueueCapacity is the configured queue capacity
	QueueCapacity int
}

// Error implements the error interface
func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: pool saturated: max threads busy and queue full (workers=%d, queue=%d/%d)",
		e.Executor, e.PoolSize, e.QueueSize, e.QueueCapacity)
}

// Is reports whether target is ErrRejected
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// TaskFailure is the failed outcome of a task, attached to its handle
type TaskFailure struct {
	// TaskID identifies the failed task
	TaskID string

	// Cause is the error returned by the task, or the recovered panic value
	Cause error

	// Panicked is true when the task panicked instead of returning an error
	Panicked bool

	// Stack holds the goroutine stack captured on panic
	Stack string

	// Worker is the name of the worker that ran the task
	Worker string
}

// Error implements the error interface
func (e *TaskFailure) Error() string {
	if e.Panicked {
		return fmt.Sprintf("task %s panicked on %s: %v", e.TaskID, e.Worker, e.Cause)
	}
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskFailure) Unwrap() error {
	return e.Cause
}

// IsTaskFailure reports whether err carries a TaskFailure and returns it
func IsTaskFailure(err error) (*TaskFailure, bool) {
	var tf *TaskFailure
	if errors.As(err, &tf) {
		return tf, true
	}
	return nil, false
}

// IsRejected reports whether err is a submission rejection
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
