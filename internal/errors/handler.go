// Package errors converts task errors and panics into TaskFailure values
package errors

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/jzx17/goexecutor/pkg/types"
)

// stackSize bounds the captured goroutine stack
const stackSize = 4096

// FailureHandler observes task failures after they are attached to a handle
type FailureHandler func(*types.TaskFailure)

// FromError wraps an error returned by a task. A TaskFailure already
// describing the same task is returned unchanged.
func FromError(taskID, worker string, err error) *types.TaskFailure {
	if err == nil {
		return nil
	}

	var tf *types.TaskFailure
	if errors.As(err, &tf) && tf.TaskID == taskID {
		return tf
	}

	return &types.TaskFailure{
		TaskID: taskID,
		Cause:  err,
		Worker: worker,
	}
}

// FromPanic converts a recovered panic value. It must be called from the
// deferred function that recovered so the stack still shows the panic site.
func FromPanic(taskID, worker string, r any) *types.TaskFailure {
	var buf [stackSize]byte
	n := runtime.Stack(buf[:], false)

	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	case string:
		cause = fmt.Errorf("panic: %s", v)
	default:
		cause = fmt.Errorf("panic: %v", v)
	}

	return &types.TaskFailure{
		TaskID:   taskID,
		Cause:    cause,
		Panicked: true,
		Stack:    string(buf[:n]),
		Worker:   worker,
	}
}

// Notify calls handler with failure, shielding the caller from a panicking handler.
// It reports whether the handler panicked.
func Notify(handler FailureHandler, failure *types.TaskFailure) (panicked bool) {
	if handler == nil || failure == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			panicked = true
		}
	}()

	handler(failure)
	return false
}
