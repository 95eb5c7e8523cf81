package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrRejected", ErrRejected},
		{"ErrShutdown", ErrShutdown},
		{"ErrNotStarted", ErrNotStarted},
		{"ErrTimeout", ErrTimeout},
		{"ErrCancelled", ErrCancelled},
		{"ErrNilTask", ErrNilTask},
		{"ErrInvalidConfig", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error, got nil")
			}
			if tt.err.Error() == "" {
				t.Errorf("expected non-empty error message")
			}
		})
	}
}

func TestRejectedError(t *testing.T) {
	err := &RejectedError{
		Executor:      "async-",
		PoolSize:      50,
		QueueSize:     100,
		QueueCapacity: 100,
	}

	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected RejectedError to match ErrRejected")
	}
	if errors.Is(err, ErrShutdown) {
		t.Errorf("RejectedError must not match ErrShutdown")
	}
	if !IsRejected(fmt.Errorf("submit: %w", err)) {
		t.Errorf("expected wrapped RejectedError to be detected")
	}
	if !strings.Contains(err.Error(), "pool saturated: max threads busy and queue full") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTaskFailure(t *testing.T) {
	t.Run("Returned Error", func(t *testing.T) {
		cause := errors.New("boom")
		err := &TaskFailure{TaskID: "t-1", Cause: cause}

		if !errors.Is(err, cause) {
			t.Errorf("expected TaskFailure to unwrap to its cause")
		}
		if err.Error() != "task t-1 failed: boom" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Panic", func(t *testing.T) {
		err := &TaskFailure{TaskID: "t-2", Cause: errors.New("nil map"), Panicked: true, Worker: "async-3"}

		if !strings.Contains(err.Error(), "panicked on async-3") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("IsTaskFailure", func(t *testing.T) {
		wrapped := fmt.Errorf("await: %w", &TaskFailure{TaskID: "t-3", Cause: context.Canceled})

		tf, ok := IsTaskFailure(wrapped)
		if !ok {
			t.Fatalf("expected TaskFailure")
		}
		if tf.TaskID != "t-3" {
			t.Errorf("expected task ID t-3, got %q", tf.TaskID)
		}

		if _, ok := IsTaskFailure(ErrTimeout); ok {
			t.Errorf("ErrTimeout is not a TaskFailure")
		}
	})
}
