package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jzx17/goexecutor/pkg/types"
)

func TestOnRejected(t *testing.T) {
	rejected := &types.RejectedError{Executor: "async", PoolSize: 2, QueueCapacity: 4}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rejected", rejected, true},
		{"wrapped rejected", fmt.Errorf("submit: %w", rejected), true},
		{"shutdown", types.ErrShutdown, false},
		{"not started", types.ErrNotStarted, false},
		{"nil task", types.ErrNilTask, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OnRejected(tt.err); got != tt.want {
				t.Errorf("OnRejected(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestPolicy_ShouldRetry(t *testing.T) {
	rejected := &types.RejectedError{}
	policy := Policy{MaxAttempts: 3}

	if !policy.shouldRetry(rejected, 1) {
		t.Error("expected retry after first attempt")
	}
	if !policy.shouldRetry(rejected, 2) {
		t.Error("expected retry after second attempt")
	}
	if policy.shouldRetry(rejected, 3) {
		t.Error("expected no retry once attempts are used up")
	}
	if policy.shouldRetry(types.ErrShutdown, 1) {
		t.Error("shutdown must not be retried")
	}

	custom := Policy{MaxAttempts: 3, Condition: func(err error) bool { return true }}
	if !custom.shouldRetry(types.ErrShutdown, 1) {
		t.Error("custom condition should be used")
	}
}

func TestPolicy_NextDelay(t *testing.T) {
	if got := (Policy{}).nextDelay(1); got != 0 {
		t.Errorf("nil backoff delay = %v, want 0", got)
	}

	p := Policy{Backoff: NewFixedBackoff(5 * time.Millisecond)}
	if got := p.nextDelay(2); got != 5*time.Millisecond {
		t.Errorf("nextDelay = %v, want 5ms", got)
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", p.MaxAttempts)
	}
	if p.Backoff == nil || p.Condition == nil {
		t.Fatal("expected backoff and condition to be set")
	}
	if d := p.nextDelay(10); d > time.Second {
		t.Errorf("delay %v exceeds cap", d)
	}
}
