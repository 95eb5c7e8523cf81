package retry

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jzx17/goexecutor/pkg/executor"
	"github.com/jzx17/goexecutor/pkg/types"
)

// Submitter is the admission side of an executor
type Submitter interface {
	Submit(task types.Task) (*executor.Handle, error)
}

// Retrier resubmits tasks rejected by a saturated executor
type Retrier struct {
	policy Policy
	clock  types.Clock
	logger *zap.Logger

	attempts  atomic.Int64
	retries   atomic.Int64
	exhausted atomic.Int64
}

// Stats contains retry statistics
type Stats struct {
	Attempts  int64 // submissions made, including first attempts
	Retries   int64 // resubmissions after a retryable error
	Exhausted int64 // tasks that ran out of attempts
}

// Option configures a Retrier
type Option func(*Retrier)

// WithClock sets the clock used to wait between attempts
func WithClock(clock types.Clock) Option {
	return func(r *Retrier) {
		r.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Retrier) {
		r.logger = logger
	}
}

// New creates a Retrier. A non-positive MaxAttempts means a single attempt.
func New(policy Policy, opts ...Option) *Retrier {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	r := &Retrier{
		policy: policy,
		clock:  types.NewRealClock(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit submits task, waiting and resubmitting while the policy allows.
// The last error is returned wrapped, so types.IsRejected still matches.
func (r *Retrier) Submit(ctx context.Context, s Submitter, task types.Task) (*executor.Handle, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.attempts.Add(1)
		h, err := s.Submit(task)
		if err == nil {
			return h, nil
		}

		if !r.policy.shouldRetry(err, attempt) {
			if attempt > 1 {
				r.exhausted.Add(1)
				r.logger.Warn("giving up on submission",
					zap.String("task", task.ID()),
					zap.Int("attempts", attempt),
					zap.Error(err))
				return nil, fmt.Errorf("submit failed after %d attempts: %w", attempt, err)
			}
			return nil, err
		}

		delay := r.policy.nextDelay(attempt)
		r.retries.Add(1)
		r.logger.Debug("submission rejected, retrying",
			zap.String("task", task.ID()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))

		if delay > 0 {
			timer := r.clock.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C():
			}
		}
	}
}

// Stats returns a snapshot of retry statistics
func (r *Retrier) Stats() Stats {
	return Stats{
		Attempts:  r.attempts.Load(),
		Retries:   r.retries.Load(),
		Exhausted: r.exhausted.Load(),
	}
}
