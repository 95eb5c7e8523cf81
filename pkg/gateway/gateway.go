package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jzx17/goexecutor/pkg/executor"
	"github.com/jzx17/goexecutor/pkg/retry"
	"github.com/jzx17/goexecutor/pkg/types"
)

// DefaultTimeout bounds how long Do waits when neither the option nor the
// executor sets a timeout
const DefaultTimeout = 30 * time.Second

// Submitter is the admission side of an executor
type Submitter interface {
	Submit(task types.Task) (*executor.Handle, error)
}

// timeoutSource is implemented by executors that carry a default await timeout
type timeoutSource interface {
	DefaultTimeout() time.Duration
}

// Gateway submits request work to an executor and waits for it with a
// deadline, so request handling never outlives DefaultTimeout.
type Gateway struct {
	exec    Submitter
	timeout time.Duration
	clock   types.Clock
	logger  *zap.Logger
	policy  *retry.Policy
	retrier *retry.Retrier
}

// Option configures a Gateway
type Option func(*Gateway)

// WithTimeout overrides the await timeout
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithClock sets the clock used for await deadlines
func WithClock(clock types.Clock) Option {
	return func(g *Gateway) {
		g.clock = clock
	}
}

// WithRetry resubmits rejected work according to policy
func WithRetry(policy retry.Policy) Option {
	return func(g *Gateway) {
		g.policy = &policy
	}
}

// New creates a gateway in front of exec. The timeout comes from
// WithTimeout, then the executor's DefaultTimeout, then DefaultTimeout.
func New(exec Submitter, opts ...Option) *Gateway {
	g := &Gateway{
		exec:   exec,
		clock:  types.NewRealClock(),
		logger: zap.NewNop(),
	}
	if ts, ok := exec.(timeoutSource); ok && ts.DefaultTimeout() > 0 {
		g.timeout = ts.DefaultTimeout()
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.policy != nil {
		g.retrier = retry.New(*g.policy, retry.WithClock(g.clock), retry.WithLogger(g.logger))
	}
	return g
}

// Timeout returns the await timeout
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

// Submit admits task without waiting for it, retrying rejections when a
// retry policy is configured
func (g *Gateway) Submit(ctx context.Context, task types.Task) (*executor.Handle, error) {
	if g.retrier != nil {
		return g.retrier.Submit(ctx, g.exec, task)
	}
	return g.exec.Submit(task)
}

// Do submits task and waits until it finishes, ctx ends or the gateway
// timeout elapses. Deadlines yield an error matching types.ErrTimeout; the
// task keeps running and its outcome is dropped.
func (g *Gateway) Do(ctx context.Context, task types.Task) (any, error) {
	h, err := g.Submit(ctx, task)
	if err != nil {
		return nil, err
	}
	return g.await(ctx, h)
}

// DoFunc is Do for a plain function
func (g *Gateway) DoFunc(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return g.Do(ctx, types.TaskFunc(fn))
}

func (g *Gateway) await(ctx context.Context, h *executor.Handle) (any, error) {
	if v, ok, err := h.Poll(); ok {
		return v, err
	}

	timer := g.clock.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case <-h.Done():
		v, _, err := h.Poll()
		return v, err
	case <-timer.C():
		return nil, fmt.Errorf("%w: task %s after %s: %w",
			types.ErrTimeout, h.ID(), g.timeout, context.DeadlineExceeded)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: task %s: %w", types.ErrTimeout, h.ID(), ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// Call runs fn through g and returns its typed result
func Call[T any](ctx context.Context, g *Gateway, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if fn == nil {
		return zero, types.ErrNilTask
	}

	v, err := g.Do(ctx, types.TaskFunc(func(ctx context.Context) (any, error) {
		return fn(ctx)
	}))
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok && v != nil {
		return zero, fmt.Errorf("gateway: result is %T, want %T", v, zero)
	}
	return typed, nil
}
