package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	ierrors "github.com/jzx17/goexecutor/internal/errors"
	"github.com/jzx17/goexecutor/pkg/types"
)

// admission is the outcome of the admission decision for one submission
type admission int

const (
	admitQueue admission = iota
	admitIdle
	admitSpawn
)

// Executor runs submitted tasks on a pool of workers bounded by CoreSize
// and MaxSize, buffering overflow in a fixed-capacity FIFO queue.
type Executor struct {
	cfg       Config
	name      string
	clock     types.Clock
	logger    *zap.Logger
	metrics   *Metrics
	onFailure ierrors.FailureHandler

	// mu guards everything below up to the counters
	mu           sync.Mutex
	state        types.ExecutorState
	queue        *taskQueue
	idle         []*worker // most recently idled last
	workers      int
	largest      int
	nextWorkerID int
	ctx          context.Context
	cancelCtx    context.CancelFunc

	wg         sync.WaitGroup
	terminated chan struct{}

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	cancelled atomic.Int64
}

// New creates a bounded executor. A nil config uses DefaultConfig.
func New(config *Config) (*Executor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = defaultNamePrefix
	}
	if cfg.Clock == nil {
		cfg.Clock = types.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	name := strings.TrimRight(cfg.NamePrefix, "-_.: ")
	if name == "" {
		name = "executor"
	}

	return &Executor{
		cfg:        cfg,
		name:       name,
		clock:      cfg.Clock,
		logger:     cfg.Logger.Named(name),
		metrics:    cfg.Metrics,
		onFailure:  ierrors.FailureHandler(cfg.OnFailure),
		state:      types.StateCreated,
		queue:      newTaskQueue(cfg.QueueCapacity),
		idle:       make([]*worker, 0, cfg.MaxSize),
		terminated: make(chan struct{}),
	}, nil
}

// Start prestarts the core workers and opens the executor for submissions.
// ctx is the parent of every task context.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case types.StateRunning:
		return fmt.Errorf("executor %s is already running", e.name)
	case types.StateShuttingDown, types.StateTerminated:
		return fmt.Errorf("executor %s: %w", e.name, types.ErrShutdown)
	}

	e.ctx, e.cancelCtx = context.WithCancel(ctx)
	e.state = types.StateRunning
	for i := 0; i < e.cfg.CoreSize; i++ {
		e.spawnLocked(nil)
	}
	e.observeLocked()

	e.logger.Info("executor started",
		zap.Int("core_size", e.cfg.CoreSize),
		zap.Int("max_size", e.cfg.MaxSize),
		zap.Int("queue_capacity", e.cfg.QueueCapacity),
		zap.Duration("keep_alive", e.cfg.KeepAlive))
	return nil
}

// Submit admits task: an idle worker takes it directly, otherwise a new
// worker is spawned while below MaxSize, otherwise it is queued while the
// queue has room. A saturated executor returns a *types.RejectedError.
func (e *Executor) Submit(task types.Task) (*Handle, error) {
	if task == nil {
		return nil, types.ErrNilTask
	}

	now := e.clock.Now()
	h := newHandle(e, task, now)

	e.mu.Lock()
	switch e.state {
	case types.StateCreated:
		e.mu.Unlock()
		return nil, fmt.Errorf("executor %s: %w", e.name, types.ErrNotStarted)
	case types.StateShuttingDown, types.StateTerminated:
		e.mu.Unlock()
		return nil, fmt.Errorf("executor %s: %w", e.name, types.ErrShutdown)
	}

	admit := admitQueue
	switch {
	case len(e.idle) > 0:
		admit = admitIdle
	case e.workers < e.cfg.MaxSize:
		admit = admitSpawn
	case e.queue.Len() >= e.queue.Cap():
		rejected := &types.RejectedError{
			Executor:      e.name,
			PoolSize:      e.workers,
			QueueSize:     e.queue.Len(),
			QueueCapacity: e.queue.Cap(),
		}
		e.mu.Unlock()

		e.rejected.Add(1)
		e.metrics.taskRejected()
		e.logger.Warn("task rejected", zap.String("task", h.id), zap.Error(rejected))
		return nil, rejected
	}

	e.submitted.Add(1)
	e.metrics.taskSubmitted()

	switch admit {
	case admitIdle:
		h.markRunning(now)
		e.metrics.observeWait(0)
		e.popIdleLocked().handoff <- h
	case admitSpawn:
		h.markRunning(now)
		e.metrics.observeWait(0)
		e.spawnLocked(h)
	default:
		e.queue.push(h)
	}
	e.observeLocked()
	e.mu.Unlock()

	return h, nil
}

// SubmitFunc submits fn as a task
func (e *Executor) SubmitFunc(fn func(ctx context.Context) (any, error)) (*Handle, error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return e.Submit(types.TaskFunc(fn))
}

// Shutdown stops admission and waits for the workers to exit or ctx to end.
// With drain, queued and running tasks finish. Without drain, queued tasks
// are cancelled with an error matching both types.ErrCancelled and
// types.ErrShutdown, and running tasks finish. Only the first call
// starts the teardown; later calls wait for the same termination, and a
// later call without drain still cancels whatever is left in the queue.
func (e *Executor) Shutdown(ctx context.Context, drain bool) error {
	var dropped []*Handle

	e.mu.Lock()
	switch e.state {
	case types.StateCreated:
		e.state = types.StateTerminated
		close(e.terminated)
	case types.StateRunning:
		e.state = types.StateShuttingDown
		for _, w := range e.idle {
			w.idle = false
			close(w.handoff)
		}
		e.idle = e.idle[:0]
		if !drain {
			dropped = e.queue.drain()
		}
		go e.awaitWorkers()

		e.logger.Info("executor shutting down",
			zap.Bool("drain", drain),
			zap.Int("workers", e.workers),
			zap.Int("queued", e.queue.Len()+len(dropped)))
	case types.StateShuttingDown:
		if !drain {
			dropped = e.queue.drain()
		}
	}
	e.observeLocked()
	e.mu.Unlock()

	for _, h := range dropped {
		if h.markCancelled() {
			e.cancelled.Add(1)
			e.metrics.taskCancelled()
			h.finish(types.TaskCancelled, nil,
				fmt.Errorf("%w: %w", types.ErrCancelled, types.ErrShutdown), e.clock.Now())
		}
	}

	select {
	case <-e.terminated:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("executor %s: shutdown: %w", e.name, ctx.Err())
	}
}

// Close drains the executor and waits for every worker to exit
func (e *Executor) Close() error {
	return e.Shutdown(context.Background(), true)
}

// Terminated returns a channel closed once every worker has exited after shutdown
func (e *Executor) Terminated() <-chan struct{} {
	return e.terminated
}

func (e *Executor) awaitWorkers() {
	e.wg.Wait()

	e.mu.Lock()
	e.state = types.StateTerminated
	e.observeLocked()
	e.mu.Unlock()

	e.cancelCtx()
	e.logger.Info("executor terminated")
	close(e.terminated)
}

// cancel cancels a handle that is still waiting in the queue
func (e *Executor) cancel(h *Handle) bool {
	e.mu.Lock()
	if !h.markCancelled() {
		e.mu.Unlock()
		return false
	}
	e.queue.remove(h)
	e.observeLocked()
	e.mu.Unlock()

	e.cancelled.Add(1)
	e.metrics.taskCancelled()
	h.finish(types.TaskCancelled, nil, types.ErrCancelled, e.clock.Now())
	return true
}

// spawnLocked starts a worker with its first task. A worker started
// without one is idle, and able to take a hand-off, before this returns.
func (e *Executor) spawnLocked(first *Handle) {
	e.nextWorkerID++
	w := newWorker(e, e.nextWorkerID)

	e.workers++
	if e.workers > e.largest {
		e.largest = e.workers
	}
	if first == nil {
		w.idle = true
		e.idle = append(e.idle, w)
	}

	e.wg.Add(1)
	go w.run(e.ctx, first)

	e.logger.Debug("worker spawned", zap.String("worker", w.name), zap.Int("workers", e.workers))
}

// popIdleLocked takes the most recently idled worker
func (e *Executor) popIdleLocked() *worker {
	n := len(e.idle) - 1
	w := e.idle[n]
	e.idle[n] = nil
	e.idle = e.idle[:n]
	w.idle = false
	return w
}

// dequeueLocked takes the queue head and marks it running
func (e *Executor) dequeueLocked() *Handle {
	for {
		h := e.queue.pop()
		if h == nil {
			return nil
		}

		now := e.clock.Now()
		if h.markRunning(now) {
			e.metrics.observeWait(now.Sub(h.submittedAt))
			e.observeLocked()
			return h
		}
	}
}

// expire handles a keep-alive timeout; it reports whether w retired
func (e *Executor) expire(w *worker) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Already handed a task or closed by shutdown.
	if !w.idle {
		return false
	}
	if e.workers <= e.cfg.CoreSize {
		return false
	}

	for i, iw := range e.idle {
		if iw == w {
			e.idle = append(e.idle[:i], e.idle[i+1:]...)
			break
		}
	}
	w.idle = false
	e.retireLocked(w, "keep-alive expired")
	return true
}

func (e *Executor) retire(w *worker, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.retireLocked(w, reason)
}

func (e *Executor) retireLocked(w *worker, reason string) {
	e.workers--
	e.observeLocked()
	e.logger.Debug("worker retired",
		zap.String("worker", w.name),
		zap.String("reason", reason),
		zap.Int("workers", e.workers))
}

// observeLocked publishes pool gauges
func (e *Executor) observeLocked() {
	e.metrics.setPool(e.workers, e.workers-len(e.idle), e.queue.Len())
}

// Stats returns a snapshot of pool and task statistics
func (e *Executor) Stats() types.ExecutorStats {
	e.mu.Lock()
	stats := types.ExecutorStats{
		CoreSize:        e.cfg.CoreSize,
		MaxSize:         e.cfg.MaxSize,
		PoolSize:        e.workers,
		ActiveWorkers:   e.workers - len(e.idle),
		IdleWorkers:     len(e.idle),
		LargestPoolSize: e.largest,
		QueueSize:       e.queue.Len(),
		QueueCapacity:   e.queue.Cap(),
	}
	e.mu.Unlock()

	stats.Submitted = e.submitted.Load()
	stats.Completed = e.completed.Load()
	stats.Failed = e.failed.Load()
	stats.Rejected = e.rejected.Load()
	stats.Cancelled = e.cancelled.Load()
	return stats
}

// State returns the lifecycle state
func (e *Executor) State() types.ExecutorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsRunning checks if the executor accepts submissions
func (e *Executor) IsRunning() bool {
	return e.State() == types.StateRunning
}

// Name returns the executor name derived from NamePrefix
func (e *Executor) Name() string {
	return e.name
}

// Config returns a copy of the executor configuration
func (e *Executor) Config() Config {
	return e.cfg
}

// DefaultTimeout returns the configured gateway await timeout
func (e *Executor) DefaultTimeout() time.Duration {
	return e.cfg.DefaultTimeout
}
