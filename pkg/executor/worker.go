package executor

import (
	"context"
	"fmt"
	"runtime/pprof"
	"time"

	"go.uber.org/zap"

	ierrors "github.com/jzx17/goexecutor/internal/errors"
	"github.com/jzx17/goexecutor/pkg/types"
)

// worker is a single executor goroutine. It runs one task at a time and
// takes the next one from the queue, or parks on handoff when idle.
type worker struct {
	id      int
	name    string
	exec    *Executor
	handoff chan *Handle // capacity 1, closed on shutdown

	// idle is guarded by exec.mu
	idle bool
}

func newWorker(e *Executor, id int) *worker {
	return &worker{
		id:      id,
		name:    fmt.Sprintf("%s%d", e.cfg.NamePrefix, id),
		exec:    e,
		handoff: make(chan *Handle, 1),
	}
}

// run executes first and then keeps serving until it retires. Without a
// first task the worker was registered idle by spawnLocked and starts by
// waiting for a hand-off.
func (w *worker) run(ctx context.Context, first *Handle) {
	defer w.exec.wg.Done()

	labels := pprof.Labels("executor", w.exec.name, "worker", w.name)
	pprof.Do(ctx, labels, func(ctx context.Context) {
		h, ok := first, true
		if h == nil {
			h, ok = w.wait(nil)
		}

		for ok {
			w.execute(ctx, h)
			h, ok = w.next()
		}
	})
}

// next returns the queue head, or parks the worker until it is handed a
// task. ok is false when the worker retired.
func (w *worker) next() (*Handle, bool) {
	e := w.exec

	e.mu.Lock()
	if h := e.dequeueLocked(); h != nil {
		e.mu.Unlock()
		return h, true
	}

	if e.state != types.StateRunning {
		e.retireLocked(w, "shutdown")
		e.mu.Unlock()
		return nil, false
	}

	w.idle = true
	e.idle = append(e.idle, w)

	// Core workers wait without a deadline.
	var timer types.Timer
	if e.workers > e.cfg.CoreSize {
		timer = e.clock.NewTimer(e.cfg.KeepAlive)
	}
	e.observeLocked()
	e.mu.Unlock()

	return w.wait(timer)
}

func (w *worker) wait(timer types.Timer) (*Handle, bool) {
	var expired <-chan time.Time
	if timer != nil {
		defer timer.Stop()
		expired = timer.C()
	}

	for {
		select {
		case h, ok := <-w.handoff:
			if !ok {
				w.exec.retire(w, "shutdown")
				return nil, false
			}
			return h, true
		case <-expired:
			if w.exec.expire(w) {
				return nil, false
			}
			expired = nil
		}
	}
}

// execute runs a handle already marked running and publishes its outcome
func (w *worker) execute(ctx context.Context, h *Handle) {
	e := w.exec

	start := e.clock.Now()
	value, err := w.runTask(ctx, h)
	end := e.clock.Now()
	e.metrics.observeRun(end.Sub(start))

	if err == nil {
		e.completed.Add(1)
		e.metrics.taskCompleted()
		h.finish(types.TaskCompleted, value, nil, end)
		return
	}

	failure := ierrors.FromError(h.id, w.name, err)
	e.failed.Add(1)
	e.metrics.taskFailed()
	h.finish(types.TaskFailed, nil, failure, end)

	if failure.Panicked {
		e.logger.Error("task panicked",
			zap.String("worker", w.name),
			zap.String("task", h.id),
			zap.Error(failure.Cause),
			zap.String("stack", failure.Stack))
	} else {
		e.logger.Debug("task failed",
			zap.String("worker", w.name),
			zap.String("task", h.id),
			zap.Error(failure.Cause))
	}

	if ierrors.Notify(e.onFailure, failure) {
		e.logger.Error("failure handler panicked", zap.String("task", h.id))
	}
}

// runTask executes the task with panic recovery support
func (w *worker) runTask(ctx context.Context, h *Handle) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = ierrors.FromPanic(h.id, w.name, r)
		}
	}()

	return h.task.Execute(ctx)
}
