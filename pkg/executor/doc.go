/*
Package executor provides a bounded task executor: a named pool of worker goroutines sized between a core and a maximum count, backed by a fixed-capacity FIFO queue.

# Overview

Tasks are admitted in this order:
  - an idle worker takes the task directly
  - below MaxSize, a new worker is spawned for it
  - with queue room, the task waits in FIFO order
  - otherwise the submission fails with a *types.RejectedError

Workers above CoreSize retire after KeepAlive of idleness. Core workers are
started by Start and never time out.

# Handles

Submit returns a *Handle. Await and AwaitTimeout block only the caller; a
timeout leaves the task running and the handle valid, so a later Await
still returns the real result. Cancel removes a task that is still queued
and is a no-op for running or finished tasks.

Task errors and panics never reach the worker: they are captured into a
*types.TaskFailure and attached to the handle.

# Usage Examples

Basic usage:

	exec, err := executor.New(&executor.Config{
		CoreSize:      10,
		MaxSize:       50,
		QueueCapacity: 100,
		KeepAlive:     60 * time.Second,
		NamePrefix:    "async-",
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := exec.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer exec.Close()

	h, err := exec.SubmitFunc(func(ctx context.Context) (any, error) {
		return lookup(ctx, key)
	})
	if types.IsRejected(err) {
		// back off; the executor never retries
	}

	v, err := h.AwaitTimeout(2 * time.Second)
	if errors.Is(err, types.ErrTimeout) {
		// still running; await again or cancel
	}

Shutdown:

	// finish queued work
	exec.Shutdown(ctx, true)

	// cancel queued work, let running tasks finish
	exec.Shutdown(ctx, false)

# Configuration

Config can be built in code, loaded from YAML with LoadConfig or LoadConfigFrom, and
overridden from the environment with ApplyEnv. Logger, Clock, Metrics and
OnFailure are optional.
*/
package executor
