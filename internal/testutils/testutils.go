// Package testutils provides task helpers and clock mocks for executor tests
package testutils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/goexecutor/pkg/types"
)

// Gate blocks tasks until it is opened
type Gate struct {
	ch   chan struct{}
	once sync.Once
}

// NewGate creates a closed gate
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Open releases every task waiting on the gate; safe to call more than once
func (g *Gate) Open() {
	g.once.Do(func() { close(g.ch) })
}

// Wait blocks until the gate opens or ctx is done
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordingTask counts executions and records start order into a shared Recorder
type RecordingTask struct {
	id       string
	value    any
	err      error
	gate     *Gate
	recorder *Recorder
	runs     int32
}

// NewRecordingTask creates a task that returns value once gate (optional) opens
func NewRecordingTask(id string, value any, gate *Gate, recorder *Recorder) *RecordingTask {
	return &RecordingTask{id: id, value: value, gate: gate, recorder: recorder}
}

// WithError makes the task return err
func (t *RecordingTask) WithError(err error) *RecordingTask {
	t.err = err
	return t
}

// Execute implements types.Task
func (t *RecordingTask) Execute(ctx context.Context) (any, error) {
	atomic.AddInt32(&t.runs, 1)
	if t.recorder != nil {
		t.recorder.Record(t.id)
	}
	if t.gate != nil {
		if err := t.gate.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return t.value, t.err
}

// ID implements types.Task
func (t *RecordingTask) ID() string {
	return t.id
}

// Runs returns how many times the task executed
func (t *RecordingTask) Runs() int {
	return int(atomic.LoadInt32(&t.runs))
}

// Recorder collects task IDs in start order
type Recorder struct {
	mu    sync.Mutex
	order []string
}

// Record appends id
func (r *Recorder) Record(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
}

// Order returns a copy of the recorded IDs
func (r *Recorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Sleep returns a task sleeping for d on the real clock, honouring ctx
func Sleep(d time.Duration, value any) types.Task {
	return types.TaskFunc(func(ctx context.Context) (any, error) {
		select {
		case <-time.After(d):
			return value, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}
