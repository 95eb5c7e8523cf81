package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for one executor. A nil *Metrics
// records nothing.
type Metrics struct {
	TasksSubmitted prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TasksRejected  prometheus.Counter
	TasksCancelled prometheus.Counter
	PoolSize       prometheus.Gauge
	ActiveWorkers  prometheus.Gauge
	QueueSize      prometheus.Gauge
	WaitTime       prometheus.Histogram
	RunTime        prometheus.Histogram
}

// NewMetrics creates the collectors, labelled with the executor name, and
// registers them with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer, namespace, executor string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	labels := prometheus.Labels{"executor": executor}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		})
	}

	m := &Metrics{
		TasksSubmitted: counter("tasks_submitted_total", "Total number of tasks admitted."),
		TasksCompleted: counter("tasks_completed_total", "Total number of tasks completed successfully."),
		TasksFailed:    counter("tasks_failed_total", "Total number of tasks that returned an error or panicked."),
		TasksRejected:  counter("tasks_rejected_total", "Total number of submissions rejected by a saturated pool."),
		TasksCancelled: counter("tasks_cancelled_total", "Total number of queued tasks cancelled before starting."),
		PoolSize:       gauge("workers", "Current number of workers."),
		ActiveWorkers:  gauge("active_workers", "Current number of workers running a task."),
		QueueSize:      gauge("queue_size", "Current number of queued tasks."),
		WaitTime:       histogram("task_wait_seconds", "Time between admission and start."),
		RunTime:        histogram("task_run_seconds", "Task execution time."),
	}

	for _, c := range []prometheus.Collector{
		m.TasksSubmitted, m.TasksCompleted, m.TasksFailed, m.TasksRejected, m.TasksCancelled,
		m.PoolSize, m.ActiveWorkers, m.QueueSize, m.WaitTime, m.RunTime,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) taskSubmitted() {
	if m != nil {
		m.TasksSubmitted.Inc()
	}
}

func (m *Metrics) taskCompleted() {
	if m != nil {
		m.TasksCompleted.Inc()
	}
}

func (m *Metrics) taskFailed() {
	if m != nil {
		m.TasksFailed.Inc()
	}
}

func (m *Metrics) taskRejected() {
	if m != nil {
		m.TasksRejected.Inc()
	}
}

func (m *Metrics) taskCancelled() {
	if m != nil {
		m.TasksCancelled.Inc()
	}
}

func (m *Metrics) setPool(workers, active, queued int) {
	if m == nil {
		return
	}
	m.PoolSize.Set(float64(workers))
	m.ActiveWorkers.Set(float64(active))
	m.QueueSize.Set(float64(queued))
}

func (m *Metrics) observeWait(d time.Duration) {
	if m != nil {
		m.WaitTime.Observe(d.Seconds())
	}
}

func (m *Metrics) observeRun(d time.Duration) {
	if m != nil {
		m.RunTime.Observe(d.Seconds())
	}
}
