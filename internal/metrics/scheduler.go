package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scheduler holds the collectors for one action scheduler. A nil
// *Scheduler is valid and records nothing.
type Scheduler struct {
	started   prometheus.Counter
	finished  prometheus.Counter
	cancelled prometheus.Counter
	failed    *prometheus.CounterVec
	active    prometheus.Gauge
	targets   prometheus.Gauge
	pulse     prometheus.Histogram
}

// Failure causes used as the "cause" label of choreo_actions_failed_total.
const (
	CauseInit   = "init"
	CauseUpdate = "update"
	CausePanic  = "panic"
)

// NewScheduler creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func NewScheduler(reg prometheus.Registerer) *Scheduler {
	m := &Scheduler{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "choreo_actions_started_total",
			Help: "Actions handed to the scheduler.",
		}),
		finished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "choreo_actions_finished_total",
			Help: "Actions that ran to completion.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "choreo_actions_cancelled_total",
			Help: "Actions removed before completion, including key replacement.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "choreo_actions_failed_total",
			Help: "Actions removed because a lifecycle hook failed.",
		}, []string{"cause"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "choreo_actions_active",
			Help: "Actions currently registered.",
		}),
		targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "choreo_targets_active",
			Help: "Targets with at least one registered action.",
		}),
		pulse: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "choreo_pulse_seconds",
			Help:    "Wall time spent in one scheduler pulse.",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.started, m.finished, m.cancelled, m.failed, m.active, m.targets, m.pulse)
	}
	return m
}

func (m *Scheduler) Started() {
	if m == nil {
		return
	}
	m.started.Inc()
	m.active.Inc()
}

func (m *Scheduler) Finished() {
	if m == nil {
		return
	}
	m.finished.Inc()
	m.active.Dec()
}

func (m *Scheduler) Cancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
	m.active.Dec()
}

func (m *Scheduler) Failed(cause string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(cause).Inc()
	m.active.Dec()
}

// Targets records the number of targets with registered actions.
func (m *Scheduler) Targets(n int) {
	if m == nil {
		return
	}
	m.targets.Set(float64(n))
}

// Pulse records how long one pulse took.
func (m *Scheduler) Pulse(d time.Duration) {
	if m == nil {
		return
	}
	m.pulse.Observe(d.Seconds())
}
