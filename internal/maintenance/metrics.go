package maintenance

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "signage"
	metricsSubsystem = "maintenance"
)

// Metrics holds the counters updated by the image processing task. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	released prometheus.Counter
	failures *prometheus.CounterVec
	notified prometheus.Counter
}

// NewMetrics registers the task counters on reg. Counters already present on
// reg are reused so several tasks can share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	released, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "images_released_total",
		Help:      "Images resized and released by the image processing task.",
	}))
	if err != nil {
		return nil, err
	}
	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "image_failures_total",
		Help:      "Items skipped by the image processing task, by stage.",
	}, []string{"stage"}))
	if err != nil {
		return nil, err
	}
	notified, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "displays_notified_total",
		Help:      "Displays told to refresh their media inventory.",
	}))
	if err != nil {
		return nil, err
	}

	return &Metrics{released: released, failures: failures, notified: notified}, nil
}

func (m *Metrics) incReleased() {
	if m != nil {
		m.released.Inc()
	}
}

func (m *Metrics) incFailure(stage Stage) {
	if m != nil {
		m.failures.WithLabelValues(string(stage)).Inc()
	}
}

func (m *Metrics) incNotified() {
	if m != nil {
		m.notified.Inc()
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}
