package exobase

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records hook outcomes.
type Metrics interface {
	// IncCounter increments the counter name with the given label values.
	IncCounter(name string, labels map[string]string)
}

// NoopMetrics is a Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(string, map[string]string) {}

// PrometheusMetrics implements Metrics with Prometheus counter vectors.
// Each counter is registered on first use with the label names it was
// first called with.
type PrometheusMetrics struct {
	registerer prometheus.Registerer
	namespace  string

	mu       sync.Mutex
	counters map[string]*prometheus.CounterVec
}

// NewPrometheusMetrics returns Metrics backed by reg. Counter names are
// prefixed with namespace when it is not empty.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: reg,
		namespace:  namespace,
		counters:   make(map[string]*prometheus.CounterVec),
	}
}

func (m *PrometheusMetrics) IncCounter(name string, labels map[string]string) {
	m.counter(name, labels).With(labels).Inc()
}

func (m *PrometheusMetrics) counter(name string, labels map[string]string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.counters[name]
	if ok {
		return vec
	}

	vec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      name + " counter",
	}, labelNames(labels))
	m.registerer.MustRegister(vec)
	m.counters[name] = vec
	return vec
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	return names
}
