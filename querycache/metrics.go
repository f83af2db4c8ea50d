package querycache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "querycache"

// Metrics counts cache traffic per entity type.
type Metrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Sets          *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg. A nil reg
// leaves them unregistered. Registering twice against the same registry
// reuses the collectors already there.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Hits:          newCounter("hits_total", "Number of queries answered from the cache."),
		Misses:        newCounter("misses_total", "Number of cacheable queries that reached the database."),
		Sets:          newCounter("sets_total", "Number of result sets written to the cache."),
		Invalidations: newCounter("invalidations_total", "Number of cache entries removed after a mutation."),
	}
	if reg == nil {
		return m, nil
	}

	for _, c := range []**prometheus.CounterVec{&m.Hits, &m.Misses, &m.Sets, &m.Invalidations} {
		if err := reg.Register(*c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			*c = existing
		}
	}
	return m, nil
}

func newCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      name,
		Help:      help,
	}, []string{"type"})
}

func (m *Metrics) hit(label string) {
	if m != nil {
		m.Hits.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) miss(label string) {
	if m != nil {
		m.Misses.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) set(label string) {
	if m != nil {
		m.Sets.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) invalidate(label string) {
	if m != nil {
		m.Invalidations.WithLabelValues(label).Inc()
	}
}
