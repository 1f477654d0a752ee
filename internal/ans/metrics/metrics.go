package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry and its storage.
type Metrics struct {
	NamesAssigned  prometheus.Counter
	Rejections     *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	EventsEmitted  *prometheus.CounterVec
}

// New registers the metrics on the default Prometheus registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NamesAssigned: factory.NewCounter(prometheus.CounterOpts{
			Name: "ans_names_assigned_total",
			Help: "Total number of name bindings written",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ans_rejections_total",
			Help: "Rejected operations by component, operation and error code",
		}, []string{"component", "operation", "code"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ans_lookup_duration_seconds",
			Help:    "Duration of storage lookups by direction",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"direction"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ans_resolve_cache_lookups_total",
			Help: "Resolution cache lookups by direction and result",
		}, []string{"direction", "result"}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ans_events_emitted_total",
			Help: "NameAssigned events handed to sinks by sink and outcome",
		}, []string{"sink", "outcome"}),
	}
}

// IncrementNamesAssigned records a successful binding.
func (m *Metrics) IncrementNamesAssigned() {
	m.NamesAssigned.Inc()
}

// RecordRejection records a failed operation.
func (m *Metrics) RecordRejection(component, operation, code string) {
	m.Rejections.WithLabelValues(component, operation, code).Inc()
}

// ObserveLookup records the duration of a lookup started at start.
func (m *Metrics) ObserveLookup(direction string, start time.Time) {
	m.LookupDuration.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}

// RecordCacheHit and RecordCacheMiss track the resolution cache.
func (m *Metrics) RecordCacheHit(direction string) {
	m.CacheLookups.WithLabelValues(direction, "hit").Inc()
}

func (m *Metrics) RecordCacheMiss(direction string) {
	m.CacheLookups.WithLabelValues(direction, "miss").Inc()
}

// RecordEvent records the outcome of handing an event to a sink.
func (m *Metrics) RecordEvent(sink, outcome string) {
	m.EventsEmitted.WithLabelValues(sink, outcome).Inc()
}
