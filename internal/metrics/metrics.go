package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/dutyledger/internal/model"
)

const namespace = "dutyledger"

// Metrics holds the registry's collectors. Each instance owns a private
// Prometheus registry so tests and multiple apps never collide.
type Metrics struct {
	registry *prometheus.Registry

	PersonsRegistered  prometheus.Counter
	DutyAssignments    prometheus.Counter
	DutyRejections     *prometheus.CounterVec
	AssignDutyDuration prometheus.Histogram
}

// New creates a Metrics instance with every collector registered
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PersonsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persons_registered_total",
			Help:      "Total number of persons registered",
		}),
		DutyAssignments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duty_assignments_total",
			Help:      "Total number of duty assignments applied",
		}),
		DutyRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duty_rejections_total",
			Help:      "Total number of duty assignments rejected, by error kind",
		}, []string{"kind"}),
		AssignDutyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assign_duty_duration_seconds",
			Help:      "Duration of AssignDuty operations, including lock wait",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncrementPersonsRegistered records a successful registration.
func (m *Metrics) IncrementPersonsRegistered() {
	m.PersonsRegistered.Inc()
}

// IncrementDutyAssignments records an applied assignment.
func (m *Metrics) IncrementDutyAssignments() {
	m.DutyAssignments.Inc()
}

// IncrementDutyRejections records a rejected assignment under the kind of err.
func (m *Metrics) IncrementDutyRejections(err error) {
	m.DutyRejections.WithLabelValues(ErrorKind(err)).Inc()
}

// ObserveAssignDuty records the duration of an AssignDuty call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAssignDuty(start time.Time) {
	m.AssignDutyDuration.Observe(time.Since(start).Seconds())
}

// ErrorKind returns the metric label for an error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
