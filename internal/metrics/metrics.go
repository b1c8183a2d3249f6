package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trip_dashboard"

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics собирает счетчики внешних вызовов и использованных фолбэков.
// Методы безопасны для nil-получателя.
type Metrics struct {
	registry  *prometheus.Registry
	upstream  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	sessions  prometheus.Counter
}

// New создает отдельный реестр с метриками процесса и Go-рантайма.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound requests to ML, geocoding and places services.",
		}, []string{"component", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Requests answered by a local fallback.",
		}, []string{"component"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Trip sessions opened.",
		}),
	}
	registry.MustRegister(m.upstream, m.fallbacks, m.sessions)
	return m
}

// Upstream учитывает исход внешнего запроса компонента.
func (m *Metrics) Upstream(component string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.upstream.WithLabelValues(component, outcome).Inc()
}

// Fallback учитывает ответ, собранный локальным фолбэком.
func (m *Metrics) Fallback(component string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(component).Inc()
}

// SessionCreated учитывает новую сессию.
func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// Handler отдает метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
