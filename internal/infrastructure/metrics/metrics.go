package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa os coletores da aplicação em um registry próprio
type Metrics struct {
	registry *prometheus.Registry
	jobs     *prometheus.CounterVec
	events   *prometheus.CounterVec
}

// New cria os coletores
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "members",
			Subsystem: "admin",
			Name:      "jobs_total",
			Help:      "Admin actions executed, by job and result.",
		}, []string{"job", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "members",
			Name:      "account_events_total",
			Help:      "Account events delivered to observers.",
		}, []string{"event"}),
	}
	registry.MustRegister(m.jobs, m.events)

	return m
}

// ObserveJob conta uma ação administrativa
func (m *Metrics) ObserveJob(job string, ok bool) {
	m.jobs.WithLabelValues(job, strconv.FormatBool(ok)).Inc()
}

// ObserveEvent conta um evento de conta
func (m *Metrics) ObserveEvent(name string) {
	m.events.WithLabelValues(name).Inc()
}

// Handler serve /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
