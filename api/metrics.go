/*
metrics.go - Prometheus instrumentation for the billing API

PURPOSE:
  Request counters and latency per route, issuance counters per bill kind,
  and the overdue gauges refreshed by the overdue scheduler.

REGISTRY:
  Each Metrics owns its registry instead of using the global default, so
  tests can build as many handlers as they like without duplicate
  registration panics. GET /metrics serves that registry.

SEE ALSO:
  - server.go: Instrument middleware and the /metrics route
  - scheduler.go: updates the overdue gauges
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/billing-engine/billing"
)

const metricPrefix = "billing_"

// Metrics holds every collector exported by the service.
type Metrics struct {
	Registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	billsIssued *prometheus.CounterVec
	scans       *prometheus.CounterVec

	overdueResidents prometheus.Gauge
	overdueBills     prometheus.Gauge
	overdueAmount    prometheus.Gauge
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		billsIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bills_issued_total",
				Help: "Bills issued by kind",
			},
			[]string{"kind"},
		),
		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "overdue_scans_total",
				Help: "Overdue scans by result",
			},
			[]string{"result"},
		),
		overdueResidents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "overdue_residents",
			Help: "Residents with at least one overdue bill at the last scan",
		}),
		overdueBills: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "overdue_bills",
			Help: "Overdue bills at the last scan",
		}),
		overdueAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "overdue_amount",
			Help: "Total overdue amount at the last scan",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.billsIssued,
		m.scans,
		m.overdueResidents,
		m.overdueBills,
		m.overdueAmount,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Instrument records count and latency per chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// BillsIssued counts newly saved bills.
func (m *Metrics) BillsIssued(bills []billing.Bill) {
	for _, b := range bills {
		m.billsIssued.WithLabelValues(string(b.Kind)).Inc()
	}
}

// ObserveOverdue publishes the result of an overdue scan.
func (m *Metrics) ObserveOverdue(groups []billing.OverdueGroup, err error) {
	if err != nil {
		m.scans.WithLabelValues("error").Inc()
		return
	}
	m.scans.WithLabelValues("success").Inc()

	bills := 0
	for _, g := range groups {
		bills += g.BillsCount
	}
	m.overdueResidents.Set(float64(len(groups)))
	m.overdueBills.Set(float64(bills))
	m.overdueAmount.Set(billing.OverdueTotal(groups).InexactFloat64())
}
