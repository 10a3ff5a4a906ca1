// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pos"

// Metrics groups the HTTP and business collectors
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	invoicesCreated *prometheus.CounterVec
	revenue         prometheus.Counter
	tokensIssued    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Invoices created by payment mode.",
		}, []string{"payment_mode"}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Sum of invoice totals in rupees.",
		}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_tokens_issued_total",
			Help:      "Counter tokens issued by counter number.",
		}, []string{"counter"}),
	}

	if reg != nil {
		reg.MustRegister(m.httpRequests, m.httpDuration, m.invoicesCreated, m.revenue, m.tokensIssued)
	}
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// InvoiceCreated records a committed invoice
func (m *Metrics) InvoiceCreated(paymentMode string, amount float64) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(paymentMode).Inc()
	if amount > 0 {
		m.revenue.Add(amount)
	}
}

// TokenIssued records a token handed out at counterNo
func (m *Metrics) TokenIssued(counterNo int) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(strconv.Itoa(counterNo)).Inc()
}
