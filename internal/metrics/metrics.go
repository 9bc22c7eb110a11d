// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "library"

// Metrics groups the circulation collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Transactions   *prometheus.CounterVec
	FinesAssessed  prometheus.Counter
	FeeCollections *prometheus.CounterVec
	FeesCollected  prometheus.Counter
	BatchItems     *prometheus.CounterVec
	HTTPRequests   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Book transaction lifecycle events by type and action.",
		}, []string{"type", "action"}),
		FinesAssessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_assessed_total",
			Help:      "Sum of overdue fines assessed on returns.",
		}),
		FeeCollections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_collections_total",
			Help:      "Fee collections by lifecycle action.",
		}, []string{"action"}),
		FeesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_collected_total",
			Help:      "Net amount of submitted fee collections.",
		}),
		BatchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items processed by bulk report operations.",
		}, []string{"operation", "result"}),
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.Transactions, m.FinesAssessed, m.FeeCollections, m.FeesCollected, m.BatchItems, m.HTTPRequests)
	return m
}

func (m *Metrics) TransactionEvent(txType, action string) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(txType, action).Inc()
}

func (m *Metrics) FineAssessed(amount decimal.Decimal) {
	if m == nil || !amount.IsPositive() {
		return
	}
	m.FinesAssessed.Add(amount.InexactFloat64())
}

func (m *Metrics) FeeCollectionEvent(action string, net decimal.Decimal) {
	if m == nil {
		return
	}
	m.FeeCollections.WithLabelValues(action).Inc()
	if action == "submit" && net.IsPositive() {
		m.FeesCollected.Add(net.InexactFloat64())
	}
}

func (m *Metrics) BatchItem(operation, result string) {
	if m == nil {
		return
	}
	m.BatchItems.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Observe(seconds)
}
