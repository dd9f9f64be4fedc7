// Package metrics exposes Prometheus counters for verification verdicts,
// wallet provisioning and HTTP traffic
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "miniapp_auth"

	resultLabel = "result"
	kindLabel   = "kind"
	methodLabel = "method"
	routeLabel  = "route"
	statusLabel = "status"

	acceptedResult = "accepted"
	rejectedResult = "rejected"
	successResult  = "success"
	failureResult  = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	Verifications   *prometheus.CounterVec   // result + kind
	Provisions      *prometheus.CounterVec   // result
	RequestDuration *prometheus.HistogramVec // method + route + status
}

// New creates the collectors on a private registry together with the Go
// runtime and process collectors
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "initdata_verifications_total",
				Help:      "number of launch payload verifications by result and rejection kind",
			},
			[]string{resultLabel, kindLabel},
		),
		Provisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wallet_provisions_total",
				Help:      "number of wallet provisioning requests by result",
			},
			[]string{resultLabel},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{methodLabel, routeLabel, statusLabel},
		),
	}

	err := errors.Join(
		m.registry.Register(collectors.NewGoCollector()),
		m.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
		m.registry.Register(m.Verifications),
		m.registry.Register(m.Provisions),
		m.registry.Register(m.RequestDuration),
	)
	return m, err
}

// Verified records one verdict. kind is empty for accepted payloads.
func (m *Metrics) Verified(accepted bool, kind string) {
	if accepted {
		m.Verifications.With(prometheus.Labels{resultLabel: acceptedResult, kindLabel: ""}).Inc()
		return
	}
	m.Verifications.With(prometheus.Labels{resultLabel: rejectedResult, kindLabel: kind}).Inc()
}

// Provisioned records the outcome of one wallet request
func (m *Metrics) Provisioned(err error) {
	result := successResult
	if err != nil {
		result = failureResult
	}
	m.Provisions.With(prometheus.Labels{resultLabel: result}).Inc()
}

// ObserveRequest records the latency of one HTTP request. route is the mux
// path template so ids in URLs do not explode label cardinality.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.RequestDuration.With(prometheus.Labels{
		methodLabel: method,
		routeLabel:  route,
		statusLabel: strconv.Itoa(status),
	}).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
