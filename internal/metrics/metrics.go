// Package metrics exposes prometheus counters for the API client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is implemented by anything collecting client metrics.
type Recorder interface {
	RecordResponse(method string, statusCode int, duration time.Duration)
	RecordTransportError(method string)
	RecordRefresh(success bool)
	RecordNavigation(path string)
}

// Collector records client metrics on prometheus.
type Collector struct {
	responses       *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	navigations     *prometheus.CounterVec
	latency         prometheus.Histogram
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_client_responses_total",
			Help: "API responses received, by method and status code",
		}, []string{"method", "status_code"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_client_transport_errors_total",
			Help: "Requests that received no response",
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_client_token_refreshes_total",
			Help: "Credential refresh calls, by outcome",
		}, []string{"outcome"}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_client_forced_navigations_total",
			Help: "Forced navigations triggered by session or subscription failures",
		}, []string{"path"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "menu_client_request_duration_seconds",
			Help:    "Latency of individual API round trips",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.responses,
		c.transportErrors,
		c.refreshes,
		c.navigations,
		c.latency,
	)
	return c
}

func (c *Collector) RecordResponse(method string, statusCode int, duration time.Duration) {
	c.responses.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.latency.Observe(duration.Seconds())
}

func (c *Collector) RecordTransportError(method string) {
	c.transportErrors.WithLabelValues(method).Inc()
}

func (c *Collector) RecordRefresh(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordNavigation(path string) {
	c.navigations.WithLabelValues(path).Inc()
}

// Handler returns the prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordResponse(string, int, time.Duration) {}
func (Nop) RecordTransportError(string)               {}
func (Nop) RecordRefresh(bool)                        {}
func (Nop) RecordNavigation(string)                   {}
