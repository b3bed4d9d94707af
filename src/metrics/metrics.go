// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "buxtax"

var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Payout CSV uploads by outcome.",
	}, []string{"outcome"})

	ParsedRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parsed_rows_total",
		Help:      "CSV rows seen by the parser, split into accepted and rejected.",
	}, []string{"result"})

	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calculations_total",
		Help:      "Calculator requests by kind.",
	}, []string{"kind"})

	ReportCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_cache_total",
		Help:      "Report cache lookups by result.",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid_mapping"
)

// RecordParse counts the accepted and rejected rows of one parse.
func RecordParse(valid, rejected int) {
	ParsedRowsTotal.WithLabelValues("accepted").Add(float64(valid))
	ParsedRowsTotal.WithLabelValues("rejected").Add(float64(rejected))
}

// CacheHit and CacheMiss count report cache lookups.
func CacheHit()  { ReportCacheTotal.WithLabelValues("hit").Inc() }
func CacheMiss() { ReportCacheTotal.WithLabelValues("miss").Inc() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
