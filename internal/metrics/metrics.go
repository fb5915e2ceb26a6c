package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdapterSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricescout_adapter_searches_total",
			Help: "Total adapter search executions by outcome",
		},
		[]string{"adapter", "status"},
	)

	AdapterSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricescout_adapter_search_duration_seconds",
			Help:    "Duration of adapter search executions in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"adapter"},
	)

	AdapterRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricescout_adapter_records_total",
			Help: "Total product records contributed by each adapter",
		},
		[]string{"adapter"},
	)

	FallbackInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricescout_fallback_invocations_total",
			Help: "Total invocations of extraction fallback stages",
		},
		[]string{"stage"},
	)
)

// RecordSearch updates the adapter metrics for one search execution.
func RecordSearch(adapter string, records int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	AdapterSearchesTotal.WithLabelValues(adapter, status).Inc()
	AdapterSearchDuration.WithLabelValues(adapter).Observe(duration.Seconds())
	AdapterRecordsTotal.WithLabelValues(adapter).Add(float64(records))
}

// RecordFallback counts one invocation of an extraction fallback stage.
func RecordFallback(stage string) {
	FallbackInvocationsTotal.WithLabelValues(stage).Inc()
}
